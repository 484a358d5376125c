// Package events publishes play results to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "gema.play.results"

// ResultEvent is emitted after every successful evaluation.
type ResultEvent struct {
	Variant       string    `json:"variant"`
	SessionID     string    `json:"session_id"`
	ConceptID     string    `json:"concept_id"`
	Level         string    `json:"level"`
	Correct       bool      `json:"correct"`
	Ratio         *float64  `json:"ratio,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher delivers result events.
type Publisher interface {
	Publish(ctx context.Context, event ResultEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ResultEvent) error { return nil }

// CorrelationHeader carries the originating request's correlation id.
const CorrelationHeader = "X-Correlation-ID"

type natsConn interface {
	PublishMsg(msg *nats.Msg) error
}

// NATSPublisher publishes JSON encoded events on a single subject.
type NATSPublisher struct {
	conn    natsConn
	subject string
}

// NewNATSPublisher constructs a publisher over an open connection.
func NewNATSPublisher(conn *nats.Conn, subject string) *NATSPublisher {
	return newNATSPublisher(conn, subject)
}

func newNATSPublisher(conn natsConn, subject string) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSPublisher{conn: conn, subject: subject}
}

func (p *NATSPublisher) Publish(ctx context.Context, event ResultEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode result event: %w", err)
	}
	msg := nats.NewMsg(p.subject)
	msg.Data = payload
	if event.CorrelationID != "" {
		msg.Header.Set(CorrelationHeader, event.CorrelationID)
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish result event: %w", err)
	}
	return nil
}

// Connect opens a NATS connection that keeps reconnecting in the background.
func Connect(url string, logger zerolog.Logger) (*nats.Conn, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}
	log := logger.With().Str("component", "nats").Logger()
	return nats.Connect(url,
		nats.Name("gema-play-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(conn *nats.Conn) {
			log.Info().Str("url", conn.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
}
