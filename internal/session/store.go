// Package session holds ephemeral play-exercise state between a generate call
// and its evaluate call(s).
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/gema-play-api/internal/models"
)

// DefaultTTL bounds how long a session stays gradable after creation.
const DefaultTTL = 30 * time.Minute

var (
	// ErrNotFound indicates the session id is unknown or was already consumed.
	ErrNotFound = errors.New("session not found")
	// ErrExpired indicates the session outlived its TTL. The entry is removed when reported.
	ErrExpired = errors.New("session expired")
	// ErrNilPayload is returned when creating a session without state.
	ErrNilPayload = errors.New("session payload is required")
	// ErrVariantMismatch indicates a payload replacement would change the session variant.
	ErrVariantMismatch = errors.New("session variant mismatch")
	// ErrAlreadyExists is returned when restoring a session whose id is live again.
	ErrAlreadyExists = errors.New("session already exists")
)

// Payload is the variant-specific state stored in a session.
type Payload interface {
	Variant() models.ExerciseVariant
}

// Session is one live exercise instance.
type Session struct {
	ID        string
	Variant   models.ExerciseVariant
	Payload   Payload
	CreatedAt time.Time
}

// Expired reports whether the session outlived ttl at the given instant.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.CreatedAt) > ttl
}

// Store is the contract shared by all session backends. Create, Get, Take,
// Restore, Replace and Delete are atomic with respect to each other.
type Store interface {
	Create(ctx context.Context, payload Payload) (string, error)
	Get(ctx context.Context, id string) (Session, error)
	// Take returns the session and removes it in one step, so at most one
	// caller ever observes a given single-shot session.
	Take(ctx context.Context, id string) (Session, error)
	// Restore re-inserts a previously taken session with its original id and
	// creation time. Expired sessions are not restored.
	Restore(ctx context.Context, sess Session) error
	// Replace swaps the payload of a live session, keeping its creation time.
	Replace(ctx context.Context, id string, payload Payload) error
	Delete(ctx context.Context, id string) error
}

// Config tunes a store.
type Config struct {
	TTL time.Duration
}

func (c Config) ttl() time.Duration {
	if c.TTL <= 0 {
		return DefaultTTL
	}
	return c.TTL
}

// IsGone reports whether err means the session can no longer be used.
// Callers should not distinguish unknown from expired sessions.
func IsGone(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired)
}

func newID() string {
	return uuid.NewString()
}
