package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-play-api/internal/observability"
)

const (
	defaultRedisPrefix = "gema:play:session:"
	// redisExpiryGrace keeps a key alive past its session TTL so the first read
	// after expiry reports ErrExpired before the key is dropped.
	redisExpiryGrace = time.Minute
)

// RedisStore keeps sessions in Redis with the key TTL set to the session TTL
// plus redisExpiryGrace. Keys Redis has evicted read as ErrNotFound.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

// NewRedisStore builds a store on an existing client. An empty prefix uses the default namespace.
func NewRedisStore(client *redis.Client, prefix string, cfg Config, logger zerolog.Logger) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    cfg.ttl(),
		now:    time.Now,
		newID:  newID,
		logger: logger.With().Str("component", "redis_session_store").Logger(),
	}
}

func (s *RedisStore) Create(ctx context.Context, payload Payload) (string, error) {
	if payload == nil {
		return "", ErrNilPayload
	}

	sess := Session{
		Variant:   payload.Variant(),
		Payload:   payload,
		CreatedAt: s.now(),
	}

	for attempt := 0; attempt < 3; attempt++ {
		sess.ID = s.newID()
		data, err := encodeSession(sess)
		if err != nil {
			return "", err
		}
		ok, err := s.client.SetNX(ctx, s.key(sess.ID), data, s.ttl+redisExpiryGrace).Result()
		if err != nil {
			return "", fmt.Errorf("store session: %w", err)
		}
		if ok {
			observability.SessionEvents().WithLabelValues(string(sess.Variant), "created").Inc()
			return sess.ID, nil
		}
	}

	return "", fmt.Errorf("store session: could not allocate a unique id")
}

func (s *RedisStore) Get(ctx context.Context, id string) (Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		return Session{}, s.mapError(err)
	}
	return s.checkExpiry(ctx, raw)
}

func (s *RedisStore) Take(ctx context.Context, id string) (Session, error) {
	raw, err := s.client.GetDel(ctx, s.key(id)).Bytes()
	if err != nil {
		return Session{}, s.mapError(err)
	}
	sess, err := s.checkExpiry(ctx, raw)
	if err != nil {
		return Session{}, err
	}
	observability.SessionEvents().WithLabelValues(string(sess.Variant), "consumed").Inc()
	return sess, nil
}

func (s *RedisStore) Restore(ctx context.Context, sess Session) error {
	if sess.Payload == nil {
		return ErrNilPayload
	}

	remaining := s.ttl - s.now().Sub(sess.CreatedAt)
	if remaining <= 0 {
		return ErrExpired
	}

	sess.Variant = sess.Payload.Variant()
	data, err := encodeSession(sess)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.key(sess.ID), data, remaining+redisExpiryGrace).Result()
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if !ok {
		return ErrAlreadyExists
	}
	observability.SessionEvents().WithLabelValues(string(sess.Variant), "restored").Inc()
	return nil
}

func (s *RedisStore) Replace(ctx context.Context, id string, payload Payload) error {
	if payload == nil {
		return ErrNilPayload
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Variant != payload.Variant() {
		return ErrVariantMismatch
	}

	current.Payload = payload
	data, err := encodeSession(current)
	if err != nil {
		return err
	}

	err = s.client.SetArgs(ctx, s.key(id), data, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) checkExpiry(ctx context.Context, raw []byte) (Session, error) {
	sess, err := decodeSession(raw)
	if err != nil {
		return Session{}, err
	}
	if sess.Expired(s.now(), s.ttl) {
		if err := s.client.Del(ctx, s.key(sess.ID)).Err(); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("failed to drop expired session")
		}
		observability.SessionEvents().WithLabelValues(string(sess.Variant), "expired").Inc()
		return Session{}, ErrExpired
	}
	return sess, nil
}

func (s *RedisStore) mapError(err error) error {
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	return fmt.Errorf("session backend: %w", err)
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}
