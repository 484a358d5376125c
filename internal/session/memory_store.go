package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-play-api/internal/observability"
)

// MemoryStore keeps sessions in a mutex-guarded map. Expired entries are
// evicted lazily on access and by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Session
	ttl     time.Duration
	now     func() time.Time
	newID   func() string
	logger  zerolog.Logger
}

// NewMemoryStore constructs an in-process store.
func NewMemoryStore(cfg Config, logger zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Session),
		ttl:     cfg.ttl(),
		now:     time.Now,
		newID:   newID,
		logger:  logger.With().Str("component", "memory_session_store").Logger(),
	}
}

func (s *MemoryStore) Create(_ context.Context, payload Payload) (string, error) {
	if payload == nil {
		return "", ErrNilPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, exists := s.entries[id]; !exists {
			break
		}
		id = s.newID()
	}

	s.entries[id] = Session{
		ID:        id,
		Variant:   payload.Variant(),
		Payload:   payload,
		CreatedAt: s.now(),
	}
	s.recordLocked(string(payload.Variant()), "created")
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lookupLocked(id)
}

func (s *MemoryStore) Take(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(id)
	if err != nil {
		return Session{}, err
	}
	delete(s.entries, id)
	s.recordLocked(string(sess.Variant), "consumed")
	return sess, nil
}

func (s *MemoryStore) Restore(_ context.Context, sess Session) error {
	if sess.Payload == nil {
		return ErrNilPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess.Expired(s.now(), s.ttl) {
		return ErrExpired
	}
	if _, exists := s.entries[sess.ID]; exists {
		return ErrAlreadyExists
	}
	sess.Variant = sess.Payload.Variant()
	s.entries[sess.ID] = sess
	s.recordLocked(string(sess.Variant), "restored")
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, id string, payload Payload) error {
	if payload == nil {
		return ErrNilPayload
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookupLocked(id)
	if err != nil {
		return err
	}
	if sess.Variant != payload.Variant() {
		return ErrVariantMismatch
	}
	sess.Payload = payload
	s.entries[id] = sess
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.entries[id]; ok {
		delete(s.entries, id)
		s.recordLocked(string(sess.Variant), "deleted")
	}
	return nil
}

// Sweep removes every expired entry and returns how many were dropped.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.entries {
		if sess.Expired(now, s.ttl) {
			delete(s.entries, id)
			s.recordLocked(string(sess.Variant), "expired")
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) lookupLocked(id string) (Session, error) {
	sess, ok := s.entries[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if sess.Expired(s.now(), s.ttl) {
		delete(s.entries, id)
		s.recordLocked(string(sess.Variant), "expired")
		s.logger.Debug().Str("session_id", id).Str("variant", string(sess.Variant)).Msg("session expired on access")
		return Session{}, ErrExpired
	}
	return sess, nil
}

func (s *MemoryStore) recordLocked(variant, event string) {
	observability.SessionEvents().WithLabelValues(variant, event).Inc()
	observability.LiveSessions().Set(float64(len(s.entries)))
}
