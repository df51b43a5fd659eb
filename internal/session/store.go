// internal/session/store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"scholarship-advisor/internal/common/database"
	"scholarship-advisor/internal/common/logger"
	"scholarship-advisor/internal/common/metrics"
	"scholarship-advisor/internal/models"
)

var (
	ErrNotFound    = errors.New("SESSION_NOT_FOUND")
	ErrStoreFailed = errors.New("SESSION_STORE_FAILED")
)

// Store persists session blobs keyed by session ID with a fixed TTL.
type Store interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() string {
	return uuid.New().String()
}

// GetOrCreate loads the session or starts a fresh one in the initial step.
// An unknown id is kept: clients hold their session id across turns, and an
// expired session simply restarts under the same key.
func GetOrCreate(ctx context.Context, store Store, id string) (*models.Session, error) {
	if id != "" {
		s, err := store.Get(ctx, id)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if id == "" {
		id = NewSessionID()
	}

	now := time.Now().UTC()
	s := &models.Session{
		ID:           id,
		CreatedAt:    now,
		LastActivity: now,
		CurrentStep:  models.StepInitial,
	}
	metrics.SessionsStarted.Inc()
	return s, nil
}

// --- Redis-backed store ---

type RedisStore struct {
	rdb       *database.RedisClient
	keyPrefix string
	ttl       time.Duration
	logger    logger.Logger
}

func NewRedisStore(rdb *database.RedisClient, keyPrefix string, ttl time.Duration, log logger.Logger) *RedisStore {
	return &RedisStore{
		rdb:       rdb,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger: log.With(map[string]interface{}{
			"component": "session-store",
		}),
	}
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := s.rdb.Get(ctx, s.key(id))
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("%w: corrupt session %s: %v", ErrStoreFailed, id, err)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	sess.Touch()
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	if err := s.rdb.Set(ctx, s.key(sess.ID), raw, s.ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.key(id)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	return nil
}

// --- In-memory fallback store ---

type memoryEntry struct {
	session   *models.Session
	expiresAt time.Time
}

// MemoryStore is the fallback when Redis is not configured or unreachable.
// Expired entries are dropped lazily on access.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		ttl:     ttl,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	// Copy through JSON so callers never share the stored pointer graph.
	raw, err := json.Marshal(entry.session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	return &sess, nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *models.Session) error {
	sess.Touch()
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}
	var copied models.Session
	if err := json.Unmarshal(raw, &copied); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailed, err)
	}

	s.mu.Lock()
	s.entries[sess.ID] = &memoryEntry{
		session:   &copied,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
