package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/secrethelper/api/internal/model"
)

const sessionTTL = 24 * time.Hour

// SessionService stores conversation sessions in Redis. Without a Redis
// client it falls back to an in-process map, which is enough for tests
// and single-instance development.
type SessionService struct {
	rdb *redis.Client

	mu  sync.RWMutex
	mem map[string]*model.Session
}

// NewSessionService creates a session service. rdb may be nil.
func NewSessionService(rdb *redis.Client) *SessionService {
	return &SessionService{
		rdb: rdb,
		mem: make(map[string]*model.Session),
	}
}

// GetOrCreate returns the session with the given ID, creating a fresh one
// when the ID is empty or unknown.
func (s *SessionService) GetOrCreate(ctx context.Context, id string) (*model.Session, error) {
	if id != "" {
		sess, err := s.Get(ctx, id)
		if err == nil {
			return sess, nil
		}
	}

	sess := &model.Session{ID: uuid.New().String()}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the session with the given ID
func (s *SessionService) Get(ctx context.Context, id string) (*model.Session, error) {
	if s.rdb == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		sess, ok := s.mem[id]
		if !ok {
			return nil, fmt.Errorf("session not found: %s", id)
		}
		copied := *sess
		return &copied, nil
	}

	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

// Save persists a session and refreshes its TTL
func (s *SessionService) Save(ctx context.Context, sess *model.Session) error {
	if s.rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		copied := *sess
		s.mem[sess.ID] = &copied
		return nil
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.ID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}
