package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/secrethelper/api/internal/model"
)

const historyKey = "history:songs"

// HistoryService keeps the rolling list of completed songs, newest first.
// The list is capped; old entries fall off the end.
type HistoryService struct {
	rdb        *redis.Client
	maxEntries int

	mu  sync.RWMutex
	mem []model.HistoryEntry
}

// NewHistoryService creates a history service. rdb may be nil.
func NewHistoryService(rdb *redis.Client, maxEntries int) *HistoryService {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &HistoryService{rdb: rdb, maxEntries: maxEntries}
}

// Add prepends an entry and trims the list to the cap. History is best
// effort; failures are logged and never fail the job that produced the song.
func (s *HistoryService) Add(ctx context.Context, entry model.HistoryEntry) {
	if s.rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.mem = append([]model.HistoryEntry{entry}, s.mem...)
		if len(s.mem) > s.maxEntries {
			s.mem = s.mem[:s.maxEntries]
		}
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf("Failed to marshal history entry: %v", err)
		return
	}

	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, historyKey, data)
	pipe.LTrim(ctx, historyKey, 0, int64(s.maxEntries-1))
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Failed to save history entry: %v", err)
	}
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (s *HistoryService) List(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 || limit > s.maxEntries {
		limit = s.maxEntries
	}

	if s.rdb == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		n := limit
		if n > len(s.mem) {
			n = len(s.mem)
		}
		out := make([]model.HistoryEntry, n)
		copy(out, s.mem[:n])
		return out, nil
	}

	items, err := s.rdb.LRange(ctx, historyKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(items))
	for _, item := range items {
		var e model.HistoryEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear removes all history entries.
func (s *HistoryService) Clear(ctx context.Context) error {
	if s.rdb == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.mem = nil
		return nil
	}

	if err := s.rdb.Del(ctx, historyKey).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
