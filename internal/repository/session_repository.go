package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/noah-isme/teacher-directory/internal/models"
	appErrors "github.com/noah-isme/teacher-directory/pkg/errors"
)

// SessionRepository persists per-visitor directory state. Get returns appErrors.ErrCacheMiss for unknown or expired ids.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.DirectoryState, error)
	Save(ctx context.Context, id string, state *models.DirectoryState) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemorySessionRepository keeps sessions in process memory.
type MemorySessionRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySessionRepository constructs an in-memory store. A zero ttl never expires entries.
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

// Get returns a copy of the stored state.
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*models.DirectoryState, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	if r.expired(entry) {
		r.mu.Lock()
		// A Save may have refreshed the entry since the read lock was released.
		if current, ok := r.entries[id]; ok && r.expired(current) {
			delete(r.entries, id)
		}
		r.mu.Unlock()
		return nil, appErrors.ErrCacheMiss
	}

	var state models.DirectoryState
	if err := json.Unmarshal(entry.payload, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &state, nil
}

func (r *MemorySessionRepository) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt)
}

// Save stores a snapshot of state and refreshes its expiry.
func (r *MemorySessionRepository) Save(ctx context.Context, id string, state *models.DirectoryState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	entry := memoryEntry{payload: payload}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}

	r.mu.Lock()
	r.entries[id] = entry
	r.mu.Unlock()
	return nil
}

// Delete drops the session.
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
