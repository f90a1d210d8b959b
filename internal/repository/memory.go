package repository

import (
	"context"
	"time"

	"github.com/northpole/elf-backend/internal/entity"
	gocache "github.com/patrickmn/go-cache"
)

// SessionMemory is the in-memory session store. Entries expire after
// the configured idle TTL; expiry is the session's coarse lifetime
// boundary, not a pipeline concern.
type SessionMemory struct {
	cache *gocache.Cache
}

var _ SessionRepository = &SessionMemory{}

func NewSessionMemory(ttl time.Duration) *SessionMemory {
	return &SessionMemory{
		cache: gocache.New(ttl, ttl/2),
	}
}

func (r *SessionMemory) CreateSession(ctx context.Context, session entity.ChatSession) (*entity.ChatSession, error) {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	r.cache.Set(session.ID, session, gocache.DefaultExpiration)

	return &session, nil
}

func (r *SessionMemory) GetSessionByID(ctx context.Context, id string) (*entity.ChatSession, error) {
	value, found := r.cache.Get(id)
	if !found {
		return nil, entity.ErrSessionNotFound
	}

	session := value.(entity.ChatSession)
	return &session, nil
}

// UpdateSession replaces the stored record and refreshes its TTL, so
// an active interview never expires mid-conversation.
func (r *SessionMemory) UpdateSession(ctx context.Context, session *entity.ChatSession) (*entity.ChatSession, error) {
	if _, found := r.cache.Get(session.ID); !found {
		return nil, entity.ErrSessionNotFound
	}

	updated := *session
	updated.UpdatedAt = time.Now()

	r.cache.Set(updated.ID, updated, gocache.DefaultExpiration)

	return &updated, nil
}

// ResultMemory is the in-memory result store.
type ResultMemory struct {
	cache *gocache.Cache
}

var _ ResultRepository = &ResultMemory{}

func NewResultMemory(ttl time.Duration) *ResultMemory {
	return &ResultMemory{
		cache: gocache.New(ttl, ttl/2),
	}
}

func (r *ResultMemory) SaveResult(ctx context.Context, result entity.GiftResult) (*entity.GiftResult, error) {
	result.CreatedAt = time.Now()

	r.cache.Set(result.ID, result, gocache.DefaultExpiration)

	return &result, nil
}

func (r *ResultMemory) GetResultByID(ctx context.Context, id string) (*entity.GiftResult, error) {
	value, found := r.cache.Get(id)
	if !found {
		return nil, entity.ErrResultNotFound
	}

	result := value.(entity.GiftResult)
	return &result, nil
}
