// Package repository provides the key-value stores behind chat and
// result links. Keys are opaque unique identifiers; records are the
// session and suggestion entities. Implementations: in-memory with
// idle expiry (default) and PostgreSQL (durable, selected when a
// database URL is configured).
package repository

import (
	"context"

	"github.com/northpole/elf-backend/internal/entity"
)

// SessionRepository persists chat sessions keyed by chat link ID.
type SessionRepository interface {
	CreateSession(ctx context.Context, session entity.ChatSession) (*entity.ChatSession, error)
	GetSessionByID(ctx context.Context, id string) (*entity.ChatSession, error)
	UpdateSession(ctx context.Context, session *entity.ChatSession) (*entity.ChatSession, error)
}

// ResultRepository persists gift suggestion lists keyed by result
// link ID. Results are immutable once stored.
type ResultRepository interface {
	SaveResult(ctx context.Context, result entity.GiftResult) (*entity.GiftResult, error)
	GetResultByID(ctx context.Context, id string) (*entity.GiftResult, error)
}
