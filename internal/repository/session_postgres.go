package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/northpole/elf-backend/internal/entity"
)

// SessionPostgres implements SessionRepository using PostgreSQL.
// Transcripts are stored as JSONB; the session row is the unit of
// update (a turn commits the whole transcript at once).
type SessionPostgres struct {
	db *pgxpool.Pool
}

var _ SessionRepository = &SessionPostgres{}

func NewSessionPostgres(db *pgxpool.Pool) *SessionPostgres {
	return &SessionPostgres{db: db}
}

func (r *SessionPostgres) CreateSession(ctx context.Context, session entity.ChatSession) (*entity.ChatSession, error) {
	sessionID, err := uuid.Parse(session.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	transcript, err := json.Marshal(session.Transcript)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO chat_sessions (id, persona, status, budget, notification_email, transcript)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, persona, status, budget, notification_email, transcript, result_id, created_at, updated_at`,
		sessionID, session.Persona, string(session.Status), session.Budget, session.NotificationEmail, transcript,
	)

	created, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return created, nil
}

func (r *SessionPostgres) GetSessionByID(ctx context.Context, id string) (*entity.ChatSession, error) {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		// a malformed link ID cannot name a session
		return nil, entity.ErrSessionNotFound
	}

	row := r.db.QueryRow(ctx, `
		SELECT id, persona, status, budget, notification_email, transcript, result_id, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1`,
		sessionID,
	)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

func (r *SessionPostgres) UpdateSession(ctx context.Context, session *entity.ChatSession) (*entity.ChatSession, error) {
	sessionID, err := uuid.Parse(session.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	transcript, err := json.Marshal(session.Transcript)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE chat_sessions
		SET status = $2, transcript = $3, result_id = $4, updated_at = now()
		WHERE id = $1
		RETURNING id, persona, status, budget, notification_email, transcript, result_id, created_at, updated_at`,
		sessionID, string(session.Status), transcript, session.ResultID,
	)

	updated, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("update session: %w", err)
	}

	return updated, nil
}

func scanSession(row pgx.Row) (*entity.ChatSession, error) {
	var (
		session    entity.ChatSession
		id         uuid.UUID
		status     string
		transcript []byte
		resultID   *uuid.UUID
	)

	err := row.Scan(&id, &session.Persona, &status, &session.Budget, &session.NotificationEmail,
		&transcript, &resultID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, err
	}

	session.ID = id.String()
	session.Status = entity.SessionStatus(status)

	if len(transcript) > 0 {
		if err := json.Unmarshal(transcript, &session.Transcript); err != nil {
			return nil, fmt.Errorf("unmarshal transcript: %w", err)
		}
	}

	if resultID != nil {
		s := resultID.String()
		session.ResultID = &s
	}

	return &session, nil
}
