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

// ResultPostgres implements ResultRepository using PostgreSQL.
type ResultPostgres struct {
	db *pgxpool.Pool
}

var _ ResultRepository = &ResultPostgres{}

func NewResultPostgres(db *pgxpool.Pool) *ResultPostgres {
	return &ResultPostgres{db: db}
}

func (r *ResultPostgres) SaveResult(ctx context.Context, result entity.GiftResult) (*entity.GiftResult, error) {
	resultID, err := uuid.Parse(result.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid result ID: %w", err)
	}

	sessionID, err := uuid.Parse(result.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	suggestions, err := json.Marshal(result.Suggestions)
	if err != nil {
		return nil, fmt.Errorf("marshal suggestions: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO gift_results (id, session_id, suggestions)
		VALUES ($1, $2, $3)
		RETURNING id, session_id, suggestions, created_at`,
		resultID, sessionID, suggestions,
	)

	saved, err := scanResult(row)
	if err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	return saved, nil
}

func (r *ResultPostgres) GetResultByID(ctx context.Context, id string) (*entity.GiftResult, error) {
	resultID, err := uuid.Parse(id)
	if err != nil {
		// a malformed link ID cannot name a result
		return nil, entity.ErrResultNotFound
	}

	row := r.db.QueryRow(ctx, `
		SELECT id, session_id, suggestions, created_at
		FROM gift_results
		WHERE id = $1`,
		resultID,
	)

	result, err := scanResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}

	return result, nil
}

func scanResult(row pgx.Row) (*entity.GiftResult, error) {
	var (
		result      entity.GiftResult
		id          uuid.UUID
		sessionID   uuid.UUID
		suggestions []byte
	)

	if err := row.Scan(&id, &sessionID, &suggestions, &result.CreatedAt); err != nil {
		return nil, err
	}

	result.ID = id.String()
	result.SessionID = sessionID.String()

	if len(suggestions) > 0 {
		if err := json.Unmarshal(suggestions, &result.Suggestions); err != nil {
			return nil, fmt.Errorf("unmarshal suggestions: %w", err)
		}
	}

	return &result, nil
}
