package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/chatpoll/internal/core/domain"
	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollStore {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	record, err := json.Marshal(poll)
	if err != nil {
		return fmt.Errorf("failed to marshal poll: %w", err)
	}

	query := `
		INSERT INTO polls (id, record)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET record = EXCLUDED.record
	`
	if _, err := r.db.ExecContext(ctx, query, poll.ID, record); err != nil {
		return fmt.Errorf("failed to save poll: %w", err)
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	query := `
		SELECT record FROM polls WHERE id = $1
	`

	var record []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	var poll domain.Poll
	if err := json.Unmarshal(record, &poll); err != nil {
		return nil, fmt.Errorf("failed to unmarshal poll: %w", err)
	}
	return &poll, nil
}

// Update runs the transform inside a transaction holding a row lock on
// the poll, so concurrent updates to the same id are serialized by the
// database.
func (r *pollRepository) Update(ctx context.Context, id string, fn func(*domain.Poll) error) (*domain.Poll, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT record FROM polls WHERE id = $1 FOR UPDATE
	`

	var record []byte
	err = tx.QueryRowContext(ctx, query, id).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to lock poll: %w", err)
	}

	var poll domain.Poll
	if err := json.Unmarshal(record, &poll); err != nil {
		return nil, fmt.Errorf("failed to unmarshal poll: %w", err)
	}

	if err := fn(&poll); err != nil {
		return nil, err
	}

	updated, err := json.Marshal(&poll)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal poll: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE polls SET record = $2 WHERE id = $1`, id, updated); err != nil {
		return nil, fmt.Errorf("failed to update poll: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &poll, nil
}
