package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/traldis/court-queue/models"
)

var (
	ErrMatchNotFound = errors.New("match not found")
)

type MatchRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, match *models.Match) error
	// GetCurrent returns the most recently started in-progress match for the
	// event, or nil when the court is free.
	GetCurrent(ctx context.Context, eventID string) (*models.Match, error)
	Finish(ctx context.Context, exec SQLExecutor, id string, finishedAt time.Time) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Insert(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches (id, event_id, team_a_id, team_b_id, status, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		m.ID, m.EventID, m.TeamAID, m.TeamBID, m.Status, m.StartedAt, m.FinishedAt, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetCurrent(ctx context.Context, eventID string) (*models.Match, error) {
	query := `
		SELECT id, event_id, team_a_id, team_b_id, status, started_at, finished_at, created_at
		FROM matches
		WHERE event_id = $1 AND status = 'in_progress'
		ORDER BY started_at DESC
		LIMIT 1`

	m := &models.Match{}
	err := r.getExecutor(nil).QueryRowContext(ctx, query, eventID).Scan(
		&m.ID, &m.EventID, &m.TeamAID, &m.TeamBID, &m.Status, &m.StartedAt, &m.FinishedAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query current match: %w", err)
	}
	return m, nil
}

func (r *postgresMatchRepository) Finish(ctx context.Context, exec SQLExecutor, id string, finishedAt time.Time) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE matches SET status = 'finished', finished_at = $1 WHERE id = $2`,
		finishedAt, id)
	if err != nil {
		return fmt.Errorf("failed to finish match: %w", err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}
