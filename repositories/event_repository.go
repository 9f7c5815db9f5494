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
	ErrEventNotFound = errors.New("event not found")
)

type ListEventsFilter struct {
	Status *models.EventStatus
	Limit  int
	Offset int
}

type EventRepository interface {
	GetByID(ctx context.Context, id string) (*models.Event, error)
	List(ctx context.Context, filter ListEventsFilter) ([]models.Event, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.EventStatus, isPaused *bool, updatedAt time.Time) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const eventColumns = `id, title, date, time, location, address, status, is_paused, max_players, created_at, updated_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*models.Event, error) {
	e := &models.Event{}
	err := row.Scan(
		&e.ID, &e.Title, &e.Date, &e.Time, &e.Location, &e.Address,
		&e.Status, &e.IsPaused, &e.MaxPlayers, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(r.getExecutor(nil).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) List(ctx context.Context, filter ListEventsFilter) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.getExecutor(nil).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *postgresEventRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.EventStatus, isPaused *bool, updatedAt time.Time) error {
	executor := r.getExecutor(exec)

	var result sql.Result
	var err error
	if isPaused != nil {
		result, err = executor.ExecContext(ctx,
			`UPDATE events SET status = $1, is_paused = $2, updated_at = $3 WHERE id = $4`,
			status, *isPaused, updatedAt, id)
	} else {
		result, err = executor.ExecContext(ctx,
			`UPDATE events SET status = $1, updated_at = $2 WHERE id = $3`,
			status, updatedAt, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}
