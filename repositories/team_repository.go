package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/traldis/court-queue/models"
)

var (
	ErrTeamNotFound = errors.New("team not found")
)

type TeamRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, team *models.Team) error
	// ListQueue returns the rotation queue: waiting and playing teams in
	// position order. Players are not attached here.
	ListQueue(ctx context.Context, eventID string) ([]models.Team, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, teamIDs []string, status models.TeamStatus) error
	Requeue(ctx context.Context, exec SQLExecutor, teamID string, position int) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
	// DeleteByEvent clears the event's queue, sparing teams on court.
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamColumns = `id, event_id, name, type, status, position, created_at`

func (r *postgresTeamRepository) Insert(ctx context.Context, exec SQLExecutor, t *models.Team) error {
	query := `
		INSERT INTO teams (id, event_id, name, type, status, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		t.ID, t.EventID, t.Name, t.Type, t.Status, t.Position, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) ListQueue(ctx context.Context, eventID string) ([]models.Team, error) {
	query := `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE event_id = $1
		  AND status IN ('waiting', 'playing')
		ORDER BY position ASC`

	rows, err := r.getExecutor(nil).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams queue: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		t := models.Team{}
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.Type, &t.Status, &t.Position, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, teamIDs []string, status models.TeamStatus) error {
	if len(teamIDs) == 0 {
		return nil
	}
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE teams SET status = $1 WHERE id = ANY($2)`,
		status, pq.Array(teamIDs))
	if err != nil {
		return fmt.Errorf("failed to update team status: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Requeue(ctx context.Context, exec SQLExecutor, teamID string, position int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE teams SET status = 'waiting', position = $1 WHERE id = $2`,
		position, teamID)
	if err != nil {
		return fmt.Errorf("failed to requeue team %s: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM teams WHERE event_id = $1 AND status <> 'playing'`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete teams of event %s: %w", eventID, err)
	}
	return nil
}
