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
	ErrPlayerNotFound      = errors.New("queue player not found")
	ErrPlayerPhoneConflict = errors.New("phone number already checked in for this event")
)

type PlayerRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, player *models.QueuePlayer) error
	// ListUngroupedSolo returns waiting solo players without a team,
	// oldest check-in first. This is the grouping order for random teams.
	ListUngroupedSolo(ctx context.Context, eventID string) ([]models.QueuePlayer, error)
	ListByTeams(ctx context.Context, teamIDs []string) ([]models.QueuePlayer, error)
	AssignTeam(ctx context.Context, exec SQLExecutor, playerIDs []string, teamID string) error
	UpdateStatusByTeams(ctx context.Context, exec SQLExecutor, teamIDs []string, status models.PlayerStatus) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
	DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID string) error
	// DeleteByEvent clears the event's queue, sparing players on court.
	DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, event_id, name, phone, instagram, player_type, team_id, status, checked_in_at, created_at`

func scanPlayer(row interface{ Scan(...interface{}) error }) (*models.QueuePlayer, error) {
	p := &models.QueuePlayer{}
	err := row.Scan(
		&p.ID, &p.EventID, &p.Name, &p.Phone, &p.Instagram,
		&p.PlayerType, &p.TeamID, &p.Status, &p.CheckedInAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) Insert(ctx context.Context, exec SQLExecutor, p *models.QueuePlayer) error {
	query := `
		INSERT INTO queue_players (
			id, event_id, name, phone, instagram, player_type, team_id, status, checked_in_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		p.ID, p.EventID, p.Name, p.Phone, p.Instagram,
		p.PlayerType, p.TeamID, p.Status, p.CheckedInAt, p.CreatedAt,
	)
	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) ListUngroupedSolo(ctx context.Context, eventID string) ([]models.QueuePlayer, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM queue_players
		WHERE event_id = $1
		  AND player_type = 'solo'
		  AND status = 'waiting'
		  AND team_id IS NULL
		ORDER BY checked_in_at ASC`

	return r.queryPlayers(ctx, query, eventID)
}

func (r *postgresPlayerRepository) ListByTeams(ctx context.Context, teamIDs []string) ([]models.QueuePlayer, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + playerColumns + `
		FROM queue_players
		WHERE team_id = ANY($1)
		ORDER BY checked_in_at ASC`

	return r.queryPlayers(ctx, query, pq.Array(teamIDs))
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]models.QueuePlayer, error) {
	rows, err := r.getExecutor(nil).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query queue players: %w", err)
	}
	defer rows.Close()

	var players []models.QueuePlayer
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue player row: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) AssignTeam(ctx context.Context, exec SQLExecutor, playerIDs []string, teamID string) error {
	if len(playerIDs) == 0 {
		return nil
	}
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE queue_players SET team_id = $1 WHERE id = ANY($2)`,
		teamID, pq.Array(playerIDs))
	if err != nil {
		return fmt.Errorf("failed to assign players to team %s: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateStatusByTeams(ctx context.Context, exec SQLExecutor, teamIDs []string, status models.PlayerStatus) error {
	if len(teamIDs) == 0 {
		return nil
	}
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE queue_players SET status = $1 WHERE team_id = ANY($2)`,
		status, pq.Array(teamIDs))
	if err != nil {
		return fmt.Errorf("failed to update player status by teams: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM queue_players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete queue player: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID string) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM queue_players WHERE team_id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete players of team %s: %w", teamID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) DeleteByEvent(ctx context.Context, exec SQLExecutor, eventID string) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM queue_players WHERE event_id = $1 AND status <> 'playing'`, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete players of event %s: %w", eventID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ErrPlayerPhoneConflict
	}
	return err
}
