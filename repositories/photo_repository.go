package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/traldis/court-queue/models"
)

var ErrPhotoNotFound = errors.New("event photo not found")

type PhotoRepository interface {
	Insert(ctx context.Context, photo *models.EventPhoto) error
	ListByEvent(ctx context.Context, eventID string) ([]models.EventPhoto, error)
	Delete(ctx context.Context, id string) (*models.EventPhoto, error)
}

type postgresPhotoRepository struct {
	db *sql.DB
}

func NewPostgresPhotoRepository(db *sql.DB) PhotoRepository {
	return &postgresPhotoRepository{db: db}
}

func (r *postgresPhotoRepository) Insert(ctx context.Context, p *models.EventPhoto) error {
	query := `
		INSERT INTO event_photos (id, event_id, caption, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, p.ID, p.EventID, p.Caption, p.StorageKey, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event photo: %w", err)
	}
	return nil
}

func (r *postgresPhotoRepository) ListByEvent(ctx context.Context, eventID string) ([]models.EventPhoto, error) {
	query := `
		SELECT id, event_id, caption, storage_key, created_at
		FROM event_photos
		WHERE event_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event photos: %w", err)
	}
	defer rows.Close()

	var photos []models.EventPhoto
	for rows.Next() {
		p := models.EventPhoto{}
		if err := rows.Scan(&p.ID, &p.EventID, &p.Caption, &p.StorageKey, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event photo row: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *postgresPhotoRepository) Delete(ctx context.Context, id string) (*models.EventPhoto, error) {
	query := `
		DELETE FROM event_photos
		WHERE id = $1
		RETURNING id, event_id, caption, storage_key, created_at`

	p := &models.EventPhoto{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.EventID, &p.Caption, &p.StorageKey, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, fmt.Errorf("failed to delete event photo: %w", err)
	}
	return p, nil
}
