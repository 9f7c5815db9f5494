package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/traldis/court-queue/models"
)

type ContactRepository interface {
	Insert(ctx context.Context, message *models.ContactMessage) error
}

type postgresContactRepository struct {
	db *sql.DB
}

func NewPostgresContactRepository(db *sql.DB) ContactRepository {
	return &postgresContactRepository{db: db}
}

func (r *postgresContactRepository) Insert(ctx context.Context, m *models.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Email, m.Subject, m.Message, m.Read, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact message: %w", err)
	}
	return nil
}
