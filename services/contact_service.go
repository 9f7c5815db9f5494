package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/repositories"
)

type ContactInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// ContactService stores contact-form submissions and, when SMTP is
// configured, forwards each one to the operator inbox. A failed email never
// fails the submission; the message is already persisted.
type ContactService interface {
	SubmitMessage(ctx context.Context, in ContactInput) (*models.ContactMessage, error)
}

type contactService struct {
	contacts repositories.ContactRepository
	email    *EmailService
	emailTo  string
	logger   *slog.Logger
}

func NewContactService(contacts repositories.ContactRepository, email *EmailService, emailTo string, logger *slog.Logger) ContactService {
	return &contactService{
		contacts: contacts,
		email:    email,
		emailTo:  emailTo,
		logger:   logger,
	}
}

func (s *contactService) SubmitMessage(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	if s.contacts == nil {
		return nil, ErrStoreUnavailable
	}

	message := &models.ContactMessage{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		CreatedAt: time.Now(),
	}
	if err := s.contacts.Insert(ctx, message); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	if s.email != nil && s.emailTo != "" {
		subject := fmt.Sprintf("[contato] %s", in.Subject)
		body := fmt.Sprintf("From: %s <%s>\n\n%s", in.Name, in.Email, in.Message)
		if err := s.email.SendEmail([]string{s.emailTo}, subject, body); err != nil {
			s.logger.Error("failed to forward contact message",
				slog.String("message_id", message.ID), slog.Any("error", err))
		}
	}
	return message, nil
}
