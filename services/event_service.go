package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/repositories"
)

// finishGrace is how long past midnight of the event's day the scheduler
// waits before marking a still-active event finished. Late runs spill past
// midnight; noon the next day is comfortably clear of them.
const finishGrace = 12 * time.Hour

// EventService covers the read-side event surface plus the check-in deep
// link every event exposes on posters and the TV panel.
type EventService interface {
	ListEvents(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	// CheckInLink returns the hash-route deep link the SPA serves for the
	// event's queue view.
	CheckInLink(eventID string) string
	// CheckInQR renders the deep link as a QR PNG of the given pixel size.
	CheckInQR(eventID string, size int) ([]byte, error)
	// AutoFinishPastEvents closes out active events whose date has passed.
	// Activation stays a manual admin action; only the finish transition is
	// automated.
	AutoFinishPastEvents(ctx context.Context) error
}

type eventService struct {
	events        repositories.EventRepository
	queue         QueueService
	publicBaseURL string
	now           func() time.Time
	logger        *slog.Logger
}

func NewEventService(events repositories.EventRepository, queue QueueService, publicBaseURL string, now func() time.Time, logger *slog.Logger) EventService {
	if now == nil {
		now = time.Now
	}
	return &eventService{
		events:        events,
		queue:         queue,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           now,
		logger:        logger,
	}
}

func (s *eventService) ListEvents(ctx context.Context, filter repositories.ListEventsFilter) ([]models.Event, error) {
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return event, nil
}

func (s *eventService) CheckInLink(eventID string) string {
	return fmt.Sprintf("%s/#fila/%s", s.publicBaseURL, eventID)
}

func (s *eventService) CheckInQR(eventID string, size int) ([]byte, error) {
	if size <= 0 {
		size = 300
	}
	png, err := qrcode.Encode(s.CheckInLink(eventID), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode check-in QR: %w", err)
	}
	return png, nil
}

func (s *eventService) AutoFinishPastEvents(ctx context.Context) error {
	active := models.EventStatusActive
	events, err := s.events.List(ctx, repositories.ListEventsFilter{Status: &active})
	if err != nil {
		return fmt.Errorf("list active events: %w", err)
	}

	now := s.now()
	for _, event := range events {
		date, err := time.Parse("2006-01-02", event.Date)
		if err != nil {
			s.logger.Warn("skipping event with unparseable date",
				slog.String("event_id", event.ID), slog.String("date", event.Date))
			continue
		}
		if now.Before(date.Add(24 * time.Hour).Add(finishGrace)) {
			continue
		}

		s.logger.Info("auto-finishing past event",
			slog.String("event_id", event.ID), slog.String("title", event.Title))
		if _, err := s.queue.SetEventStatus(ctx, event.ID, models.EventStatusFinished, nil); err != nil {
			s.logger.Error("failed to auto-finish event",
				slog.String("event_id", event.ID), slog.Any("error", err))
		}
	}
	return nil
}
