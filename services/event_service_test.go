package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/queue"
	"github.com/traldis/court-queue/repositories/memory"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestCheckInLink_Format(t *testing.T) {
	t.Parallel()

	svc := NewEventService(nil, nil, "https://fila.example.com/", nil, discardLogger())
	link := svc.CheckInLink("evt-42")
	assert.Equal(t, "https://fila.example.com/#fila/evt-42", link)
}

func TestCheckInQR_EncodesLink(t *testing.T) {
	t.Parallel()

	svc := NewEventService(nil, nil, "https://fila.example.com", nil, discardLogger())
	png, err := svc.CheckInQR("evt-42", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "expected a PNG payload")
}

func TestAutoFinishPastEvents(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	t.Cleanup(func() { store.Close() })

	pastID, todayID := uuid.NewString(), uuid.NewString()
	store.SeedEvent(models.Event{
		ID: pastID, Title: "Last Week", Date: "2025-06-07",
		Status: models.EventStatusActive,
	})
	store.SeedEvent(models.Event{
		ID: todayID, Title: "Tonight", Date: "2025-06-14",
		Status: models.EventStatusActive,
	})

	now := time.Date(2025, 6, 14, 22, 0, 0, 0, time.UTC)
	engine := queue.NewEngine(nil, func() time.Time { return now })
	queueSvc := NewQueueService(engine, store.Events, store.Players, store.Teams, store.Matches, nil, nil, discardLogger())
	svc := NewEventService(store.Events, queueSvc, "http://localhost", func() time.Time { return now }, discardLogger())

	require.NoError(t, svc.AutoFinishPastEvents(context.Background()))

	past, err := svc.GetEvent(context.Background(), pastID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusFinished, past.Status)

	today, err := svc.GetEvent(context.Background(), todayID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusActive, today.Status, "tonight's run must stay open")
}
