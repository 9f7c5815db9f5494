package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/traldis/court-queue/handlers"
	"github.com/traldis/court-queue/middleware"
	"github.com/traldis/court-queue/models"
	"github.com/traldis/court-queue/queue"
	"github.com/traldis/court-queue/realtime"
	"github.com/traldis/court-queue/repositories/memory"
	"github.com/traldis/court-queue/routes"
	"github.com/traldis/court-queue/services"
)

type testAPI struct {
	server  *httptest.Server
	store   *memory.Store
	eventID string
	auth    services.AuthService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore()
	t.Cleanup(func() { store.Close() })

	eventID := uuid.NewString()
	store.SeedEvent(models.Event{
		ID:        eventID,
		Title:     "Friday Run",
		Date:      "2025-06-14",
		Status:    models.EventStatusActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})

	hub := realtime.NewHub(logger)
	go hub.Run()

	engine := queue.NewEngine(nil, nil)
	queueService := services.NewQueueService(engine, store.Events, store.Players, store.Teams, store.Matches, store, hub, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go queueService.Run(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte("quadra123"), bcrypt.MinCost)
	require.NoError(t, err)
	authService := services.NewAuthService(string(hash), "test-secret", nil)

	eventService := services.NewEventService(store.Events, queueService, "http://localhost:5173", nil, logger)
	mediaService := services.NewMediaService(nil, store.Events, nil, logger)
	contactService := services.NewContactService(nil, nil, "", logger)

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		[]string{"*"},
		middleware.AdminOnly(authService, logger),
		handlers.NewEventHandler(eventService),
		handlers.NewQueueHandler(queueService),
		handlers.NewAdminHandler(queueService),
		handlers.NewAuthHandler(authService),
		handlers.NewMediaHandler(mediaService),
		handlers.NewContactHandler(contactService),
		handlers.NewWebSocketHandler(hub, queueService, logger),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testAPI{server: server, store: store, eventID: eventID, auth: authService}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.server.URL+path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testAPI) login(t *testing.T) string {
	t.Helper()
	token, _, err := a.auth.Login("quadra123")
	require.NoError(t, err)
	return token
}

func soloBody(i int) map[string]string {
	return map[string]string{
		"name":  fmt.Sprintf("Player %d", i),
		"phone": fmt.Sprintf("+5511999%05d", i),
	}
}

func TestCheckInSolo_Created(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/events/"+api.eventID+"/checkin/solo", "", soloBody(1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var payload struct {
		SoloQueue []models.QueuePlayer `json:"solo_queue"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Len(t, payload.SoloQueue, 1)
}

func TestCheckInSolo_ValidationFailed(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/events/"+api.eventID+"/checkin/solo", "", map[string]string{"name": "No Phone"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCheckInSolo_DuplicatePhoneConflict(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	path := "/events/" + api.eventID + "/checkin/solo"
	resp := api.do(t, http.MethodPost, path, "", soloBody(1))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := soloBody(1)
	body["name"] = "Someone Else"
	resp = api.do(t, http.MethodPost, path, "", body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCheckInSolo_UnknownEvent(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/events/"+uuid.NewString()+"/checkin/solo", "", soloBody(1))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckInTeam_Created(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	players := make([]map[string]string, 5)
	for i := range players {
		players[i] = soloBody(100 + i)
	}
	body := map[string]interface{}{"team_name": "Os Craques", "players": players}

	resp := api.do(t, http.MethodPost, "/events/"+api.eventID+"/checkin/team", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var payload struct {
		TeamsQueue []models.Team `json:"teams_queue"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.TeamsQueue, 1)
	assert.Equal(t, "Os Craques", payload.TeamsQueue[0].Name)
}

func TestCheckInTeam_ShortRoster(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	body := map[string]interface{}{
		"team_name": "Incompleto",
		"players":   []map[string]string{soloBody(1), soloBody(2)},
	}
	resp := api.do(t, http.MethodPost, "/events/"+api.eventID+"/checkin/team", "", body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetQueue_PublicRead(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/events/"+api.eventID+"/queue", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Event *models.Event `json:"event"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotNil(t, payload.Event)
	assert.Equal(t, api.eventID, payload.Event.ID)
}

func TestAdminRoutes_RequireSession(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/admin/events/"+api.eventID+"/pause", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/admin/events/"+api.eventID+"/pause", "bogus-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/admin/events/"+api.eventID+"/pause", api.login(t), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminLogin(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	resp := api.do(t, http.MethodPost, "/admin/login", "", map[string]string{"password": "quadra123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.NotEmpty(t, payload.Token)

	resp = api.do(t, http.MethodPost, "/admin/login", "", map[string]string{"password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMatchRotation_AdminFlow(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	token := api.login(t)

	// Not enough teams yet.
	resp := api.do(t, http.MethodPost, "/admin/events/"+api.eventID+"/matches/start", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	for n, name := range []string{"Time A", "Time B"} {
		players := make([]map[string]string, 5)
		for i := range players {
			players[i] = soloBody((n+1)*100 + i)
		}
		body := map[string]interface{}{"team_name": name, "players": players}
		resp := api.do(t, http.MethodPost, "/events/"+api.eventID+"/checkin/team", "", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp = api.do(t, http.MethodPost, "/admin/events/"+api.eventID+"/matches/start", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		CurrentMatch *models.Match `json:"current_match"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.NotNil(t, payload.CurrentMatch)

	resp = api.do(t, http.MethodPost, "/admin/events/"+api.eventID+"/matches/end", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(t, http.MethodPost, "/admin/events/"+api.eventID+"/matches/end", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestEventLinkAndQR(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	resp := api.do(t, http.MethodGet, "/events/"+api.eventID+"/link", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Link string `json:"link"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "http://localhost:5173/#fila/"+api.eventID, payload.Link)

	resp = api.do(t, http.MethodGet, "/events/"+api.eventID+"/qr", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestContact_StoreUnavailableInDemo(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)

	body := map[string]string{
		"name":    "Maria",
		"email":   "maria@example.com",
		"subject": "Horário",
		"message": "Que horas começa?",
	}
	resp := api.do(t, http.MethodPost, "/contact", "", body)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
