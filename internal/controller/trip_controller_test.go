package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lazy-tourist-be/internal/dto"
	"lazy-tourist-be/internal/pkg/logger"
	"lazy-tourist-be/internal/pkg/serverutils"
	"lazy-tourist-be/internal/service"
	"lazy-tourist-be/pkg/planner/orchestrator"
	"lazy-tourist-be/pkg/planner/state"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

// fakeDriver keeps one session and records what it was sent.
type fakeDriver struct {
	session *state.Session
	inputs  []string
}

func (d *fakeDriver) Start(ctx context.Context, text string) (*state.Session, error) {
	d.session = state.New("trip-1", time.Now())
	d.session.AddUser(text)
	d.session.NeedsUserInput = true
	d.session.NextStep = state.NodeGetFeedback
	d.session.ShowItinerary = true
	d.session.FinalItinerary = "# 3 Days in Paris"
	return d.session, nil
}

func (d *fakeDriver) Resume(ctx context.Context, id, text string) (*state.Session, error) {
	if d.session == nil || id != d.session.ID {
		return nil, orchestrator.ErrSessionNotFound
	}
	if d.session.Done() {
		return d.session, orchestrator.ErrSessionClosed
	}
	d.inputs = append(d.inputs, text)
	d.session.Status = state.StatusCompleted
	d.session.NeedsUserInput = false
	d.session.NextStep = state.NodeEnd
	d.session.SavedLocation = "outputs/itinerary_paris.md"
	return d.session, nil
}

func (d *fakeDriver) Abort(ctx context.Context, id, reason string) (*state.Session, error) {
	if d.session == nil || id != d.session.ID {
		return nil, orchestrator.ErrSessionNotFound
	}
	d.session.Status = state.StatusAborted
	d.session.NextStep = state.NodeEnd
	return d.session, nil
}

func (d *fakeDriver) Get(ctx context.Context, id string) (*state.Session, error) {
	if d.session == nil || id != d.session.ID {
		return nil, orchestrator.ErrSessionNotFound
	}
	return d.session, nil
}

func newTestApp(driver *fakeDriver) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	svc := service.NewTripService(driver, logger.NewNopLogger(), secret, time.Hour)
	NewTripController(svc, secret).RegisterRoutes(app.Group("/api"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func startTrip(t *testing.T, app *fiber.App) dto.StartTripResponse {
	t.Helper()
	code, body := do(t, app, "POST", "/api/trips", "", `{"message": "3 days in Paris"}`)
	require.Equal(t, fiber.StatusOK, code, string(body))

	var res serverutils.BaseResponse[dto.StartTripResponse]
	require.NoError(t, json.Unmarshal(body, &res))
	return res.Data
}

func TestStartTrip(t *testing.T) {
	app := newTestApp(&fakeDriver{})
	res := startTrip(t, app)

	assert.Equal(t, "trip-1", res.SessionId)
	assert.Equal(t, "get_feedback", res.Node)
	assert.True(t, res.NeedsInput)
	assert.Equal(t, "# 3 Days in Paris", res.Itinerary)
	assert.NotEmpty(t, res.Token)
}

func TestStartTripValidation(t *testing.T) {
	app := newTestApp(&fakeDriver{})

	code, _ := do(t, app, "POST", "/api/trips", "", `{"message": ""}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = do(t, app, "POST", "/api/trips", "", `not json`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestSendMessage(t *testing.T) {
	driver := &fakeDriver{}
	app := newTestApp(driver)
	started := startTrip(t, app)

	code, _ := do(t, app, "POST", "/api/trips/trip-1/messages", "", `{"message": "save it"}`)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, body := do(t, app, "POST", "/api/trips/trip-1/messages", started.Token, `{"message": "save it"}`)
	require.Equal(t, fiber.StatusOK, code, string(body))

	var res serverutils.BaseResponse[dto.TripResponse]
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "completed", res.Data.Status)
	assert.Equal(t, "outputs/itinerary_paris.md", res.Data.SavedLocation)
	assert.Equal(t, []string{"save it"}, driver.inputs)

	code, _ = do(t, app, "POST", "/api/trips/trip-1/messages", started.Token, `{"message": "again"}`)
	assert.Equal(t, fiber.StatusConflict, code)
}

func TestTokenIsBoundToSession(t *testing.T) {
	app := newTestApp(&fakeDriver{})
	startTrip(t, app)

	other, err := serverutils.IssueSessionToken(secret, "trip-2", time.Hour)
	require.NoError(t, err)

	code, _ := do(t, app, "GET", "/api/trips/trip-1", other, "")
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = do(t, app, "GET", "/api/trips/trip-2", other, "")
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestItineraryAndAbort(t *testing.T) {
	app := newTestApp(&fakeDriver{})
	started := startTrip(t, app)

	req := httptest.NewRequest("GET", "/api/trips/trip-1/itinerary", nil)
	req.Header.Set("Authorization", "Bearer "+started.Token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/markdown")
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "# 3 Days in Paris", string(body))

	code, body := do(t, app, "DELETE", "/api/trips/trip-1", started.Token, "")
	require.Equal(t, fiber.StatusOK, code)
	var res serverutils.BaseResponse[dto.TripResponse]
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, "aborted", res.Data.Status)
	assert.False(t, res.Data.NeedsInput)
}

func TestHealth(t *testing.T) {
	code, _ := do(t, newTestApp(&fakeDriver{}), "GET", "/api/health", "", "")
	assert.Equal(t, fiber.StatusOK, code)
}
