package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/stockroom-service/internal/auth"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(r fiber.Router) {
	r.Get("/ping", func(c *fiber.Ctx) error { return response.Success(c, "pong") })
	r.Get("/boom", func(c *fiber.Ctx) error { panic("boom") })
}

func newApp(ready func(context.Context) error) *fiber.App {
	log := logger.NewNop()
	return New(Config{
		Gate:      auth.NewGate("secret", false, log),
		Ready:     ready,
		AccessLog: io.Discard,
	}, log, pingRoutes{})
}

func call(t *testing.T, app *fiber.App, req *http.Request) (int, response.Envelope) {
	t.Helper()
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env response.Envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

func TestServer_HealthIsPublic(t *testing.T) {
	app := newApp(nil)

	status, env := call(t, app, httptest.NewRequest(http.MethodGet, APIPrefix+"/health", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestServer_HealthReportsDatabase(t *testing.T) {
	app := newApp(func(context.Context) error { return errors.New("down") })

	status, env := call(t, app, httptest.NewRequest(http.MethodGet, APIPrefix+"/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "Database unavailable", env.Error)
}

func TestServer_RoutesSitBehindGate(t *testing.T) {
	app := newApp(nil)

	status, env := call(t, app, httptest.NewRequest(http.MethodGet, APIPrefix+"/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", env.Error)

	req := httptest.NewRequest(http.MethodPost, APIPrefix+"/login", strings.NewReader(`{"password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)

	req = httptest.NewRequest(http.MethodGet, APIPrefix+"/ping", nil)
	for _, c := range res.Cookies() {
		req.AddCookie(c)
	}
	status, env = call(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", env.Data)
}

func TestServer_RecoversFromPanics(t *testing.T) {
	log := logger.NewNop()
	app := New(Config{AccessLog: io.Discard}, log, pingRoutes{})

	status, env := call(t, app, httptest.NewRequest(http.MethodGet, APIPrefix+"/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, env.Success)
}

func TestServer_UnknownRoute(t *testing.T) {
	log := logger.NewNop()
	app := New(Config{AccessLog: io.Discard}, log)

	status, env := call(t, app, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route not found", env.Error)
}
