package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/stockroom-service/internal/inventory/repository"
	"github.com/fekuna/stockroom-service/internal/inventory/usecase"
	itemhandler "github.com/fekuna/stockroom-service/internal/item/handler"
	itemrepo "github.com/fekuna/stockroom-service/internal/item/repository"
	itemusecase "github.com/fekuna/stockroom-service/internal/item/usecase"
	"github.com/fekuna/stockroom-service/pkg/database"
	"github.com/fekuna/stockroom-service/pkg/database/dbtest"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/response"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db := dbtest.New(t)
	log := logger.NewNop()

	items := itemusecase.NewItemUseCase(itemrepo.NewSQLRepository(db), itemusecase.Options{}, log)
	inv := usecase.NewInventoryUseCase(repository.NewSQLRepository(db), database.NewTxManager(db), usecase.Options{}, log)

	app := fiber.New()
	itemhandler.NewItemHandler(items, log).RegisterRoutes(app)
	NewInventoryHandler(inv, log).RegisterRoutes(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, response.Envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env response.Envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

func createItem(t *testing.T, app *fiber.App, sku string, stock int) string {
	t.Helper()
	status, env := do(t, app, http.MethodPost, "/items",
		fmt.Sprintf(`{"name":"Item %s","sku":%q,"category":"Coffee","stock":%d,"min_threshold":1}`, sku, sku, stock))
	require.Equal(t, http.StatusCreated, status)
	return env.Data.(map[string]any)["id"].(string)
}

func TestInventoryHandler_ApplyDelta(t *testing.T) {
	app := newApp(t)
	id := createItem(t, app, "BEANS", 5)

	status, env := do(t, app, http.MethodPost, "/items/"+id+"/stock", `{"delta":-2,"user_name":"Sam"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), env.Data.(map[string]any)["new_stock"])

	status, env = do(t, app, http.MethodPost, "/items/"+id+"/stock", `{"delta":-9}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Equal(t, "Insufficient stock for Item BEANS. Available: 3", env.Error)

	status, env = do(t, app, http.MethodGet, "/items/"+id+"/logs", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env.Data.([]any), 1)
}

func TestInventoryHandler_CartAndLedger(t *testing.T) {
	app := newApp(t)
	a := createItem(t, app, "A", 10)
	b := createItem(t, app, "B", 2)

	cart := fmt.Sprintf(`{"user_name":"Sam","items":[{"item_id":%q,"delta":-5},{"item_id":%q,"delta":-3}]}`, a, b)
	status, env := do(t, app, http.MethodPost, "/cart", cart)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Insufficient stock for Item B. Available: 2", env.Error)

	cart = fmt.Sprintf(`{"user_name":"Sam","items":[{"item_id":%q,"delta":-5},{"item_id":%q,"delta":-1}]}`, a, b)
	status, env = do(t, app, http.MethodPost, "/cart", cart)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Order submitted successfully", env.Message)

	status, env = do(t, app, http.MethodGet, "/history/stock", "")
	require.Equal(t, http.StatusOK, status)
	points := env.Data.([]any)
	assert.Equal(t, float64(12), points[0].(map[string]any)["total_stock"])
	assert.Equal(t, float64(6), points[len(points)-1].(map[string]any)["total_stock"])

	status, env = do(t, app, http.MethodGet, "/history/stats", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(6), env.Data.(map[string]any)["total_consumed"])

	status, env = do(t, app, http.MethodGet, "/logs", "")
	require.Equal(t, http.StatusOK, status)
	entries := env.Data.([]any)
	require.Len(t, entries, 2)
	var logID string
	for _, e := range entries {
		if e.(map[string]any)["item_id"] == a {
			logID = e.(map[string]any)["log_id"].(string)
		}
	}
	require.NotEmpty(t, logID)

	status, _ = do(t, app, http.MethodPut, "/logs/"+logID, `{"amount":1}`)
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, app, http.MethodDelete, "/logs/"+logID, "")
	assert.Equal(t, http.StatusOK, status)

	status, env = do(t, app, http.MethodDelete, "/logs/"+logID, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Log not found", env.Error)

	status, env = do(t, app, http.MethodGet, "/items/"+a, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(10), env.Data.(map[string]any)["stock"])
}

func TestInventoryHandler_CartValidation(t *testing.T) {
	app := newApp(t)

	status, env := do(t, app, http.MethodPost, "/cart", `{"user_name":"","items":[]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Please enter your name", env.Error)

	status, env = do(t, app, http.MethodPost, "/cart", `{"user_name":"Sam","items":[]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Cart is empty", env.Error)

	status, env = do(t, app, http.MethodPost, "/cart", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", env.Error)
}
