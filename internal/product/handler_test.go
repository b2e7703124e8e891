package product

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/digital-store-backend/internal/web"
)

func newTestApp() *fiber.App {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	app := fiber.New(fiber.Config{ErrorHandler: web.ErrorHandler(zerolog.Nop())})
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	return app
}

func send(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return res.StatusCode, out
}

const runnerJSON = `{
	"name": "Runner",
	"slug": "runner",
	"price": 199.9,
	"price_with_discount": "149.90",
	"stock": 3,
	"category_ids": [1, 3],
	"images": [{"type": "image/png", "content": "/img/runner.png"}],
	"options": [{"title": "Size", "shape": "square", "type": "text", "values": ["40", "41"]}]
}`

func TestCreateAndGetProductRoutes(t *testing.T) {
	app := newTestApp()

	status, body := send(t, app, "POST", "/products", runnerJSON)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.EqualValues(t, 1, body["id"])
	assert.Equal(t, "199.9", body["price"])
	assert.Equal(t, "149.9", body["price_with_discount"])

	status, body = send(t, app, "GET", "/products/1", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.ElementsMatch(t, []any{"Shoes", "Hats"}, body["categories"])
	assert.Equal(t, []any{[]any{"40", "41"}}, body["options"])
	assert.Equal(t, []any{"/img/runner.png"}, body["images"])
	assert.EqualValues(t, 3, body["stock"])
	assert.Equal(t, false, body["enabled"])
}

func TestCreateProductRoute_Invalid(t *testing.T) {
	app := newTestApp()

	testCases := []struct {
		name string
		body string
		want string
	}{
		{"missing price", `{"name":"a","slug":"a","category_ids":[]}`, "price is required"},
		{"missing categories", `{"name":"a","slug":"a","price":1}`, "category_ids is required"},
		{"negative stock", `{"name":"a","slug":"a","price":1,"stock":-1,"category_ids":[]}`, "stock must be greater than or equal to 0"},
		{"unknown category", `{"name":"a","slug":"a","price":1,"category_ids":[42]}`, "unknown category ids: 42"},
		{"not json", `{"name":`, "invalid request body"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := send(t, app, "POST", "/products", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tc.want, body["error"])
		})
	}
}

func TestUpdateProductRoute(t *testing.T) {
	app := newTestApp()
	status, _ := send(t, app, "POST", "/products", runnerJSON)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = send(t, app, "PUT", "/products/1", `{
		"enabled": true,
		"options": [{"id": 1, "deleted": true}, {"title": "Fit", "value": "slim"}],
		"images": [{"id": 2, "content": "/img/runner-v2.png"}]
	}`)
	assert.Equal(t, fiber.StatusNoContent, status)

	_, body := send(t, app, "GET", "/products/1", "")
	assert.Equal(t, true, body["enabled"])
	assert.Equal(t, []any{"slim"}, body["options"])
	assert.Equal(t, []any{"/img/runner-v2.png"}, body["images"])

	status, body = send(t, app, "PUT", "/products/1", `{"options": [{"id": 99, "deleted": true}]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "option 99 does not belong to this product", body["error"])

	status, _ = send(t, app, "PUT", "/products/9", `{"enabled": false}`)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDeleteProductRoute(t *testing.T) {
	app := newTestApp()
	status, _ := send(t, app, "POST", "/products", runnerJSON)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = send(t, app, "DELETE", "/products/1", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body := send(t, app, "GET", "/products/1", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "product not found", body["error"])

	status, _ = send(t, app, "DELETE", "/products/1", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
