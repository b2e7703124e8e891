package user

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
	svc, _ := newTestService()
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

const anaJSON = `{"firstname":"Ana","surname":"Lima","email":"ana@example.com","password":"s3cret!","confirmPassword":"s3cret!"}`

func TestCreateUserRoute(t *testing.T) {
	app := newTestApp()

	status, body := send(t, app, "POST", "/users", anaJSON)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, map[string]any{"id": float64(1), "firstname": "Ana", "surname": "Lima", "email": "ana@example.com"}, body)

	status, body = send(t, app, "POST", "/users", anaJSON)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "email already registered", body["error"])
}

func TestCreateUserRoute_Invalid(t *testing.T) {
	app := newTestApp()

	testCases := []struct {
		name string
		body string
		want string
	}{
		{"missing surname", `{"firstname":"Ana","email":"a@b.co","password":"x","confirmPassword":"x"}`, "surname is required"},
		{"bad email", `{"firstname":"Ana","surname":"L","email":"nope","password":"x","confirmPassword":"x"}`, "email must be a valid email address"},
		{"mismatch", `{"firstname":"Ana","surname":"L","email":"a@b.co","password":"x","confirmPassword":"y"}`, "confirmPassword must match password"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := send(t, app, "POST", "/users", tc.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tc.want, body["error"])
		})
	}
}

func TestLoginRoute(t *testing.T) {
	app := newTestApp()
	status, _ := send(t, app, "POST", "/users", anaJSON)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := send(t, app, "POST", "/auth/token", `{"email":"ana@example.com","password":"s3cret!"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, body["user"], "password")

	status, body = send(t, app, "POST", "/auth/token", `{"email":"ana@example.com","password":"wrong"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid email or password", body["error"])
}

func TestUserRoutes(t *testing.T) {
	app := newTestApp()
	status, _ := send(t, app, "POST", "/users", anaJSON)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := send(t, app, "GET", "/users/1", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Ana", body["firstname"])
	assert.NotContains(t, body, "password")

	status, _ = send(t, app, "PUT", "/users/1", `{"firstname":"Ana","surname":"Souza","email":"ana@example.com"}`)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = send(t, app, "PUT", "/users/1", `{"firstname":"Ana"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = send(t, app, "GET", "/users/2", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = send(t, app, "DELETE", "/users/1", "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = send(t, app, "DELETE", "/users/1", "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
