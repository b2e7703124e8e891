package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/digital-store-backend/internal/apperr"
)

type signupPayload struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Age             *int   `json:"age" validate:"omitempty,gte=0"`
}

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zerolog.Nop())})
	app.Post("/signup", func(c *fiber.Ctx) error {
		var p signupPayload
		if err := Bind(c, &p); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/things/:id", func(c *fiber.Ctx) error {
		id, err := ParseID(c, "id")
		if err != nil {
			return err
		}
		if id == 500 {
			return errors.New("database exploded")
		}
		return c.JSON(fiber.Map{"id": id})
	})
	return app
}

func decodeError(t *testing.T, body io.Reader) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp.Error
}

func TestBind(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"valid", `{"email":"a@b.co","password":"x","confirmPassword":"x"}`, 204, ""},
		{"missing email", `{"password":"x","confirmPassword":"x"}`, 400, "email is required"},
		{"bad email", `{"email":"nope","password":"x","confirmPassword":"x"}`, 400, "email must be a valid email address"},
		{"mismatch", `{"email":"a@b.co","password":"x","confirmPassword":"y"}`, 400, "confirmPassword must match password"},
		{"negative age", `{"email":"a@b.co","password":"x","confirmPassword":"x","age":-1}`, 400, "age must be greater than or equal to 0"},
		{"malformed", `{"email":`, 400, "invalid request body"},
	}

	app := newTestApp()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/signup", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			res, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, res.StatusCode)
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, decodeError(t, res.Body))
			}
		})
	}
}

func TestParseIDAndErrorHandler(t *testing.T) {
	app := newTestApp()

	res, err := app.Test(httptest.NewRequest("GET", "/things/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, res.StatusCode)
	assert.Equal(t, "invalid id", decodeError(t, res.Body))

	res, err = app.Test(httptest.NewRequest("GET", "/things/500", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, res.StatusCode)
	assert.Equal(t, "internal server error", decodeError(t, res.Body))

	res, err = app.Test(httptest.NewRequest("GET", "/nowhere", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, res.StatusCode)
}

func TestValidateKind(t *testing.T) {
	err := Validate(&signupPayload{})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestQueryInt(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zerolog.Nop())})
	app.Get("/page", func(c *fiber.Ctx) error {
		n, err := QueryInt(c, "n", 12)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"n": n})
	})

	testCases := []struct {
		query      string
		wantStatus int
		wantN      float64
	}{
		{"", 200, 12},
		{"?n=-1", 200, -1},
		{"?n=3", 200, 3},
		{"?n=three", 400, 0},
	}
	for _, tc := range testCases {
		res, err := app.Test(httptest.NewRequest("GET", "/page"+tc.query, nil))
		require.NoError(t, err)
		assert.Equal(t, tc.wantStatus, res.StatusCode, tc.query)

		var body map[string]any
		require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
		if tc.wantStatus == 200 {
			assert.Equal(t, tc.wantN, body["n"])
		} else {
			assert.Equal(t, "n must be an integer", body["error"])
		}
	}
}
