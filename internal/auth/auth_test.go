package auth

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wichananm65/digital-store-backend/internal/web"
)

func newCredentials() *Credentials {
	return New("test-secret", time.Hour, bcrypt.MinCost)
}

func TestHashAndCompare(t *testing.T) {
	creds := newCredentials()

	hash, err := creds.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, creds.ComparePassword(hash, "hunter22"))
	assert.ErrorIs(t, creds.ComparePassword(hash, "wrong"), ErrInvalidCredentials)
}

func gatedApp(creds *Credentials) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: web.ErrorHandler(zerolog.Nop())})
	app.Get("/me", creds.Gate(), func(c *fiber.Ctx) error {
		id, err := Identity(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user_id": id.UserID, "email": id.Email})
	})
	return app
}

func signClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestGate(t *testing.T) {
	creds := newCredentials()
	app := gatedApp(creds)

	valid, _, err := creds.IssueToken(42, "ana@example.com")
	require.NoError(t, err)

	expiredCreds := newCredentials()
	expiredCreds.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredCreds.IssueToken(42, "ana@example.com")
	require.NoError(t, err)

	foreign, _, err := New("other-secret", time.Hour, bcrypt.MinCost).IssueToken(42, "ana@example.com")
	require.NoError(t, err)

	testCases := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, fiber.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", fiber.StatusUnauthorized},
		{"expired token", "Bearer " + expired, fiber.StatusUnauthorized},
		{"foreign signature", "Bearer " + foreign, fiber.StatusUnauthorized},
		{"negative user id", "Bearer " + signClaims(t, jwt.MapClaims{"user_id": -3}), fiber.StatusUnauthorized},
		{"fractional user id", "Bearer " + signClaims(t, jwt.MapClaims{"user_id": 1.5}), fiber.StatusUnauthorized},
		{"missing user id", "Bearer " + signClaims(t, jwt.MapClaims{"email": "ana@example.com"}), fiber.StatusUnauthorized},
		{"valid token", "Bearer " + valid, fiber.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			res, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, res.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			if tc.wantStatus == fiber.StatusOK {
				assert.Equal(t, float64(42), body["user_id"])
				assert.Equal(t, "ana@example.com", body["email"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}

func TestIdentity_WithoutGate(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: web.ErrorHandler(zerolog.Nop())})
	app.Get("/me", func(c *fiber.Ctx) error {
		_, err := Identity(c)
		return err
	})

	res, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}
