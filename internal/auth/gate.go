package auth

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/digital-store-backend/internal/apperr"
)

// ContextKey is where the Auth Gate stores the verified *jwt.Token.
const ContextKey = "user"

var (
	ErrMissingToken = apperr.Unauthorized("missing or malformed authorization token")
	ErrInvalidToken = apperr.Unauthorized("invalid or expired authorization token")
)

// Claims is the identity admitted by the Auth Gate.
type Claims struct {
	UserID uint
	Email  string
}

// Gate rejects requests without a valid "Authorization: Bearer <token>" header.
// Admitted requests carry the decoded token in c.Locals(ContextKey).
func (c *Credentials) Gate() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    c.secret,
		SigningMethod: "HS256",
		ContextKey:    ContextKey,
		TokenLookup:   "header:" + fiber.HeaderAuthorization,
		AuthScheme:    "Bearer",
		ErrorHandler: func(_ *fiber.Ctx, err error) error {
			if err != nil && err.Error() == "Missing or malformed JWT" {
				return ErrMissingToken
			}
			return apperr.Wrap(ErrInvalidToken, err)
		},
	})
}

// Identity extracts the claims the Auth Gate attached to the request.
func Identity(c *fiber.Ctx) (Claims, error) {
	tok, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return Claims{}, ErrMissingToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	var out Claims
	switch v := claims["user_id"].(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) || v > 1<<53 {
			return Claims{}, ErrInvalidToken
		}
		out.UserID = uint(v)
	case int:
		if v <= 0 {
			return Claims{}, ErrInvalidToken
		}
		out.UserID = uint(v)
	case uint:
		out.UserID = v
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Claims{}, ErrInvalidToken
		}
		out.UserID = uint(id)
	default:
		return Claims{}, ErrInvalidToken
	}
	if out.UserID == 0 {
		return Claims{}, ErrInvalidToken
	}
	out.Email, _ = claims["email"].(string)
	return out, nil
}
