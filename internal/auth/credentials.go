package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// Credentials hashes passwords and issues bearer tokens. It is configured once
// at startup and shared by the user manager and the Auth Gate.
type Credentials struct {
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

func New(secret string, ttl time.Duration, cost int) *Credentials {
	return &Credentials{
		secret: []byte(secret),
		ttl:    ttl,
		cost:   cost,
		now:    time.Now,
	}
}

func (c *Credentials) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword returns ErrInvalidCredentials when password does not match hash.
func (c *Credentials) ComparePassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueToken signs an HS256 token for the given account.
func (c *Credentials) IssueToken(userID uint, email string) (string, time.Time, error) {
	expires := c.now().Add(c.ttl)
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"iat":     c.now().Unix(),
		"exp":     expires.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}
