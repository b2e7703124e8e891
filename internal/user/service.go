package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wichananm65/digital-store-backend/internal/apperr"
	"github.com/wichananm65/digital-store-backend/internal/auth"
)

var (
	ErrNotFound           = apperr.NotFound("user not found")
	ErrEmailTaken         = apperr.Conflict("email already registered")
	ErrInvalidCredentials = apperr.Unauthorized("invalid email or password")
)

// Credentials is the part of auth.Credentials the user manager needs.
type Credentials interface {
	HashPassword(password string) (string, error)
	ComparePassword(hash, password string) error
	IssueToken(userID uint, email string) (string, time.Time, error)
}

type Service struct {
	repo  Repository
	creds Credentials
}

func NewService(repo Repository, creds Credentials) *Service {
	return &Service{repo: repo, creds: creds}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Create(ctx context.Context, in CreateInput) (View, error) {
	if in.Password != in.ConfirmPassword {
		return View{}, apperr.Validation("confirmPassword must match password")
	}
	email := normalizeEmail(in.Email)
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return View{}, err
	}

	hashed, err := s.creds.HashPassword(in.Password)
	if err != nil {
		return View{}, apperr.Internal("hash password", err)
	}
	u := &User{Firstname: in.Firstname, Surname: in.Surname, Email: email, Password: hashed}
	if err := s.repo.Create(ctx, u); err != nil {
		return View{}, err
	}
	return NewView(*u), nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (View, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return NewView(*u), nil
}

func (s *Service) load(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	email := normalizeEmail(in.Email)
	if err := s.ensureEmailFree(ctx, email, id); err != nil {
		return err
	}
	return s.repo.Update(ctx, &User{ID: id, Firstname: in.Firstname, Surname: in.Surname, Email: email})
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Login checks the password and issues a bearer token.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return Session{}, err
	}
	if u == nil {
		return Session{}, ErrInvalidCredentials
	}
	if err := s.creds.ComparePassword(u.Password, in.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, apperr.Internal("compare password", err)
	}

	token, expires, err := s.creds.IssueToken(u.ID, u.Email)
	if err != nil {
		return Session{}, apperr.Internal("issue token", err)
	}
	return Session{Token: token, ExpiresAt: expires, User: NewView(*u)}, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, self uint) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return ErrEmailTaken
	}
	return nil
}
