package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wichananm65/digital-store-backend/internal/apperr"
	"github.com/wichananm65/digital-store-backend/internal/database"
)

// PostgresRepository implements Repository with gorm on Postgres.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uint) (*User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "lower(email) = lower(?)", email)
}

func (r *PostgresRepository) first(ctx context.Context, cond string, arg any) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where(cond, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	return &u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Wrap(ErrEmailTaken, err)
		}
		return apperr.Internal("create user", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, u *User) error {
	res := r.db.WithContext(ctx).Model(&User{ID: u.ID}).Updates(map[string]any{
		"firstname": u.Firstname,
		"surname":   u.Surname,
		"email":     u.Email,
	})
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return apperr.Wrap(ErrEmailTaken, res.Error)
		}
		return apperr.Internal("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&User{}, id)
	if res.Error != nil {
		return apperr.Internal("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
