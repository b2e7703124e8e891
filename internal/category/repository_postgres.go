package category

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

func (r *PostgresRepository) Search(ctx context.Context, f Filters, limit, offset int) ([]Category, int64, error) {
	query := r.db.WithContext(ctx).Model(&Category{})
	if f.UseInMenu != nil {
		query = query.Where("use_in_menu = ?", *f.UseInMenu)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("count categories", err)
	}

	query = query.Order("id")
	if limit >= 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var out []Category
	if err := query.Find(&out).Error; err != nil {
		return nil, 0, apperr.Internal("search categories", err)
	}
	return out, total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uint) (*Category, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *PostgresRepository) first(ctx context.Context, cond string, arg any) (*Category, error) {
	var c Category
	err := r.db.WithContext(ctx).Where(cond, arg).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("load category", err)
	}
	return &c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *Category) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperr.Wrap(ErrSlugTaken, err)
		}
		return apperr.Internal("create category", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *Category) error {
	res := r.db.WithContext(ctx).Model(&Category{ID: c.ID}).Updates(map[string]any{
		"name":        c.Name,
		"slug":        c.Slug,
		"use_in_menu": c.UseInMenu,
	})
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			return apperr.Wrap(ErrSlugTaken, res.Error)
		}
		return apperr.Internal("update category", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM productcategories WHERE category_id = ?", id).Error; err != nil {
			return apperr.Internal("detach category", err)
		}
		res := tx.Delete(&Category{}, id)
		if res.Error != nil {
			return apperr.Internal("delete category", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
