package product

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

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

func byID(db *gorm.DB) *gorm.DB { return db.Order("id") }

func (r *PostgresRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *PostgresRepository) first(ctx context.Context, cond string, arg any) (*Product, error) {
	var p Product
	err := r.db.WithContext(ctx).
		Preload("Categories", byID).
		Preload("Options", byID).
		Preload("Images", byID).
		Where(cond, arg).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("load product", err)
	}
	return &p, nil
}

func (r *PostgresRepository) ExistingCategoryIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return []uint{}, nil
	}
	params := make([]int64, len(ids))
	for i, id := range ids {
		params[i] = int64(id)
	}

	var found []uint
	err := r.db.WithContext(ctx).
		Raw("SELECT id FROM categories WHERE id = ANY(?)", pq.Array(params)).
		Scan(&found).Error
	if err != nil {
		return nil, apperr.Internal("check categories", err)
	}
	return found, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *Product, categoryIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperr.Wrap(ErrSlugTaken, err)
			}
			return apperr.Internal("create product", err)
		}
		if len(categoryIDs) > 0 {
			if err := linkCategories(tx, p.ID, categoryIDs); err != nil {
				return err
			}
		}

		for i := range p.Images {
			p.Images[i].ProductID = p.ID
		}
		for i := range p.Options {
			p.Options[i].ProductID = p.ID
		}
		if len(p.Images) > 0 {
			if err := tx.Create(&p.Images).Error; err != nil {
				return apperr.Internal("create product images", err)
			}
		}
		if len(p.Options) > 0 {
			if err := tx.Create(&p.Options).Error; err != nil {
				return apperr.Internal("create product options", err)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) Update(ctx context.Context, id uint, cs Changeset) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cols := cs.Patch.columns(); len(cols) > 0 {
			res := tx.Model(&Product{}).Where("id = ?", id).Updates(cols)
			if res.Error != nil {
				if database.IsUniqueViolation(res.Error) {
					return apperr.Wrap(ErrSlugTaken, res.Error)
				}
				return apperr.Internal("update product", res.Error)
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}

		if cs.CategoryIDs != nil {
			if err := tx.Where("product_id = ?", id).Delete(&ProductCategory{}).Error; err != nil {
				return apperr.Internal("unlink categories", err)
			}
			if err := linkCategories(tx, id, *cs.CategoryIDs); err != nil {
				return err
			}
		}

		if err := applyChanges(tx, id, "image", cs.Images, func(img *Image) { img.ProductID = id }); err != nil {
			return err
		}
		return applyChanges(tx, id, "option", cs.Options, func(o *Option) { o.ProductID = id })
	})
}

func (r *PostgresRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&Option{}).Error; err != nil {
			return apperr.Internal("delete product options", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&Image{}).Error; err != nil {
			return apperr.Internal("delete product images", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&ProductCategory{}).Error; err != nil {
			return apperr.Internal("unlink categories", err)
		}

		res := tx.Delete(&Product{}, id)
		if res.Error != nil {
			return apperr.Internal("delete product", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func linkCategories(tx *gorm.DB, productID uint, categoryIDs []uint) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]ProductCategory, 0, len(categoryIDs))
	for _, cid := range categoryIDs {
		links = append(links, ProductCategory{ProductID: productID, CategoryID: cid})
	}
	if err := tx.Create(&links).Error; err != nil {
		return apperr.Internal("link categories", err)
	}
	return nil
}

// applyChanges runs one reconciliation plan. Updates and deletes are scoped to
// the product so foreign ids touch nothing and abort the transaction.
func applyChanges[T any](tx *gorm.DB, productID uint, label string, changes []Change[T], stamp func(*T)) error {
	for _, ch := range changes {
		switch ch.Kind {
		case ChangeCreate:
			v := ch.Value
			stamp(&v)
			if err := tx.Create(&v).Error; err != nil {
				return apperr.Internal("create product "+label, err)
			}
		case ChangeUpdate:
			res := tx.Model(new(T)).Select(ch.Fields).Where("id = ? AND product_id = ?", ch.ID, productID).Updates(ch.Value)
			if res.Error != nil {
				return apperr.Internal("update product "+label, res.Error)
			}
			if res.RowsAffected == 0 {
				return notOwned(label, ch.ID)
			}
		case ChangeDelete:
			res := tx.Where("id = ? AND product_id = ?", ch.ID, productID).Delete(new(T))
			if res.Error != nil {
				return apperr.Internal("delete product "+label, res.Error)
			}
			if res.RowsAffected == 0 {
				return notOwned(label, ch.ID)
			}
		}
	}
	return nil
}
