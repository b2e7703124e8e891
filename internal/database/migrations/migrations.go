// Package migrations creates and updates the store schema.
package migrations

import (
	"gorm.io/gorm"

	"github.com/wichananm65/digital-store-backend/internal/category"
	"github.com/wichananm65/digital-store-backend/internal/product"
	"github.com/wichananm65/digital-store-backend/internal/user"
)

// Models lists every persisted type in creation order.
func Models() []any {
	return []any{
		&category.Category{},
		&user.User{},
		&product.Product{},
		&product.ProductCategory{},
		&product.Option{},
		&product.Image{},
	}
}

// Migrate registers the product/category join table and runs AutoMigrate.
// Options and images reference products with ON DELETE CASCADE.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&product.Product{}, "Categories", &product.ProductCategory{}); err != nil {
		return err
	}
	return db.AutoMigrate(Models()...)
}
