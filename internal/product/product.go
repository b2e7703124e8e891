package product

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/digital-store-backend/internal/category"
)

// Product owns its options and images; categories are referenced through
// the productcategories join table.
type Product struct {
	ID                uint                `gorm:"primaryKey"`
	Enabled           bool                `gorm:"not null;default:false"`
	Name              string              `gorm:"size:255;not null"`
	Slug              string              `gorm:"size:255;not null;uniqueIndex"`
	Description       string              `gorm:"type:text"`
	Price             decimal.Decimal     `gorm:"type:decimal(10,2);not null"`
	PriceWithDiscount decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	Stock             int                 `gorm:"not null;default:0"`
	Categories        []category.Category `gorm:"many2many:productcategories;"`
	Options           []Option            `gorm:"constraint:OnDelete:CASCADE;"`
	Images            []Image             `gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Product) TableName() string { return "products" }

// ProductCategory is a row of the join table.
type ProductCategory struct {
	ProductID  uint `gorm:"primaryKey"`
	CategoryID uint `gorm:"primaryKey"`
}

func (ProductCategory) TableName() string { return "productcategories" }

// Option is a purchasable variant axis such as size or color. Values holds
// the JSON encoding of whatever the client sent.
type Option struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"not null;index"`
	Title     string `gorm:"size:255"`
	Shape     string `gorm:"size:64"`
	Type      string `gorm:"size:64"`
	Values    string `gorm:"type:text"`
}

func (Option) TableName() string { return "productoptions" }

type Image struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID uint   `gorm:"not null;index"`
	Type      string `gorm:"size:64"`
	Content   string `gorm:"type:text"`
}

func (Image) TableName() string { return "productimages" }

// View is the outward shape of a product with its owned collections flattened.
type View struct {
	ID                uint                `json:"id"`
	Enabled           bool                `json:"enabled"`
	Name              string              `json:"name"`
	Slug              string              `json:"slug"`
	Description       string              `json:"description"`
	Price             decimal.Decimal     `json:"price"`
	PriceWithDiscount decimal.NullDecimal `json:"price_with_discount"`
	Stock             int                 `json:"stock"`
	Categories        []string            `json:"categories"`
	Options           []json.RawMessage   `json:"options"`
	Images            []string            `json:"images"`
}

func NewView(p Product) View {
	v := View{
		ID:                p.ID,
		Enabled:           p.Enabled,
		Name:              p.Name,
		Slug:              p.Slug,
		Description:       p.Description,
		Price:             p.Price,
		PriceWithDiscount: p.PriceWithDiscount,
		Stock:             p.Stock,
		Categories:        make([]string, 0, len(p.Categories)),
		Options:           make([]json.RawMessage, 0, len(p.Options)),
		Images:            make([]string, 0, len(p.Images)),
	}
	for _, c := range p.Categories {
		v.Categories = append(v.Categories, c.Name)
	}
	for _, o := range p.Options {
		raw := json.RawMessage(o.Values)
		if !json.Valid(raw) {
			// legacy rows may hold plain text
			raw, _ = json.Marshal(o.Values)
		}
		v.Options = append(v.Options, raw)
	}
	for _, img := range p.Images {
		v.Images = append(v.Images, img.Content)
	}
	return v
}

type ImageInput struct {
	ID      *uint   `json:"id"`
	Deleted bool    `json:"deleted"`
	Type    *string `json:"type"`
	Content *string `json:"content"`
}

// OptionInput accepts "value" as an alias of "values".
type OptionInput struct {
	ID      *uint           `json:"id"`
	Deleted bool            `json:"deleted"`
	Title   *string         `json:"title"`
	Shape   *string         `json:"shape"`
	Type    *string         `json:"type"`
	Values  json.RawMessage `json:"values"`
	Value   json.RawMessage `json:"value"`
}

func (o OptionInput) values() json.RawMessage {
	if isAbsent(o.Values) {
		return o.Value
	}
	return o.Values
}

func isAbsent(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// CreateInput is the body of POST /products.
type CreateInput struct {
	Enabled           *bool            `json:"enabled"`
	Name              string           `json:"name" validate:"required"`
	Slug              string           `json:"slug" validate:"required"`
	Description       string           `json:"description"`
	Price             *decimal.Decimal `json:"price" validate:"required"`
	PriceWithDiscount *decimal.Decimal `json:"price_with_discount"`
	Stock             *int             `json:"stock" validate:"omitempty,gte=0"`
	CategoryIDs       []uint           `json:"category_ids" validate:"required"`
	Images            []ImageInput     `json:"images"`
	Options           []OptionInput    `json:"options"`
}

// Patch holds the scalar columns of an update. Nil fields are left untouched.
type Patch struct {
	Enabled           *bool            `json:"enabled"`
	Name              *string          `json:"name"`
	Slug              *string          `json:"slug"`
	Description       *string          `json:"description"`
	Price             *decimal.Decimal `json:"price"`
	PriceWithDiscount *decimal.Decimal `json:"price_with_discount"`
	Stock             *int             `json:"stock" validate:"omitempty,gte=0"`
}

func (p Patch) columns() map[string]any {
	cols := map[string]any{}
	if p.Enabled != nil {
		cols["enabled"] = *p.Enabled
	}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Slug != nil {
		cols["slug"] = *p.Slug
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.PriceWithDiscount != nil {
		cols["price_with_discount"] = decimal.NewNullDecimal(*p.PriceWithDiscount)
	}
	if p.Stock != nil {
		cols["stock"] = *p.Stock
	}
	return cols
}

func (p Patch) apply(dst *Product) {
	if p.Enabled != nil {
		dst.Enabled = *p.Enabled
	}
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Slug != nil {
		dst.Slug = *p.Slug
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.PriceWithDiscount != nil {
		dst.PriceWithDiscount = decimal.NewNullDecimal(*p.PriceWithDiscount)
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
}

// UpdateInput is the body of PUT /products/:id. A present category_ids, even
// an empty one, replaces the whole association set.
type UpdateInput struct {
	Patch
	CategoryIDs *[]uint       `json:"category_ids"`
	Images      []ImageInput  `json:"images"`
	Options     []OptionInput `json:"options"`
}

// Changeset is an update after it has been validated and planned.
type Changeset struct {
	Patch
	CategoryIDs *[]uint
	Images      []Change[Image]
	Options     []Change[Option]
}
