package category

import (
	"strings"
	"time"
)

// Category is a flat product taxonomy entry.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Slug      string    `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	UseInMenu bool      `gorm:"not null;default:false" json:"use_in_menu"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (Category) TableName() string { return "categories" }

// Input is the body of POST /categories and PUT /categories/:id.
type Input struct {
	Name      string `json:"name" validate:"required"`
	Slug      string `json:"slug" validate:"required"`
	UseInMenu *bool  `json:"use_in_menu" validate:"required"`
}

// Filters narrows a search.
type Filters struct {
	UseInMenu *bool
}

// SearchQuery is a search request after it has been read off the wire.
// Limit -1 means every matching row.
type SearchQuery struct {
	Filters
	Limit  int
	Page   int
	Fields []string
}

// SearchResult is the page returned by Search. Each element of Data holds only
// the selected fields.
type SearchResult struct {
	Data  []map[string]any `json:"data"`
	Total int64            `json:"total"`
	Limit int              `json:"limit"`
	Page  int              `json:"page"`
}

const (
	DefaultLimit = 12
	NoLimit      = -1
)

// Fields lists the selectable category fields in output order.
var Fields = []string{"id", "name", "slug", "use_in_menu"}

// ParseFields turns "name,slug" into a field list. Unknown names are dropped;
// an empty result selects every field.
func ParseFields(raw string) []string {
	wanted := map[string]bool{}
	for _, f := range strings.Split(raw, ",") {
		wanted[strings.TrimSpace(f)] = true
	}

	out := make([]string, 0, len(Fields))
	for _, f := range Fields {
		if wanted[f] {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), Fields...)
	}
	return out
}

// Project keeps only the given fields of c.
func (c Category) Project(fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		switch f {
		case "id":
			out[f] = c.ID
		case "name":
			out[f] = c.Name
		case "slug":
			out[f] = c.Slug
		case "use_in_menu":
			out[f] = c.UseInMenu
		}
	}
	return out
}
