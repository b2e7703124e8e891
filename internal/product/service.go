package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/digital-store-backend/internal/apperr"
)

var (
	ErrNotFound  = apperr.NotFound("product not found")
	ErrSlugTaken = apperr.Conflict("slug already in use")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id uint) (View, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return NewView(*p), nil
}

func (s *Service) load(ctx context.Context, id uint) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (View, error) {
	if err := notBlank("name", in.Name); err != nil {
		return View{}, err
	}
	if err := notBlank("slug", in.Slug); err != nil {
		return View{}, err
	}
	if err := checkPrices(*in.Price, in.PriceWithDiscount); err != nil {
		return View{}, err
	}
	if err := s.ensureSlugFree(ctx, in.Slug, 0); err != nil {
		return View{}, err
	}
	categoryIDs, err := s.checkCategories(ctx, in.CategoryIDs)
	if err != nil {
		return View{}, err
	}

	imagePlan, err := PlanImages(in.Images)
	if err != nil {
		return View{}, err
	}
	optionPlan, err := PlanOptions(in.Options)
	if err != nil {
		return View{}, err
	}
	images, err := creates("images", imagePlan)
	if err != nil {
		return View{}, err
	}
	options, err := creates("options", optionPlan)
	if err != nil {
		return View{}, err
	}

	p := &Product{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Price:       *in.Price,
		Images:      images,
		Options:     options,
	}
	if in.Enabled != nil {
		p.Enabled = *in.Enabled
	}
	if in.PriceWithDiscount != nil {
		p.PriceWithDiscount = decimal.NewNullDecimal(*in.PriceWithDiscount)
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}

	if err := s.repo.Create(ctx, p, categoryIDs); err != nil {
		return View{}, err
	}
	return s.GetByID(ctx, p.ID)
}

func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) error {
	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if in.Name != nil {
		if err := notBlank("name", *in.Name); err != nil {
			return err
		}
	}
	if in.Slug != nil {
		if err := notBlank("slug", *in.Slug); err != nil {
			return err
		}
		if err := s.ensureSlugFree(ctx, *in.Slug, id); err != nil {
			return err
		}
	}

	price := current.Price
	if in.Price != nil {
		price = *in.Price
	}
	discount := in.PriceWithDiscount
	if discount == nil && current.PriceWithDiscount.Valid {
		discount = &current.PriceWithDiscount.Decimal
	}
	if err := checkPrices(price, discount); err != nil {
		return err
	}

	cs := Changeset{Patch: in.Patch}
	if in.CategoryIDs != nil {
		ids, err := s.checkCategories(ctx, *in.CategoryIDs)
		if err != nil {
			return err
		}
		cs.CategoryIDs = &ids
	}
	if cs.Images, err = PlanImages(in.Images); err != nil {
		return err
	}
	if cs.Options, err = PlanOptions(in.Options); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, cs)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ensureSlugFree(ctx context.Context, slug string, self uint) error {
	existing, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return ErrSlugTaken
	}
	return nil
}

// checkCategories dedupes ids and fails when any of them names no category.
func (s *Service) checkCategories(ctx context.Context, ids []uint) ([]uint, error) {
	seen := make(map[uint]bool, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return unique, nil
	}

	found, err := s.repo.ExistingCategoryIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	exists := make(map[uint]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}

	var missing []string
	for _, id := range unique {
		if !exists[id] {
			missing = append(missing, fmt.Sprint(id))
		}
	}
	if len(missing) > 0 {
		return nil, apperr.Validation("unknown category ids: " + strings.Join(missing, ", "))
	}
	return unique, nil
}

func checkPrices(price decimal.Decimal, discount *decimal.Decimal) error {
	if price.IsNegative() {
		return apperr.Validation("price must be greater than or equal to 0")
	}
	if discount == nil {
		return nil
	}
	if discount.IsNegative() {
		return apperr.Validation("price_with_discount must be greater than or equal to 0")
	}
	if discount.GreaterThan(price) {
		return apperr.Validation("price_with_discount must not exceed price")
	}
	return nil
}

func notBlank(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return apperr.Validation(field + " cannot be empty")
	}
	return nil
}
