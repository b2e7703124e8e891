package category

import (
	"context"
	"math"

	"github.com/wichananm65/digital-store-backend/internal/apperr"
)

var (
	ErrNotFound     = apperr.NotFound("category not found")
	ErrSlugTaken    = apperr.Conflict("slug already in use")
	ErrInvalidLimit = apperr.Validation("limit must be a positive number or -1")
	ErrInvalidPage  = apperr.Validation("page must be greater than or equal to 1")
	ErrPageTooLarge = apperr.Validation("page is out of range")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Search(ctx context.Context, q SearchQuery) (SearchResult, error) {
	if q.Limit == 0 || q.Limit < NoLimit {
		return SearchResult{}, ErrInvalidLimit
	}
	if q.Page < 1 {
		return SearchResult{}, ErrInvalidPage
	}
	fields := q.Fields
	if len(fields) == 0 {
		fields = Fields
	}

	offset := 0
	if q.Limit != NoLimit {
		if q.Page-1 > math.MaxInt/q.Limit {
			return SearchResult{}, ErrPageTooLarge
		}
		offset = (q.Page - 1) * q.Limit
	}

	rows, total, err := s.repo.Search(ctx, q.Filters, q.Limit, offset)
	if err != nil {
		return SearchResult{}, err
	}

	data := make([]map[string]any, 0, len(rows))
	for _, c := range rows {
		data = append(data, c.Project(fields))
	}
	return SearchResult{Data: data, Total: total, Limit: q.Limit, Page: q.Page}, nil
}

func (s *Service) GetByID(ctx context.Context, id uint) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Category, error) {
	if err := s.ensureSlugFree(ctx, in.Slug, 0); err != nil {
		return nil, err
	}
	c := &Category{Name: in.Name, Slug: in.Slug, UseInMenu: *in.UseInMenu}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id uint, in Input) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.ensureSlugFree(ctx, in.Slug, id); err != nil {
		return err
	}
	return s.repo.Update(ctx, &Category{ID: id, Name: in.Name, Slug: in.Slug, UseInMenu: *in.UseInMenu})
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ensureSlugFree fails with ErrSlugTaken when slug belongs to a category other than self.
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
