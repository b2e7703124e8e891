package category

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository stores categories. Lookups return (nil, nil) when no row matches.
type Repository interface {
	// Search returns one page of matches ordered by id and the total match count.
	// A negative limit returns every match.
	Search(ctx context.Context, f Filters, limit, offset int) ([]Category, int64, error)
	GetByID(ctx context.Context, id uint) (*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	// Delete detaches the category from every product and removes it.
	Delete(ctx context.Context, id uint) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// local runs without Postgres.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage map[uint]Category
	nextID  uint
}

func NewInMemoryRepository(seed []Category) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make(map[uint]Category, len(seed)),
		nextID:  1,
	}
	for _, c := range seed {
		r.storage[c.ID] = c
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) Search(_ context.Context, f Filters, limit, offset int) ([]Category, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]Category, 0, len(r.storage))
	for _, c := range r.storage {
		if f.UseInMenu != nil && c.UseInMenu != *f.UseInMenu {
			continue
		}
		matches = append(matches, c)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	total := int64(len(matches))
	if limit < 0 {
		return matches, total, nil
	}
	if offset >= len(matches) {
		return []Category{}, total, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], total, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uint) (*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.storage[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *InMemoryRepository) GetBySlug(_ context.Context, slug string) (*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.storage {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) Create(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.storage {
		if existing.Slug == c.Slug {
			return ErrSlugTaken
		}
	}
	c.ID = r.nextID
	r.nextID++
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.storage[c.ID] = *c
	return nil
}

func (r *InMemoryRepository) Update(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[c.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range r.storage {
		if id != c.ID && existing.Slug == c.Slug {
			return ErrSlugTaken
		}
	}
	c.UpdatedAt = time.Now()
	r.storage[c.ID] = *c
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[id]; !ok {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}
