package product

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wichananm65/digital-store-backend/internal/apperr"
	"github.com/wichananm65/digital-store-backend/internal/category"
)

// Repository stores products with their owned rows. Lookups return (nil, nil)
// when no row matches. Create, Update and Delete are all-or-nothing.
type Repository interface {
	// GetByID loads the product with its categories, options and images.
	GetByID(ctx context.Context, id uint) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	// ExistingCategoryIDs returns the subset of ids that name a category.
	ExistingCategoryIDs(ctx context.Context, ids []uint) ([]uint, error)
	// Create inserts p with its Options and Images and links it to categoryIDs.
	Create(ctx context.Context, p *Product, categoryIDs []uint) error
	Update(ctx context.Context, id uint, cs Changeset) error
	// Delete removes the product, its owned rows and its category links.
	Delete(ctx context.Context, id uint) error
}

func notOwned(label string, id uint) error {
	return apperr.Validation(fmt.Sprintf("%s %d does not belong to this product", label, id))
}

type record struct {
	product     Product
	categoryIDs []uint
}

// InMemoryRepository keeps products in process memory. Category names are
// resolved through cats at read time, so deleted categories simply drop out.
type InMemoryRepository struct {
	mu        sync.RWMutex
	cats      category.Repository
	storage   map[uint]record
	nextID    uint
	nextChild uint
}

func NewInMemoryRepository(cats category.Repository) *InMemoryRepository {
	return &InMemoryRepository{
		cats:      cats,
		storage:   map[uint]record{},
		nextID:    1,
		nextChild: 1,
	}
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	r.mu.RLock()
	rec, ok := r.storage[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.hydrate(ctx, rec)
}

func (r *InMemoryRepository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	r.mu.RLock()
	var (
		rec   record
		found bool
	)
	for _, candidate := range r.storage {
		if candidate.product.Slug == slug {
			rec, found = candidate, true
			break
		}
	}
	r.mu.RUnlock()
	if !found {
		return nil, nil
	}
	return r.hydrate(ctx, rec)
}

func (r *InMemoryRepository) hydrate(ctx context.Context, rec record) (*Product, error) {
	p := clone(rec.product)
	for _, cid := range rec.categoryIDs {
		c, err := r.cats.GetByID(ctx, cid)
		if err != nil {
			return nil, err
		}
		if c != nil {
			p.Categories = append(p.Categories, *c)
		}
	}
	return &p, nil
}

func (r *InMemoryRepository) ExistingCategoryIDs(ctx context.Context, ids []uint) ([]uint, error) {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		c, err := r.cats.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Create(_ context.Context, p *Product, categoryIDs []uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slugTaken(p.Slug, 0) {
		return ErrSlugTaken
	}

	p.ID = r.nextID
	r.nextID++
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	for i := range p.Options {
		p.Options[i].ID, p.Options[i].ProductID = r.child(), p.ID
	}
	for i := range p.Images {
		p.Images[i].ID, p.Images[i].ProductID = r.child(), p.ID
	}

	rec := record{product: clone(*p), categoryIDs: append([]uint(nil), categoryIDs...)}
	rec.product.Categories = nil
	r.storage[p.ID] = rec
	return nil
}

func (r *InMemoryRepository) Update(_ context.Context, id uint, cs Changeset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.storage[id]
	if !ok {
		return ErrNotFound
	}

	// work on a copy so a failing item leaves the stored record untouched
	next := record{product: clone(rec.product), categoryIDs: rec.categoryIDs}
	cs.Patch.apply(&next.product)
	if r.slugTaken(next.product.Slug, id) {
		return ErrSlugTaken
	}
	if cs.CategoryIDs != nil {
		next.categoryIDs = append([]uint(nil), (*cs.CategoryIDs)...)
	}

	nextChild := r.nextChild
	alloc := func() uint { nextChild++; return nextChild - 1 }

	options, err := reconcileSlice(next.product.Options, cs.Options, "option",
		func(o Option) uint { return o.ID },
		func(o *Option) { o.ID, o.ProductID = alloc(), id },
		mergeOption)
	if err != nil {
		return err
	}
	images, err := reconcileSlice(next.product.Images, cs.Images, "image",
		func(img Image) uint { return img.ID },
		func(img *Image) { img.ID, img.ProductID = alloc(), id },
		mergeImage)
	if err != nil {
		return err
	}

	next.product.Options, next.product.Images = options, images
	next.product.UpdatedAt = time.Now()
	r.storage[id] = next
	r.nextChild = nextChild
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

// Count reports how many products are stored.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.storage)
}

func (r *InMemoryRepository) slugTaken(slug string, self uint) bool {
	for id, rec := range r.storage {
		if id != self && rec.product.Slug == slug {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) child() uint {
	id := r.nextChild
	r.nextChild++
	return id
}

func reconcileSlice[T any](rows []T, changes []Change[T], label string, idOf func(T) uint, stamp func(*T), merge func(T, T, []string) T) ([]T, error) {
	out := append([]T(nil), rows...)
	find := func(id uint) int {
		for i, row := range out {
			if idOf(row) == id {
				return i
			}
		}
		return -1
	}

	for _, ch := range changes {
		switch ch.Kind {
		case ChangeCreate:
			v := ch.Value
			stamp(&v)
			out = append(out, v)
		case ChangeUpdate:
			i := find(ch.ID)
			if i < 0 {
				return nil, notOwned(label, ch.ID)
			}
			out[i] = merge(out[i], ch.Value, ch.Fields)
		case ChangeDelete:
			i := find(ch.ID)
			if i < 0 {
				return nil, notOwned(label, ch.ID)
			}
			out = append(out[:i], out[i+1:]...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return idOf(out[i]) < idOf(out[j]) })
	return out, nil
}

func mergeOption(cur, patch Option, fields []string) Option {
	for _, f := range fields {
		switch f {
		case "title":
			cur.Title = patch.Title
		case "shape":
			cur.Shape = patch.Shape
		case "type":
			cur.Type = patch.Type
		case "values":
			cur.Values = patch.Values
		}
	}
	return cur
}

func mergeImage(cur, patch Image, fields []string) Image {
	for _, f := range fields {
		switch f {
		case "type":
			cur.Type = patch.Type
		case "content":
			cur.Content = patch.Content
		}
	}
	return cur
}

func clone(p Product) Product {
	p.Categories = append([]category.Category(nil), p.Categories...)
	p.Options = append([]Option(nil), p.Options...)
	p.Images = append([]Image(nil), p.Images...)
	return p
}
