package user

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Repository stores users. Lookups return (nil, nil) when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	// Update writes firstname, surname and email.
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uint) error
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// local runs without Postgres.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage map[uint]User
	nextID  uint
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	r := &InMemoryRepository{storage: make(map[uint]User, len(seed)), nextID: 1}
	for _, u := range seed {
		r.storage[u.ID] = u
		if u.ID >= r.nextID {
			r.nextID = u.ID + 1
		}
	}
	return r
}

func (r *InMemoryRepository) GetByID(_ context.Context, id uint) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.storage[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *InMemoryRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.storage {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTaken(u.Email, 0) {
		return ErrEmailTaken
	}
	u.ID = r.nextID
	r.nextID++
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.storage[u.ID] = *u
	return nil
}

func (r *InMemoryRepository) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.storage[u.ID]
	if !ok {
		return ErrNotFound
	}
	if r.emailTaken(u.Email, u.ID) {
		return ErrEmailTaken
	}
	cur.Firstname, cur.Surname, cur.Email = u.Firstname, u.Surname, u.Email
	cur.UpdatedAt = time.Now()
	r.storage[u.ID] = cur
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

// Count reports how many users are stored.
func (r *InMemoryRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.storage)
}

func (r *InMemoryRepository) emailTaken(email string, self uint) bool {
	for id, u := range r.storage {
		if id != self && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}
