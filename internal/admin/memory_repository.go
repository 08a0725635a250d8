package admin

import (
	"context"
	"sync"

	"github.com/phoneid/phoneid/internal/apperr"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]Admin
}

// NewMemoryRepository builds an in-memory admin store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{byEmail: make(map[string]Admin)}
}

func (r *memoryRepository) Create(_ context.Context, admin Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[admin.Email]; exists {
		return apperr.Newf(apperr.KindDuplicate, "admin %s already exists", admin.Email)
	}
	r.byEmail[admin.Email] = admin
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.byEmail[email]
	if !ok {
		return Admin{}, apperr.New(apperr.KindNotFound, "admin not found")
	}
	return admin, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, admin := range r.byEmail {
		if admin.ID == id {
			return admin, nil
		}
	}
	return Admin{}, apperr.New(apperr.KindNotFound, "admin not found")
}
