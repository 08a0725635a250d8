package apps

import (
	"context"
	"sort"
	"sync"

	"github.com/phoneid/phoneid/internal/apperr"
)

type memoryRepository struct {
	mu   sync.RWMutex
	apps map[string]App
}

// NewMemoryRepository builds an in-memory app store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{apps: make(map[string]App)}
}

func (r *memoryRepository) Create(_ context.Context, app App) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.apps[app.ID]; exists {
		return apperr.Newf(apperr.KindDuplicate, "app %s already exists", app.ID)
	}
	r.apps[app.ID] = app
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (App, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.apps[id]
	if !ok {
		return App{}, apperr.Newf(apperr.KindNotFound, "app %s not found", id)
	}
	return app, nil
}

func (r *memoryRepository) List(_ context.Context, limit, offset int) ([]App, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]App, 0, len(r.apps))
	for _, app := range r.apps {
		app.Secret = ""
		all = append(all, app)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memoryRepository) UpdateSecret(_ context.Context, id, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return apperr.Newf(apperr.KindNotFound, "app %s not found", id)
	}
	app.Secret = secret
	r.apps[id] = app
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[id]; !ok {
		return apperr.Newf(apperr.KindNotFound, "app %s not found", id)
	}
	delete(r.apps, id)
	return nil
}
