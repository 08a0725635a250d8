package verification

import (
	"context"
	"sync"

	"github.com/phoneid/phoneid/internal/apperr"
)

type memoryRepository struct {
	mu      sync.Mutex
	pending map[string]Verification
}

// NewMemoryRepository builds an in-memory verification store for development
// and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{pending: make(map[string]Verification)}
}

func (r *memoryRepository) Upsert(_ context.Context, v Verification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[v.Number] = v
	return nil
}

func (r *memoryRepository) Find(_ context.Context, number string) (Verification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.pending[number]
	if !ok {
		return Verification{}, apperr.Newf(apperr.KindNotFound, "no pending verification for %s", number)
	}
	return v, nil
}

func (r *memoryRepository) DeleteMatching(_ context.Context, number, code string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.pending[number]
	if !ok || v.Code != code {
		return 0, nil
	}
	delete(r.pending, number)
	return 1, nil
}

func (r *memoryRepository) Delete(_ context.Context, number string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, number)
	return nil
}
