package identity

import (
	"context"
	"sync"

	"github.com/phoneid/phoneid/internal/apperr"
)

type pairKey struct {
	userID string
	appID  string
}

type memoryRepository struct {
	mu            sync.Mutex
	usersByLookup map[string]User
	appUsers      map[pairKey]AppUser
	byHash        map[string]pairKey
}

// NewMemoryRepository builds an in-memory identity store for development and
// tests. It enforces the same uniqueness rules as the Postgres schema.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		usersByLookup: make(map[string]User),
		appUsers:      make(map[pairKey]AppUser),
		byHash:        make(map[string]pairKey),
	}
}

func (r *memoryRepository) CreateUser(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.usersByLookup[user.Lookup]; exists {
		return apperr.New(apperr.KindDuplicate, "user already exists")
	}
	r.usersByLookup[user.Lookup] = user
	return nil
}

func (r *memoryRepository) FindUserByLookup(_ context.Context, lookup string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.usersByLookup[lookup]
	if !ok {
		return User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	return user, nil
}

func (r *memoryRepository) UpsertAppUser(_ context.Context, au AppUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey{userID: au.UserID, appID: au.AppID}
	if existing, ok := r.appUsers[key]; ok {
		existing.DeviceID = au.DeviceID
		existing.NotifID = au.NotifID
		r.appUsers[key] = existing
		return nil
	}
	if _, taken := r.byHash[au.Hash]; taken {
		return apperr.New(apperr.KindDuplicate, "app user hash already exists")
	}
	r.appUsers[key] = au
	r.byHash[au.Hash] = key
	return nil
}

func (r *memoryRepository) FindAppUserByHash(_ context.Context, hash string) (AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.byHash[hash]
	if !ok {
		return AppUser{}, apperr.New(apperr.KindNotFound, "app user not found")
	}
	return r.appUsers[key], nil
}

func (r *memoryRepository) FindAppUser(_ context.Context, userID, appID string) (AppUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	au, ok := r.appUsers[pairKey{userID: userID, appID: appID}]
	if !ok {
		return AppUser{}, apperr.New(apperr.KindNotFound, "app user not found")
	}
	return au, nil
}

func (r *memoryRepository) UpdateDevice(_ context.Context, hash, deviceID, notifID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.byHash[hash]
	if !ok {
		return apperr.New(apperr.KindNotFound, "app user not found")
	}
	au := r.appUsers[key]
	au.DeviceID = deviceID
	au.NotifID = notifID
	r.appUsers[key] = au
	return nil
}

func (r *memoryRepository) DeleteByApp(_ context.Context, appID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, au := range r.appUsers {
		if key.appID == appID {
			delete(r.byHash, au.Hash)
			delete(r.appUsers, key)
		}
	}
	return nil
}
