package users

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-memory Repository used in tests and as a fallback
// storage engine. It applies the same uniqueness rules as the Mongo indexes.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[primitive.ObjectID]*User)}
}

func (r *MemoryRepo) Insert(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return ErrConflict
		}
	}

	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *MemoryRepo) FindByID(_ context.Context, id primitive.ObjectID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *MemoryRepo) FindByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}
