package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

var (
	ErrNotFound   = apperror.NotFound("User not found")
	ErrUserExists = apperror.Conflict("User already exists")
)

type Repository interface {
	GetByIdentity(ctx context.Context, externalIdentity string) (User, error)
	// Exists reports whether any user has the identity or the email.
	Exists(ctx context.Context, externalIdentity, email string) (bool, error)
	// Create fills in ID and CreatedAt; returns ErrUserExists on a duplicate.
	Create(ctx context.Context, u *User) error
}

type InMemoryRepository struct {
	mu     sync.RWMutex
	users  []User
	nextID int64
}

func NewInMemoryRepository(seed []User) *InMemoryRepository {
	repo := &InMemoryRepository{
		users:  make([]User, 0, len(seed)),
		nextID: 1,
	}
	for _, u := range seed {
		repo.users = append(repo.users, u)
		if u.ID >= repo.nextID {
			repo.nextID = u.ID + 1
		}
	}
	return repo
}

func (r *InMemoryRepository) GetByIdentity(_ context.Context, externalIdentity string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.ExternalIdentity == externalIdentity {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *InMemoryRepository) Exists(_ context.Context, externalIdentity, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.existsLocked(externalIdentity, email), nil
}

func (r *InMemoryRepository) existsLocked(externalIdentity, email string) bool {
	for _, u := range r.users {
		if u.ExternalIdentity == externalIdentity || strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (r *InMemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsLocked(u.ExternalIdentity, u.Email) {
		return ErrUserExists
	}
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	r.nextID++
	r.users = append(r.users, *u)
	return nil
}
