package category

import (
	"context"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// List returns up to limit categories. Out of range limits fall back to
// the default or are capped.
func (s *Service) List(ctx context.Context, limit int) ([]Category, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	items, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, apperror.Storage("list categories", err)
	}
	return items, nil
}
