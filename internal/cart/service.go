package cart

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

// Service orchestrates cart operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add puts qty units of a product in the user's cart, merging with an
// existing row for the same product.
func (s *Service) Add(ctx context.Context, userID, productID int64, qty int) (int64, error) {
	if userID <= 0 || productID <= 0 || qty <= 0 {
		return 0, apperror.Validation("Missing required fields")
	}
	if qty > MaxQuantity {
		return 0, ErrQuantityLimit
	}

	sellerID, err := s.repo.ProductSeller(ctx, productID)
	if err != nil {
		return 0, classify("look up product", err)
	}
	if sellerID == userID {
		return 0, ErrOwnProduct
	}

	id, err := s.repo.Upsert(ctx, userID, productID, qty)
	if err != nil {
		return 0, classify("add cart item", err)
	}
	return id, nil
}

func (s *Service) Update(ctx context.Context, itemID int64, qty int) error {
	if itemID <= 0 || qty <= 0 {
		return apperror.Validation("Missing required fields")
	}
	if qty > MaxQuantity {
		return ErrQuantityLimit
	}
	ok, err := s.repo.UpdateQuantity(ctx, itemID, qty)
	if err != nil {
		return apperror.Storage("update cart item", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, itemID int64) error {
	if itemID <= 0 {
		return apperror.Validation("Cart item ID is required")
	}
	ok, err := s.repo.Delete(ctx, itemID)
	if err != nil {
		return apperror.Storage("remove cart item", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID int64) (Summary, error) {
	if userID <= 0 {
		return Summary{}, apperror.Validation("User ID is required")
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return Summary{}, apperror.Storage("list cart", err)
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.ItemTotal)
	}
	return Summary{Items: items, Total: total, Count: len(items)}, nil
}

// classify keeps repository domain errors and wraps everything else as a
// storage failure.
func classify(op string, err error) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Storage(op, err)
}
