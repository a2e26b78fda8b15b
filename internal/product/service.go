package product

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

// maxPrice is the first value a NUMERIC(12,2) column cannot hold.
var maxPrice = decimal.New(1, 10)

// checkPrice rejects prices the price column would round or overflow.
func checkPrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return apperror.Validation("Price must be greater than zero")
	}
	if !p.Equal(p.Round(2)) {
		return apperror.Validation("Price cannot have more than 2 decimal places")
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return apperror.Validation("Price is too large")
	}
	return nil
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)
	products, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperror.Storage("list products", err)
	}
	return products, nil
}

func (s *Service) ListBySeller(ctx context.Context, sellerID int64) ([]Product, error) {
	if sellerID <= 0 {
		return nil, apperror.Validation("Seller ID is required")
	}
	products, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, apperror.Storage("list products by seller", err)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, apperror.Validation("Product ID is required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, classify("get product", err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.SellerID <= 0 || p.Name == "" || p.Category == "" || !p.Price.IsPositive() {
		return Product{}, apperror.Validation("Missing required fields")
	}
	if p.StockQuantity < 0 {
		return Product{}, apperror.Validation("Stock quantity cannot be negative")
	}
	if err := checkPrice(p.Price); err != nil {
		return Product{}, err
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return Product{}, classify("create product", err)
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id int64, c Changes) error {
	if id <= 0 {
		return apperror.Validation("Product ID is required")
	}
	if c.Empty() {
		return apperror.Validation("No fields to update")
	}
	if c.Name != nil && strings.TrimSpace(*c.Name) == "" {
		return apperror.Validation("Name cannot be empty")
	}
	if c.Category != nil && strings.TrimSpace(*c.Category) == "" {
		return apperror.Validation("Category cannot be empty")
	}
	if c.Price != nil {
		if err := checkPrice(*c.Price); err != nil {
			return err
		}
	}
	if c.StockQuantity != nil && *c.StockQuantity < 0 {
		return apperror.Validation("Stock quantity cannot be negative")
	}

	ok, err := s.repo.Update(ctx, id, c)
	if err != nil {
		return apperror.Storage("update product", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperror.Validation("Product ID is required")
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return classify("delete product", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func classify(op string, err error) error {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Storage(op, err)
}
