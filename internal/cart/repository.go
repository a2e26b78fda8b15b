package cart

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

var (
	ErrNotFound        = apperror.NotFound("Cart item not found")
	ErrProductNotFound = apperror.NotFound("Product not found")
	ErrUserNotFound    = apperror.NotFound("User not found")
	ErrOwnProduct      = apperror.Conflict("You cannot add your own product to cart")
	ErrQuantityLimit   = apperror.Validation(fmt.Sprintf("Quantity cannot exceed %d", MaxQuantity))
)

// MaxQuantity bounds a single cart row, merged quantities included.
const MaxQuantity = 9999

// Repository provides access to cart rows.
type Repository interface {
	// ProductSeller returns the seller of a product or ErrProductNotFound.
	ProductSeller(ctx context.Context, productID int64) (int64, error)
	// Upsert adds qty to the (user, product) row, creating it when absent,
	// and returns the row id. A merge past MaxQuantity returns
	// ErrQuantityLimit and leaves the row unchanged.
	Upsert(ctx context.Context, userID, productID int64, qty int) (int64, error)
	UpdateQuantity(ctx context.Context, itemID int64, qty int) (bool, error)
	Delete(ctx context.Context, itemID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]Item, error)
}

// Product is the product state the in-memory repository joins against.
type Product struct {
	ID       int64
	SellerID int64
	Name     string
	Price    decimal.Decimal
	Stock    int
	ImageURL string
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu       sync.RWMutex
	products map[int64]Product
	users    map[int64]bool
	items    []Item
	nextID   int64
}

func NewInMemoryRepository(userIDs []int64, products []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		products: make(map[int64]Product, len(products)),
		users:    make(map[int64]bool, len(userIDs)),
		nextID:   1,
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	for _, id := range userIDs {
		r.users[id] = true
	}
	return r
}

func (r *InMemoryRepository) ProductSeller(_ context.Context, productID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	return p.SellerID, nil
}

func (r *InMemoryRepository) Upsert(_ context.Context, userID, productID int64, qty int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.users[userID] {
		return 0, ErrUserNotFound
	}
	if _, ok := r.products[productID]; !ok {
		return 0, ErrProductNotFound
	}
	for i := range r.items {
		if r.items[i].UserID == userID && r.items[i].ProductID == productID {
			if r.items[i].Quantity+qty > MaxQuantity {
				return 0, ErrQuantityLimit
			}
			r.items[i].Quantity += qty
			return r.items[i].ID, nil
		}
	}
	it := Item{ID: r.nextID, UserID: userID, ProductID: productID, Quantity: qty, CreatedAt: time.Now()}
	r.nextID++
	r.items = append(r.items, it)
	return it.ID, nil
}

func (r *InMemoryRepository) UpdateQuantity(_ context.Context, itemID int64, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items[i].Quantity = qty
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, itemID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == itemID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID int64) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Item, 0)
	for _, it := range r.items {
		if it.UserID != userID {
			continue
		}
		p := r.products[it.ProductID]
		it.ProductName = p.Name
		it.Price = p.Price
		it.ImageURL = p.ImageURL
		it.StockQuantity = p.Stock
		it.ItemTotal = p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
