package product

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

var (
	ErrNotFound       = apperror.NotFound("Product not found")
	ErrSellerNotFound = apperror.NotFound("Seller not found")
	ErrInUse          = apperror.Conflict("Product is referenced by existing orders")
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]Product, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]Product, error)
	GetByID(ctx context.Context, id int64) (Product, error)
	// Create fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id int64, c Changes) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Seller is the user data the in-memory repository joins against.
type Seller struct {
	ID       int64
	FullName string
	Email    string
}

// InMemoryRepository is a simple in-memory implementation useful for tests and
// seeding local data.
type InMemoryRepository struct {
	mu      sync.RWMutex
	storage []Product
	sellers map[int64]Seller
	inUse   map[int64]bool
	nextID  int64
}

func NewInMemoryRepository(sellers []Seller, seed []Product) *InMemoryRepository {
	r := &InMemoryRepository{
		storage: make([]Product, 0, len(seed)),
		sellers: make(map[int64]Seller, len(sellers)),
		inUse:   make(map[int64]bool),
		nextID:  1,
	}
	for _, s := range sellers {
		r.sellers[s.ID] = s
	}
	for _, p := range seed {
		r.storage = append(r.storage, p)
		if p.ID >= r.nextID {
			r.nextID = p.ID + 1
		}
	}
	return r
}

// MarkOrdered records that an order item references the product, which
// blocks its deletion.
func (r *InMemoryRepository) MarkOrdered(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inUse[id] = true
}

func (r *InMemoryRepository) List(_ context.Context, f Filter) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	search := strings.ToLower(f.Search)
	out := make([]Product, 0)
	for _, p := range r.storage {
		if f.ID != 0 && p.ID != f.ID {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if search != "" {
			desc := ""
			if p.Description != nil {
				desc = *p.Description
			}
			if !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(desc), search) {
				continue
			}
		}
		out = append(out, r.withSeller(p))
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) ListBySeller(_ context.Context, sellerID int64) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Product, 0)
	for _, p := range r.storage {
		if p.SellerID == sellerID {
			out = append(out, r.withSeller(p))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int64) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.storage {
		if p.ID == id {
			return r.withSeller(p), nil
		}
	}
	return Product{}, ErrNotFound
}

func (r *InMemoryRepository) Create(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sellers[p.SellerID]; !ok {
		return ErrSellerNotFound
	}
	now := time.Now()
	p.ID = r.nextID
	p.CreatedAt, p.UpdatedAt = now, now
	r.nextID++
	r.storage = append(r.storage, *p)
	return nil
}

func (r *InMemoryRepository) Update(_ context.Context, id int64, c Changes) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID != id {
			continue
		}
		p := &r.storage[i]
		if c.Name != nil {
			p.Name = *c.Name
		}
		if c.Description != nil {
			p.Description = c.Description
		}
		if c.Price != nil {
			p.Price = *c.Price
		}
		if c.StockQuantity != nil {
			p.StockQuantity = *c.StockQuantity
		}
		if c.Category != nil {
			p.Category = *c.Category
		}
		if c.ImageURL != nil {
			p.ImageURL = c.ImageURL
		}
		p.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.storage {
		if r.storage[i].ID == id {
			if r.inUse[id] {
				return false, ErrInUse
			}
			r.storage = append(r.storage[:i], r.storage[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) withSeller(p Product) Product {
	s := r.sellers[p.SellerID]
	p.SellerName, p.SellerEmail = s.FullName, s.Email
	return p
}

func sortNewestFirst(ps []Product) {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].ID > ps[j].ID
		}
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}
