package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Tx is the set of operations available inside a placement transaction.
type Tx interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	// LockCart returns the user's cart joined with product state, ordered by
	// product id, holding row locks until the transaction ends.
	LockCart(ctx context.Context, userID int64) ([]CartLine, error)
	// InsertOrder fills in ID, CreatedAt and UpdatedAt.
	InsertOrder(ctx context.Context, o *Order) error
	// InsertItem fills in ID and CreatedAt.
	InsertItem(ctx context.Context, it *Item) error
	// DecrementStock reports false when the product has fewer than qty units.
	DecrementStock(ctx context.Context, productID int64, qty int) (bool, error)
	ClearCart(ctx context.Context, userID int64) error
}

type Repository interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Tx) error) error
	UpdateStatus(ctx context.Context, orderID int64, status Status) (bool, error)
	Get(ctx context.Context, orderID int64) (Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]Order, error)
}

// MemUser, MemProduct and MemCartItem seed the in-memory repository.
type MemUser struct {
	ID       int64
	FullName string
	Email    string
}

type MemProduct struct {
	ID       int64
	SellerID int64
	Name     string
	Price    decimal.Decimal
	Stock    int
	ImageURL string
}

type MemCartItem struct {
	ID        int64
	UserID    int64
	ProductID int64
	Quantity  int
}

type memState struct {
	users     map[int64]MemUser
	products  map[int64]MemProduct
	cart      []MemCartItem
	orders    []Order
	nextOrder int64
	nextItem  int64
}

func (s *memState) clone() *memState {
	c := &memState{
		users:     make(map[int64]MemUser, len(s.users)),
		products:  make(map[int64]MemProduct, len(s.products)),
		cart:      append([]MemCartItem(nil), s.cart...),
		orders:    make([]Order, len(s.orders)),
		nextOrder: s.nextOrder,
		nextItem:  s.nextItem,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for i, o := range s.orders {
		o.Items = append([]Item(nil), o.Items...)
		c.orders[i] = o
	}
	return c
}

// InMemoryRepository is used for tests and local scenarios. Transactions
// work on a copy of the state that replaces the original only on commit, and
// hold the lock for their whole duration.
type InMemoryRepository struct {
	mu    sync.RWMutex
	state *memState
	now   func() time.Time
}

func NewInMemoryRepository(users []MemUser, products []MemProduct, cart []MemCartItem) *InMemoryRepository {
	s := &memState{
		users:     make(map[int64]MemUser),
		products:  make(map[int64]MemProduct),
		nextOrder: 1,
		nextItem:  1,
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	s.cart = append(s.cart, cart...)
	return &InMemoryRepository{state: s, now: time.Now}
}

// Stock returns the current stock of a product, or -1 when it is unknown.
func (r *InMemoryRepository) Stock(productID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.state.products[productID]
	if !ok {
		return -1
	}
	return p.Stock
}

// SetPrice changes a product's current price. Items already ordered keep
// the price they were placed at.
func (r *InMemoryRepository) SetPrice(productID int64, price decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.state.products[productID]; ok {
		p.Price = price
		r.state.products[productID] = p
	}
}

// CartSize returns the number of cart rows held by a user.
func (r *InMemoryRepository) CartSize(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.state.cart {
		if c.UserID == userID {
			n++
		}
	}
	return n
}

// OrderCount returns the number of stored orders.
func (r *InMemoryRepository) OrderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.state.orders)
}

func (r *InMemoryRepository) WithinTx(ctx context.Context, fn func(Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.state.clone()
	if err := fn(&memTx{s: work, now: r.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.state = work
	return nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, orderID int64, status Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.state.orders {
		if r.state.orders[i].ID == orderID {
			r.state.orders[i].Status = status
			r.state.orders[i].UpdatedAt = r.now()
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) Get(_ context.Context, orderID int64) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.state.orders {
		if o.ID == orderID {
			return r.decorate(o, 0), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID int64) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.state.orders {
		if o.UserID == userID {
			out = append(out, r.decorate(o, 0))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *InMemoryRepository) ListBySeller(_ context.Context, sellerID int64) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.state.orders {
		d := r.decorate(o, sellerID)
		if len(d.Items) > 0 {
			out = append(out, d)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// decorate fills the read-model fields. A non-zero sellerID keeps only that
// seller's items.
func (r *InMemoryRepository) decorate(o Order, sellerID int64) Order {
	u := r.state.users[o.UserID]
	o.BuyerName, o.BuyerEmail = u.FullName, u.Email
	items := make([]Item, 0, len(o.Items))
	for _, it := range o.Items {
		p := r.state.products[it.ProductID]
		if sellerID != 0 && p.SellerID != sellerID {
			continue
		}
		it.ProductName, it.ImageURL = p.Name, p.ImageURL
		items = append(items, it)
	}
	o.Items = items
	return o
}

func sortNewestFirst(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

type memTx struct {
	s   *memState
	now func() time.Time
}

func (t *memTx) UserExists(_ context.Context, userID int64) (bool, error) {
	_, ok := t.s.users[userID]
	return ok, nil
}

func (t *memTx) LockCart(_ context.Context, userID int64) ([]CartLine, error) {
	lines := make([]CartLine, 0)
	for _, c := range t.s.cart {
		if c.UserID != userID {
			continue
		}
		p, ok := t.s.products[c.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, CartLine{
			CartItemID:  c.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Stock:       p.Stock,
			Quantity:    c.Quantity,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (t *memTx) InsertOrder(_ context.Context, o *Order) error {
	now := t.now()
	o.ID = t.s.nextOrder
	o.CreatedAt, o.UpdatedAt = now, now
	t.s.nextOrder++
	stored := *o
	stored.Items = nil
	t.s.orders = append(t.s.orders, stored)
	return nil
}

func (t *memTx) InsertItem(_ context.Context, it *Item) error {
	for i := range t.s.orders {
		if t.s.orders[i].ID != it.OrderID {
			continue
		}
		it.ID = t.s.nextItem
		it.CreatedAt = t.now()
		t.s.nextItem++
		t.s.orders[i].Items = append(t.s.orders[i].Items, *it)
		return nil
	}
	return ErrNotFound
}

func (t *memTx) DecrementStock(_ context.Context, productID int64, qty int) (bool, error) {
	p, ok := t.s.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	t.s.products[productID] = p
	return true, nil
}

func (t *memTx) ClearCart(_ context.Context, userID int64) error {
	kept := t.s.cart[:0:0]
	for _, c := range t.s.cart {
		if c.UserID != userID {
			kept = append(kept, c)
		}
	}
	t.s.cart = kept
	return nil
}
