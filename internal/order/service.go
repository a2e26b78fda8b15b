package order

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/events"
	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/metrics"
)

// Event types published after commit.
const (
	EventPlaced        = "order.placed"
	EventStatusChanged = "order.status_changed"
)

// Event is the payload published for order lifecycle changes.
type Event struct {
	Type        string          `json:"type"`
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      Status          `json:"status"`
	ItemCount   int             `json:"item_count,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// Recorder receives placement outcomes. *metrics.Metrics satisfies it.
type Recorder interface {
	OrderPlaced(result string, amount decimal.Decimal)
}

// Service provides business logic for orders.
type Service struct {
	repo      Repository
	publisher events.Publisher
	recorder  Recorder
	log       *zap.Logger
}

func NewService(repo Repository, publisher events.Publisher, recorder Recorder, log *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if recorder == nil {
		recorder = (*metrics.Metrics)(nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, publisher: publisher, recorder: recorder, log: log}
}

// PlaceOrder converts the user's cart into an order. The cart and product
// rows are locked for the duration of the transaction; any failure leaves
// orders, items, stock and cart exactly as they were.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, delivery DeliveryInfo) (Placement, error) {
	delivery.Date = strings.TrimSpace(delivery.Date)
	delivery.Time = strings.TrimSpace(delivery.Time)
	delivery.Address = strings.TrimSpace(delivery.Address)
	if userID <= 0 || delivery.Date == "" || delivery.Time == "" || delivery.Address == "" {
		return Placement{}, apperror.Validation("Missing required fields")
	}

	var placed Placement
	err := s.repo.WithinTx(ctx, func(tx Tx) error {
		ok, err := tx.UserExists(ctx, userID)
		if err != nil {
			return apperror.Storage("check user", err)
		}
		if !ok {
			return ErrUserNotFound
		}

		lines, err := tx.LockCart(ctx, userID)
		if err != nil {
			return apperror.Storage("lock cart", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		for _, l := range lines {
			if l.Stock < l.Quantity {
				return &InsufficientStockError{
					ProductID:   l.ProductID,
					ProductName: l.ProductName,
					Requested:   l.Quantity,
					Available:   l.Stock,
				}
			}
			total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		o := Order{
			UserID:          userID,
			TotalAmount:     total,
			DeliveryDate:    delivery.Date,
			DeliveryTime:    delivery.Time,
			DeliveryAddress: delivery.Address,
			Status:          StatusPending,
		}
		if err := tx.InsertOrder(ctx, &o); err != nil {
			return apperror.Storage("insert order", err)
		}

		items := make([]Item, 0, len(lines))
		for _, l := range lines {
			it := Item{OrderID: o.ID, ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price, ProductName: l.ProductName}
			if err := tx.InsertItem(ctx, &it); err != nil {
				return apperror.Storage("insert order item", err)
			}
			items = append(items, it)
		}

		for _, l := range lines {
			ok, err := tx.DecrementStock(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return apperror.Storage("decrement stock", err)
			}
			if !ok {
				return &InsufficientStockError{ProductID: l.ProductID, ProductName: l.ProductName, Requested: l.Quantity, Available: l.Stock}
			}
		}

		if err := tx.ClearCart(ctx, userID); err != nil {
			return apperror.Storage("clear cart", err)
		}

		placed = Placement{OrderID: o.ID, TotalAmount: total, Items: items, CreatedAt: o.CreatedAt}
		return nil
	})
	if err != nil {
		s.recordFailure(userID, err)
		if apperror.KindOf(err) == apperror.KindStorage {
			var ae *apperror.Error
			if !errors.As(err, &ae) {
				err = apperror.Storage("place order", err)
			}
		}
		return Placement{}, err
	}

	s.recorder.OrderPlaced(metrics.ResultSuccess, placed.TotalAmount)
	s.log.Info("order placed",
		zap.Int64("order_id", placed.OrderID),
		zap.Int64("user_id", userID),
		zap.String("total_amount", placed.TotalAmount.StringFixed(2)),
		zap.Int("items", len(placed.Items)),
	)
	s.publish(ctx, Event{
		Type:        EventPlaced,
		OrderID:     placed.OrderID,
		UserID:      userID,
		TotalAmount: placed.TotalAmount,
		Status:      StatusPending,
		ItemCount:   len(placed.Items),
		OccurredAt:  placed.CreatedAt,
	})
	return placed, nil
}

func (s *Service) recordFailure(userID int64, err error) {
	var stockErr *InsufficientStockError
	switch {
	case errors.Is(err, ErrEmptyCart):
		s.recorder.OrderPlaced(metrics.ResultEmptyCart, decimal.Zero)
	case errors.As(err, &stockErr):
		s.recorder.OrderPlaced(metrics.ResultInsufficientStock, decimal.Zero)
		s.log.Info("order rejected: insufficient stock",
			zap.Int64("user_id", userID),
			zap.Int64("product_id", stockErr.ProductID),
			zap.Int("requested", stockErr.Requested),
			zap.Int("available", stockErr.Available),
		)
	default:
		s.recorder.OrderPlaced(metrics.ResultError, decimal.Zero)
	}
}

// UpdateStatus sets the order status. Any of the three statuses may be
// assigned from any other.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status Status) error {
	if orderID <= 0 {
		return apperror.Validation("Missing required fields")
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}
	ok, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return apperror.Storage("update order status", err)
	}
	if !ok {
		return ErrNotFound
	}

	s.log.Info("order status updated", zap.Int64("order_id", orderID), zap.String("status", string(status)))
	s.publish(ctx, Event{Type: EventStatusChanged, OrderID: orderID, Status: status, OccurredAt: time.Now().UTC()})
	return nil
}

func (s *Service) Get(ctx context.Context, orderID int64) (Order, error) {
	if orderID <= 0 {
		return Order{}, apperror.Validation("Order ID is required")
	}
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, apperror.Storage("get order", err)
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	if userID <= 0 {
		return nil, apperror.Validation("User ID is required")
	}
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Storage("list orders by user", err)
	}
	return orders, nil
}

func (s *Service) ListBySeller(ctx context.Context, sellerID int64) ([]Order, error) {
	if sellerID <= 0 {
		return nil, apperror.Validation("Seller ID is required")
	}
	orders, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, apperror.Storage("list orders by seller", err)
	}
	return orders, nil
}

// publish is best effort: the order is already committed.
func (s *Service) publish(ctx context.Context, ev Event) {
	if err := s.publisher.Publish(ctx, strconv.FormatInt(ev.OrderID, 10), ev); err != nil {
		s.log.Warn("publish order event failed",
			zap.String("type", ev.Type),
			zap.Int64("order_id", ev.OrderID),
			zap.Error(err),
		)
	}
}
