package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusCompleted:
		return true
	}
	return false
}

// Order is a placed purchase. TotalAmount always equals the sum of
// quantity*price over Items, where price is the snapshot taken at placement.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"user_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	DeliveryDate    string          `json:"delivery_date"`
	DeliveryTime    string          `json:"delivery_time"`
	DeliveryAddress string          `json:"delivery_address"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	BuyerName  string `json:"buyer_name,omitempty"`
	BuyerEmail string `json:"buyer_email,omitempty"`
	Items      []Item `json:"items"`
}

type Item struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`

	ProductName string `json:"product_name,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Subtotal is quantity times the snapshot price.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// DeliveryInfo is stored verbatim on the order.
type DeliveryInfo struct {
	Date    string
	Time    string
	Address string
}

// CartLine is a cart row joined with the live product state, read under lock
// at the start of placement.
type CartLine struct {
	CartItemID  int64
	ProductID   int64
	ProductName string
	Price       decimal.Decimal
	Stock       int
	Quantity    int
}

// Placement is the result of a successful PlaceOrder.
type Placement struct {
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []Item          `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
}
