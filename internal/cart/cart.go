package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a cart row joined with the product it refers to.
type Item struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	ProductID     int64           `json:"product_id"`
	Quantity      int             `json:"quantity"`
	ProductName   string          `json:"product_name"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url,omitempty"`
	StockQuantity int             `json:"stock_quantity"`
	ItemTotal     decimal.Decimal `json:"item_total"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Summary is a user's cart with its running total.
type Summary struct {
	Items []Item          `json:"cart_items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}
