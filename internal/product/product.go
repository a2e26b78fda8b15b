package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry offered by a seller. SellerName and SellerEmail
// are filled from the users table on reads.
type Product struct {
	ID            int64           `json:"id"`
	SellerID      int64           `json:"seller_id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Category      string          `json:"category"`
	ImageURL      *string         `json:"image_url"`
	SellerName    string          `json:"seller_name,omitempty"`
	SellerEmail   string          `json:"seller_email,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Filter narrows List. Zero values are ignored. Search matches name or
// description case-insensitively.
type Filter struct {
	ID       int64
	Category string
	Search   string
}

// Changes is a partial update; nil fields are left untouched.
type Changes struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	Category      *string          `json:"category"`
	ImageURL      *string          `json:"image_url"`
}

func (c Changes) Empty() bool {
	return c.Name == nil && c.Description == nil && c.Price == nil &&
		c.StockQuantity == nil && c.Category == nil && c.ImageURL == nil
}
