package order

import (
	"fmt"

	"github.com/wichananm65/drone-shop-backend/internal/apperror"
)

var (
	ErrEmptyCart     = apperror.Validation("Cart is empty")
	ErrNotFound      = apperror.NotFound("Order not found")
	ErrUserNotFound  = apperror.NotFound("User not found")
	ErrInvalidStatus = apperror.Validation("Invalid status")
)

// InsufficientStockError names the first cart line whose quantity exceeds the
// product's stock. Nothing is written when it is returned.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s", e.ProductName)
}

func (e *InsufficientStockError) ErrorKind() apperror.Kind { return apperror.KindConflict }
