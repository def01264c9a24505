package order

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder       = errors.New("order must contain at least one item")
	ErrTooManyItems     = errors.New("order exceeds the maximum number of items")
	ErrInvalidQuantity  = errors.New("item quantity is out of range")
	ErrDuplicateProduct = errors.New("order references the same product more than once")
	ErrInvalidStatus    = errors.New("unknown order status")

	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrDuplicateRequest  = errors.New("duplicate order request")
	ErrAccessDenied      = errors.New("access to order denied")
)

// ProductNotFoundError reports a line item referencing a product that does
// not exist in the catalog.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError reports a line item requesting more units than the
// product has in stock at reservation time.
type InsufficientStockError struct {
	ProductID int64
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}
