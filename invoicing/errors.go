package invoicing

import (
	"errors"
	"fmt"
)

// Stable error kinds surfaced by the invoice lifecycle engine. Callers match
// them with errors.Is; HTTP handlers translate them to status codes.
var (
	// ErrInvalidRequest is returned for missing or malformed input, such as an
	// empty item list or an unknown status value.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned when a referenced customer, product or invoice
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the resource exists but is owned by a
	// different user.
	ErrForbidden = errors.New("not authorized")

	// ErrInsufficientStock is returned when a requested quantity exceeds the
	// available stock. The wrapped InsufficientStockError carries the product
	// and the quantity that was available.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInternal is returned for unexpected persistence failures. The
	// underlying error is not exposed to callers.
	ErrInternal = errors.New("internal error")
)

// InsufficientStockError reports which product was short on stock and how
// many units were available when the request was rejected.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d", e.ProductName, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
