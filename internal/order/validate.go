package order

const (
	// MaxItems bounds the number of distinct line items per order.
	MaxItems = 50
	// MinQuantity and MaxQuantity bound the quantity of a single line item.
	MinQuantity = 1
	MaxQuantity = 100
)

// ValidateItems checks the structural rules of a checkout request before any
// shared state is touched. It is pure: no locks, no queries, no mutation.
// The first violated rule wins, so an unchanged resubmission reproduces the
// same error.
func ValidateItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrEmptyOrder
	}
	if len(items) > MaxItems {
		return ErrTooManyItems
	}

	seen := make(map[int64]bool, len(items))
	for _, it := range items {
		if it.Quantity < MinQuantity || it.Quantity > MaxQuantity {
			return ErrInvalidQuantity
		}
		if seen[it.ProductID] {
			return ErrDuplicateProduct
		}
		seen[it.ProductID] = true
	}

	return nil
}
