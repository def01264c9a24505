package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/shop-orders/internal/order"
)

func repeatedItems(n int) []order.LineItem {
	items := make([]order.LineItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, order.LineItem{ProductID: int64(i + 1), Quantity: 1})
	}
	return items
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name    string
		items   []order.LineItem
		wantErr error
	}{
		{
			name:    "empty_order",
			items:   nil,
			wantErr: order.ErrEmptyOrder,
		},
		{
			name:    "single_item",
			items:   []order.LineItem{{ProductID: 1, Quantity: 3}},
			wantErr: nil,
		},
		{
			name:    "max_items",
			items:   repeatedItems(50),
			wantErr: nil,
		},
		{
			name:    "too_many_items",
			items:   repeatedItems(51),
			wantErr: order.ErrTooManyItems,
		},
		{
			name:    "zero_quantity",
			items:   []order.LineItem{{ProductID: 1, Quantity: 0}},
			wantErr: order.ErrInvalidQuantity,
		},
		{
			name:    "negative_quantity",
			items:   []order.LineItem{{ProductID: 1, Quantity: -2}},
			wantErr: order.ErrInvalidQuantity,
		},
		{
			name:    "quantity_above_limit",
			items:   []order.LineItem{{ProductID: 1, Quantity: 101}},
			wantErr: order.ErrInvalidQuantity,
		},
		{
			name:    "quantity_at_limit",
			items:   []order.LineItem{{ProductID: 1, Quantity: 100}},
			wantErr: nil,
		},
		{
			name: "duplicate_product",
			items: []order.LineItem{
				{ProductID: 1, Quantity: 1},
				{ProductID: 2, Quantity: 1},
				{ProductID: 1, Quantity: 2},
			},
			wantErr: order.ErrDuplicateProduct,
		},
		{
			name: "quantity_checked_before_duplicates",
			items: []order.LineItem{
				{ProductID: 1, Quantity: 0},
				{ProductID: 1, Quantity: 1},
			},
			wantErr: order.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := order.ValidateItems(tt.items)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateItems_Idempotent(t *testing.T) {
	items := []order.LineItem{
		{ProductID: 7, Quantity: 1},
		{ProductID: 7, Quantity: 1},
	}

	first := order.ValidateItems(items)
	second := order.ValidateItems(items)

	assert.ErrorIs(t, first, order.ErrDuplicateProduct)
	assert.Equal(t, first, second)
}
