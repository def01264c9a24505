package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// PlaceOrder runs the whole reservation in one transaction: lock each
	// product row, check availability, price the line server-side, decrement
	// stock and insert the order with its items. On any failure nothing is
	// committed.
	PlaceOrder(ctx context.Context, userID uuid.UUID, items []LineItem) (*Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) PlaceOrder(ctx context.Context, userID uuid.UUID, items []LineItem) (*Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to generate order ID: %w", err)
	}

	now := time.Now().UTC()
	total := decimal.Zero
	orderItems := make([]OrderItem, 0, len(items))

	// Lock order = input order. Duplicate product ids are rejected before we
	// get here, so a request can never deadlock with itself.
	for _, it := range items {
		var priceText string
		var stock int
		err := tx.QueryRow(ctx, `
			SELECT price::text, stock
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, it.ProductID).Scan(&priceText, &stock)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProductNotFoundError{ProductID: it.ProductID}
		}
		if err != nil {
			return nil, fmt.Errorf("repository: failed to lock product %d: %w", it.ProductID, err)
		}

		if stock < it.Quantity {
			return nil, &InsufficientStockError{
				ProductID: it.ProductID,
				Available: stock,
				Requested: it.Quantity,
			}
		}

		price, err := decimal.NewFromString(priceText)
		if err != nil {
			return nil, fmt.Errorf("repository: invalid price for product %d: %w", it.ProductID, err)
		}
		linePrice := price.Mul(decimal.NewFromInt(int64(it.Quantity)))

		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock = stock - $2, updated_at = $3
			WHERE id = $1
		`, it.ProductID, it.Quantity, now); err != nil {
			return nil, fmt.Errorf("repository: failed to decrement stock for product %d: %w", it.ProductID, err)
		}

		itemID, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("repository: failed to generate order item ID: %w", err)
		}

		total = total.Add(linePrice)
		orderItems = append(orderItems, OrderItem{
			ID:        itemID,
			OrderID:   orderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     linePrice,
			CreatedAt: now,
		})
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, status, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, orderID, userID, string(StatusPending), total.String(), now, now); err != nil {
		return nil, fmt.Errorf("repository: failed to insert order: %w", err)
	}

	for _, item := range orderItems {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price.String(), item.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to insert order item for order %s: %w", orderID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository: failed to commit transaction: %w", err)
	}

	return &Order{
		ID:        orderID,
		UserID:    userID,
		Status:    StatusPending,
		Total:     total,
		Items:     orderItems,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	var (
		o         Order
		status    string
		totalText string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, status, total::text, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&o.ID, &o.UserID, &status, &totalText, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: failed to select order %s: %w", orderID, err)
	}

	o.Status = Status(status)
	if o.Total, err = decimal.NewFromString(totalText); err != nil {
		return nil, fmt.Errorf("repository: invalid total for order %s: %w", orderID, err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price::text, created_at
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	o.Items = make([]OrderItem, 0)
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan item for order %s: %w", orderID, err)
		}
		o.Items = append(o.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating items for order %s: %w", orderID, err)
	}

	return &o, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orderRows, err := r.db.Query(ctx, `
		SELECT id, user_id, status, total::text, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user %s: %w", userID, err)
	}
	defer orderRows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for orderRows.Next() {
		var (
			o         Order
			status    string
			totalText string
		)
		if err := orderRows.Scan(&o.ID, &o.UserID, &status, &totalText, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for user %s: %w", userID, err)
		}
		o.Status = Status(status)
		if o.Total, err = decimal.NewFromString(totalText); err != nil {
			return nil, fmt.Errorf("repository: invalid total for order %s: %w", o.ID, err)
		}
		o.Items = make([]OrderItem, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}
	if err := orderRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for user %s: %w", userID, err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, price::text, created_at
		FROM order_items
		WHERE order_id = ANY($1)
	`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for user %s: %w", userID, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanOrderItem(itemRows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for user %s: %w", userID, err)
		}
		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for user %s: %w", userID, err)
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, *ordersMap[id])
	}
	return result, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status Status) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, orderID, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to update status of order %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func scanOrderItem(rows pgx.Rows) (OrderItem, error) {
	var (
		item      OrderItem
		priceText string
	)
	if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &priceText, &item.CreatedAt); err != nil {
		return OrderItem{}, err
	}
	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return OrderItem{}, err
	}
	item.Price = price
	return item, nil
}
