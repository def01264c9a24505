package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("product not found")

// Clauses the listing may be ordered by. Anything else falls back to newest
// first, so caller input never reaches the query text directly.
var orderByClauses = map[string]string{
	"price":       "price ASC",
	"-price":      "price DESC",
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (title, description, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`, p.Title, p.Description, p.Price.String(), p.Stock, now).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `
		SELECT id, title, description, price::text, stock, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repository: failed to select product %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresRepository) List(ctx context.Context, q Query) ([]Product, error) {
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	orderBy, ok := orderByClauses[q.OrderBy]
	if !ok {
		orderBy = "created_at DESC"
	}
	search := strings.TrimSpace(q.Search)

	rows, err := r.db.Query(ctx, `
		SELECT id, title, description, price::text, stock, created_at, updated_at
		FROM products
		WHERE ($1 = '' OR title ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		ORDER BY `+orderBy+`
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}
	return out, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *Product) error {
	now := time.Now().UTC()
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE products
		SET title = $2, description = $3, price = $4, stock = $5, updated_at = $6
		WHERE id = $1
	`, p.ID, p.Title, p.Description, p.Price.String(), p.Stock, now)
	if err != nil {
		return fmt.Errorf("repository: failed to update product %d: %w", p.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("repository: failed to delete product %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type row interface {
	Scan(dest ...any) error
}

func scanProduct(r row) (*Product, error) {
	var (
		p         Product
		priceText string
	)
	if err := r.Scan(&p.ID, &p.Title, &p.Description, &priceText, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return nil, err
	}
	p.Price = price
	return &p, nil
}
