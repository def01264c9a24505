package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/shop-orders/internal/product"
)

type mockProductRepository struct {
	createFunc  func(ctx context.Context, p *product.Product) error
	getByIDFunc func(ctx context.Context, id int64) (*product.Product, error)
	listFunc    func(ctx context.Context, q product.Query) ([]product.Product, error)
	updateFunc  func(ctx context.Context, p *product.Product) error
	deleteFunc  func(ctx context.Context, id int64) error
}

func (m *mockProductRepository) Create(ctx context.Context, p *product.Product) error {
	return m.createFunc(ctx, p)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProductRepository) List(ctx context.Context, q product.Query) ([]product.Product, error) {
	return m.listFunc(ctx, q)
}

func (m *mockProductRepository) Update(ctx context.Context, p *product.Product) error {
	return m.updateFunc(ctx, p)
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

func productRouter(repo product.Repository) *chi.Mux {
	h := NewProductHandler(repo)
	r := chi.NewRouter()
	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProductByID)
	r.Post("/products", h.CreateProduct)
	r.Put("/products/{id}", h.UpdateProduct)
	r.Delete("/products/{id}", h.DeleteProduct)
	return r
}

func TestProductHandler_GetProductByID(t *testing.T) {
	repo := &mockProductRepository{
		getByIDFunc: func(ctx context.Context, id int64) (*product.Product, error) {
			if id != 1 {
				return nil, product.ErrNotFound
			}
			return &product.Product{ID: 1, Title: "Keyboard", Price: decimal.RequireFromString("99.99"), Stock: 10}, nil
		},
	}
	r := productRouter(repo)

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/1", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var p product.Product
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Equal(t, "Keyboard", p.Title)
	})

	t.Run("not_found", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/2", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid_id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductHandler_ListProducts_PassesQuery(t *testing.T) {
	repo := &mockProductRepository{
		listFunc: func(ctx context.Context, q product.Query) ([]product.Product, error) {
			assert.Equal(t, "keyboard", q.Search)
			assert.Equal(t, "-price", q.OrderBy)
			assert.Equal(t, 5, q.Limit)
			return []product.Product{}, nil
		},
	}
	r := productRouter(repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products?search=keyboard&ordering=-price&limit=5", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProductHandler_CreateProduct(t *testing.T) {
	adminID := uuid.Must(uuid.NewV4()).String()

	tests := []struct {
		name           string
		body           string
		userHeader     string
		adminHeader    string
		expectedStatus int
	}{
		{
			name:           "admin_creates_product",
			body:           `{"title":"Keyboard","description":"RGB","price":"99.99","stock":10}`,
			userHeader:     adminID,
			adminHeader:    "true",
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "non_admin_forbidden",
			body:           `{"title":"Keyboard","price":"99.99","stock":10}`,
			userHeader:     adminID,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "missing_identity",
			body:           `{"title":"Keyboard","price":"99.99","stock":10}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "negative_price",
			body:           `{"title":"Keyboard","price":"-1.00","stock":10}`,
			userHeader:     adminID,
			adminHeader:    "true",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "negative_stock",
			body:           `{"title":"Keyboard","price":"1.00","stock":-3}`,
			userHeader:     adminID,
			adminHeader:    "true",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing_title",
			body:           `{"price":"1.00","stock":3}`,
			userHeader:     adminID,
			adminHeader:    "true",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProductRepository{
				createFunc: func(ctx context.Context, p *product.Product) error {
					p.ID = 1
					return nil
				},
			}
			r := productRouter(repo)

			req := httptest.NewRequest(http.MethodPost, "/products", bytes.NewBufferString(tt.body))
			if tt.userHeader != "" {
				req.Header.Set("X-User-ID", tt.userHeader)
			}
			if tt.adminHeader != "" {
				req.Header.Set("X-Admin", tt.adminHeader)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestProductHandler_DeleteProduct(t *testing.T) {
	adminID := uuid.Must(uuid.NewV4()).String()
	repo := &mockProductRepository{
		deleteFunc: func(ctx context.Context, id int64) error {
			if id != 1 {
				return product.ErrNotFound
			}
			return nil
		},
	}
	r := productRouter(repo)

	t.Run("deleted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/products/1", nil)
		req.Header.Set("X-User-ID", adminID)
		req.Header.Set("X-Admin", "true")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("not_found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/products/2", nil)
		req.Header.Set("X-User-ID", adminID)
		req.Header.Set("X-Admin", "true")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
