package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/shop-orders/internal/handler"
	"github.com/vasiliy-maslov/shop-orders/internal/order"
	"github.com/vasiliy-maslov/shop-orders/internal/product"
)

func NewRouter(orderSvc order.Service, products product.Repository) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	oh := handler.NewOrderHandler(orderSvc)
	ph := handler.NewProductHandler(products)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", oh.CreateOrder)
		r.Get("/", oh.ListOrders)
		r.Get("/{id}", oh.GetOrderByID)
		r.Patch("/{id}/status", oh.UpdateOrderStatus)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", ph.ListProducts)
		r.Get("/{id}", ph.GetProductByID)
		r.Post("/", ph.CreateProduct)
		r.Put("/{id}", ph.UpdateProduct)
		r.Delete("/{id}", ph.DeleteProduct)
	})

	return r
}
