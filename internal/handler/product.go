package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/shop-orders/internal/product"
)

// ProductHandler handles HTTP requests for the catalog. Reads are open,
// writes are admin only.
type ProductHandler struct {
	repo product.Repository
}

func NewProductHandler(repo product.Repository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

type productRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
}

func (req *productRequest) toProduct() (*product.Product, string) {
	if req.Title == "" {
		return nil, "title is required"
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, "price must be a non-negative decimal"
	}
	if req.Stock < 0 {
		return nil, "stock must be non-negative"
	}
	return &product.Product{
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
	}, ""
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := product.Query{
		Search:  r.URL.Query().Get("search"),
		OrderBy: r.URL.Query().Get("ordering"),
	}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	products, err := h.repo.List(r.Context(), q)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to list products")
		respondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *ProductHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		code := mapProductErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Msg("handler: failed to get product")
		}
		respondWithError(w, code, errorMessage(err, code))
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !actor.Admin {
		respondWithError(w, http.StatusForbidden, "admin access required")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, msg := req.toProduct()
	if msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.repo.Create(r.Context(), p); err != nil {
		log.Error().Err(err).Msg("handler: failed to create product")
		respondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !actor.Admin {
		respondWithError(w, http.StatusForbidden, "admin access required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, msg := req.toProduct()
	if msg != "" {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}
	p.ID = id

	if err := h.repo.Update(r.Context(), p); err != nil {
		code := mapProductErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Msg("handler: failed to update product")
		}
		respondWithError(w, code, errorMessage(err, code))
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if !actor.Admin {
		respondWithError(w, http.StatusForbidden, "admin access required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		code := mapProductErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Msg("handler: failed to delete product")
		}
		respondWithError(w, code, errorMessage(err, code))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
