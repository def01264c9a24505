package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/shop-orders/internal/order"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	UserID string           `json:"user_id"`
	Items  []order.LineItem `json:"items"`
}

type orderItemResponse struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	LinePrice string `json:"line_price"`
}

type orderResponse struct {
	OrderID   string              `json:"order_id"`
	UserID    string              `json:"user_id"`
	Status    string              `json:"status"`
	Total     string              `json:"total"`
	Items     []orderItemResponse `json:"items"`
	CreatedAt string              `json:"created_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			LinePrice: it.Price.String(),
		})
	}
	return orderResponse{
		OrderID:   o.ID.String(),
		UserID:    o.UserID.String(),
		Status:    o.Status.String(),
		Total:     o.Total.String(),
		Items:     items,
		CreatedAt: o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateOrder handles the checkout of a set of line items.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.FromString(req.UserID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	o, err := h.svc.PlaceOrder(r.Context(), order.PlaceOrderInput{
		UserID:         userID,
		Items:          req.Items,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		code := mapOrderErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Msg("handler: failed to create order")
		}
		respondWithError(w, code, errorMessage(err, code))
		return
	}

	respondWithJSON(w, http.StatusCreated, toOrderResponse(o))
}

// GetOrderByID returns a single order, owner or admin only.
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.svc.GetOrder(r.Context(), id, actor)
	if err != nil {
		code := mapOrderErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Msg("handler: failed to get order")
		}
		respondWithError(w, code, errorMessage(err, code))
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderResponse(o))
}

// ListOrders returns the requester's orders, newest first. Admins may list
// any user's orders via the user_id query parameter.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	userID := actor.UserID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		if userID, err = uuid.FromString(raw); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
	}

	orders, err := h.svc.ListOrders(r.Context(), userID, actor)
	if err != nil {
		code := mapOrderErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Msg("handler: failed to list orders")
		}
		respondWithError(w, code, errorMessage(err, code))
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"orders": out})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order through the status state machine,
// admin only.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}

	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status, actor); err != nil {
		code := mapOrderErrorToStatusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Msg("handler: failed to update order status")
		}
		respondWithError(w, code, errorMessage(err, code))
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}
