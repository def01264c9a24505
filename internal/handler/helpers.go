package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/shop-orders/internal/order"
	"github.com/vasiliy-maslov/shop-orders/internal/product"
)

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

// actorFromRequest reads the identity injected by the gateway. Verifying the
// token that produced these headers is the gateway's job, not ours.
func actorFromRequest(r *http.Request) (order.Actor, error) {
	userID, err := uuid.FromString(r.Header.Get("X-User-ID"))
	if err != nil {
		return order.Actor{}, errors.New("missing or invalid X-User-ID header")
	}
	return order.Actor{
		UserID: userID,
		Admin:  r.Header.Get("X-Admin") == "true",
	}, nil
}

func mapOrderErrorToStatusCode(err error) int {
	var notFound *order.ProductNotFoundError
	var noStock *order.InsufficientStockError

	switch {
	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrTooManyItems),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrDuplicateProduct),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.As(err, &noStock), errors.Is(err, order.ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, order.ErrAccessDenied):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func mapProductErrorToStatusCode(err error) int {
	if errors.Is(err, product.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// errorMessage hides internal detail for unexpected failures; expected
// conditions keep their specific message.
func errorMessage(err error, code int) string {
	if code == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
