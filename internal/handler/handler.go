package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"stylemart-be/internal/address"
	"stylemart-be/internal/apperr"
	"stylemart-be/internal/cart"
	"stylemart-be/internal/logger"
	"stylemart-be/internal/order"
	"stylemart-be/internal/user"
	"stylemart-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	users     user.Service
	addresses address.Service
	carts     cart.Service
	orders    order.Service
}

func New(users user.Service, addresses address.Service, carts cart.Service, orders order.Service) *Handler {
	return &Handler{
		users:     users,
		addresses: addresses,
		carts:     carts,
		orders:    orders,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// decodeJSON reads the request body into v and answers 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pathID parses a positive id from the named route parameter and answers
// 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, ok := utils.ParseID(chi.URLParam(r, name))
	if !ok {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse{
			Error:  "invalid " + name,
			Fields: map[string]string{name: "must be a positive integer"},
		})
	}
	return id, ok
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrInvalidInput),
		errors.Is(err, apperr.ErrInactive),
		errors.Is(err, apperr.ErrInsufficientStock),
		errors.Is(err, apperr.ErrEmptyCart),
		errors.Is(err, apperr.ErrInvalidAddress):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeServiceError maps a domain error onto the HTTP response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		utils.WriteJSON(w, http.StatusUnprocessableEntity, utils.ErrorResponse{
			Error:  verr.Error(),
			Fields: verr.Fields,
		})
		return
	}

	status := statusFor(err)
	if status != http.StatusInternalServerError {
		utils.WriteError(w, status, err.Error())
		return
	}

	logger.FromCtx(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	if errors.Is(err, apperr.ErrOrderItemCreationFailed) {
		utils.WriteError(w, status, err.Error())
		return
	}
	utils.WriteError(w, status, "internal server error")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
