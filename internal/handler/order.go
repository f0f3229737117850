package handler

import (
	"context"
	"net/http"
	"strconv"

	"stylemart-be/internal/order"
	"stylemart-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type checkoutResponse struct {
	Message     string `json:"message"`
	OrderID     int64  `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var input order.CheckoutInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.IdempotencyKey = r.Header.Get(IdempotencyKeyHeader)

	res, err := h.orders.Checkout(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	utils.WriteJSON(w, status, checkoutResponse{
		Message:     "Order placed successfully",
		OrderID:     res.OrderID,
		OrderNumber: res.OrderNumber,
	})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.GetUserOrders(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}

	o, err := h.orders.GetOrderByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByOrderNumber(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.orders.UpdateStatus)
}

func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.orders.AdminUpdateStatus)
}

type statusUpdater func(ctx context.Context, orderID int64, update order.StatusUpdate) (order.Order, error)

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, apply statusUpdater) {
	id, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}

	var update order.StatusUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	o, err := apply(r.Context(), id, update)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	orders, err := h.orders.ListAll(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) AdminUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}

	var req paymentStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.orders.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, o)
}
