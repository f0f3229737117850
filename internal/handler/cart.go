package handler

import (
	"net/http"

	"stylemart-be/internal/cart"
	"stylemart-be/internal/utils"
)

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.GetCart(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var input cart.AddToCartInput
	if !decodeJSON(w, r, &input) {
		return
	}

	item, err := h.carts.AddToCart(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, item)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	var req updateQuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.carts.UpdateCartItem(r.Context(), itemID, req.Quantity); err != nil {
		writeServiceError(w, r, err)
		return
	}

	msg := "Cart item updated"
	if req.Quantity <= 0 {
		msg = "Cart item removed"
	}
	utils.WriteJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	if err := h.carts.RemoveFromCart(r.Context(), itemID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, messageResponse{Message: "Cart item removed"})
}
