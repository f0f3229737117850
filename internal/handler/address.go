package handler

import (
	"net/http"

	"stylemart-be/internal/address"
	"stylemart-be/internal/utils"
)

type validationResponse struct {
	Valid bool `json:"valid"`
}

func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	list, err := h.addresses.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var input address.AddressInput
	if !decodeJSON(w, r, &input) {
		return
	}

	a, err := h.addresses.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "addressId")
	if !ok {
		return
	}

	var input address.AddressInput
	if !decodeJSON(w, r, &input) {
		return
	}

	a, err := h.addresses.Update(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "addressId")
	if !ok {
		return
	}

	if err := h.addresses.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, messageResponse{Message: "Address deleted"})
}

// ValidateAddress checks an address payload without storing it.
func (h *Handler) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	var input address.AddressInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if err := h.addresses.Validate(input); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, validationResponse{Valid: true})
}
