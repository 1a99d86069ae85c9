package handler

import (
	"net/http"

	"github.com/xenking/craft-market/internal/domain/user"
)

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request, u *user.User) {
	o, err := h.orders.PlaceOrder(r.Context(), u, r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderView(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request, u *user.User) {
	orders, err := h.orders.ListFor(r.Context(), u)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderViews(orders))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, u *user.User) {
	o, err := h.orders.Get(r.Context(), u, r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderView(o))
}
