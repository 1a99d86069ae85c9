package handler

import (
	"net/http"

	"github.com/xenking/craft-market/internal/domain/user"
)

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request, u *user.User) {
	c, err := h.carts.Create(r.Context(), u)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCartView(c))
}

func (h *Handler) listCarts(w http.ResponseWriter, r *http.Request, u *user.User) {
	carts, err := h.cartRepo.ListByOwner(r.Context(), u.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartViews(carts))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request, u *user.User) {
	c, err := h.carts.Get(r.Context(), u, r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartView(c))
}

func (h *Handler) addCartProduct(w http.ResponseWriter, r *http.Request, u *user.User) {
	c, err := h.carts.AddProduct(r.Context(), u, r.PathValue("id"), r.PathValue("productID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartView(c))
}

func (h *Handler) removeCartProduct(w http.ResponseWriter, r *http.Request, u *user.User) {
	c, err := h.carts.RemoveProduct(r.Context(), u, r.PathValue("id"), r.PathValue("productID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartView(c))
}

func (h *Handler) deleteCart(w http.ResponseWriter, r *http.Request, u *user.User) {
	if err := h.carts.Delete(r.Context(), u, r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
