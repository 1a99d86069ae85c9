package handler

import (
	"net/http"
	"strconv"

	"github.com/xenking/craft-market/internal/domain/shop"
	"github.com/xenking/craft-market/internal/domain/user"
)

type createShopRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	OwnerID     string `json:"owner_id"`
}

func (h *Handler) createShop(w http.ResponseWriter, r *http.Request, u *user.User) {
	var req createShopRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if len(req.Name) < 3 {
		respondError(w, http.StatusUnprocessableEntity, "shop name must be at least 3 characters")
		return
	}

	s, err := h.shops.Create(r.Context(), u, shop.CreateRequest{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Website:     req.Website,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toShopView(s))
}

func (h *Handler) listShops(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	shops, err := h.shopRepo.List(r.Context(), limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toShopViews(shops))
}

func (h *Handler) getShop(w http.ResponseWriter, r *http.Request) {
	s, err := h.shopRepo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toShopView(s))
}

func (h *Handler) listShopsByOwner(w http.ResponseWriter, r *http.Request) {
	shops, err := h.shopRepo.ListByOwner(r.Context(), r.PathValue("userID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toShopViews(shops))
}

type updateShopRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Website     *string `json:"website"`
}

func (h *Handler) updateShop(w http.ResponseWriter, r *http.Request, u *user.User) {
	var req updateShopRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if req.Name != nil && len(*req.Name) < 3 {
		respondError(w, http.StatusUnprocessableEntity, "shop name must be at least 3 characters")
		return
	}

	s, err := h.shops.Update(r.Context(), u, r.PathValue("id"), shop.UpdateParams{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Website:     req.Website,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toShopView(s))
}

func (h *Handler) deleteShop(w http.ResponseWriter, r *http.Request, u *user.User) {
	if err := h.shops.Delete(r.Context(), u, r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) searchShops(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")
	if len(term) < minSearchTermLen {
		respondError(w, http.StatusUnprocessableEntity, "search term must be at least 3 characters")
		return
	}

	shops, err := h.shopRepo.SearchByName(r.Context(), term)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toShopViews(shops))
}

// parseLimit reads an optional positive ?limit query parameter.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errLimitQuery
	}
	return limit, nil
}

var errLimitQuery = errInvalidQuery("limit must be a positive integer")

type errInvalidQuery string

func (e errInvalidQuery) Error() string { return string(e) }
