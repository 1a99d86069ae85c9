package handler

import (
	"net/http"

	"github.com/xenking/craft-market/internal/domain/product"
	"github.com/xenking/craft-market/internal/domain/user"
)

type createProductRequest struct {
	ShopID       string   `json:"shop_id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Manufacturer string   `json:"manufacturer"`
	Images       []string `json:"images"`
	Price        int64    `json:"price"`
	Discount     int      `json:"discount"`
	Type         string   `json:"product_type"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request, u *user.User) {
	var req createProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if msg, ok := validateProductFields(req.Name, req.Price, req.Discount, product.Type(req.Type)); !ok {
		respondError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	p, err := h.products.Create(r.Context(), u, product.CreateRequest{
		ShopID:       req.ShopID,
		Name:         req.Name,
		Description:  req.Description,
		Manufacturer: req.Manufacturer,
		Images:       req.Images,
		Price:        req.Price,
		Discount:     req.Discount,
		Type:         product.Type(req.Type),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toProductView(p))
}

func validateProductFields(name string, price int64, discount int, typ product.Type) (string, bool) {
	switch {
	case len(name) < 3:
		return "product name must be at least 3 characters", false
	case price <= 0:
		return "price must be greater than 0", false
	case discount < 0 || discount > 100:
		return "discount must be between 0 and 100", false
	case !typ.Valid():
		return "product type must be ARTWORK, SCULPTURE, or OTHER", false
	}
	return "", true
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	products, err := h.productRepo.List(r.Context(), product.ListFilter{
		Limit:  limit,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductViews(products))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.productRepo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductView(p))
}

func (h *Handler) listFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	groups, err := h.productRepo.ListFeatured(r.Context(), limit)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toFeaturedViews(groups))
}

func (h *Handler) listProductsByOwner(w http.ResponseWriter, r *http.Request) {
	products, err := h.productRepo.ListByOwner(r.Context(), r.PathValue("userID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductViews(products))
}

// ownerDetailsView combines a user's purchase history, favourites, and
// open carts into one profile payload.
type ownerDetailsView struct {
	User       userView      `json:"user"`
	Bought     []productView `json:"bought_products"`
	Favourites []productView `json:"favourite_products"`
	Carts      []cartView    `json:"carts"`
}

func (h *Handler) getOwnerProductDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("userID")

	u, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	bought, err := h.productRepo.ListPurchased(ctx, userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	favourites, err := h.productRepo.ListFavourites(ctx, userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	carts, err := h.cartRepo.ListByOwner(ctx, userID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ownerDetailsView{
		User:       toUserView(u),
		Bought:     toProductViews(bought),
		Favourites: toProductViews(favourites),
		Carts:      toCartViews(carts),
	})
}

type updateProductRequest struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	Manufacturer *string   `json:"manufacturer"`
	Images       *[]string `json:"images"`
	Price        *int64    `json:"price"`
	Discount     *int      `json:"discount"`
	Available    *bool     `json:"available"`
	Featured     *bool     `json:"featured"`
	Type         *string   `json:"product_type"`
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request, u *user.User) {
	var req updateProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	switch {
	case req.Name != nil && len(*req.Name) < 3:
		respondError(w, http.StatusUnprocessableEntity, "product name must be at least 3 characters")
		return
	case req.Price != nil && *req.Price <= 0:
		respondError(w, http.StatusUnprocessableEntity, "price must be greater than 0")
		return
	case req.Discount != nil && (*req.Discount < 0 || *req.Discount > 100):
		respondError(w, http.StatusUnprocessableEntity, "discount must be between 0 and 100")
		return
	}

	var typ *product.Type
	if req.Type != nil {
		t := product.Type(*req.Type)
		if !t.Valid() {
			respondError(w, http.StatusUnprocessableEntity, "product type must be ARTWORK, SCULPTURE, or OTHER")
			return
		}
		typ = &t
	}

	p, err := h.products.Update(r.Context(), u, r.PathValue("id"), product.UpdateParams{
		Name:         req.Name,
		Description:  req.Description,
		Manufacturer: req.Manufacturer,
		Images:       req.Images,
		Price:        req.Price,
		Discount:     req.Discount,
		Available:    req.Available,
		Featured:     req.Featured,
		Type:         typ,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductView(p))
}

type featureProductRequest struct {
	Featured bool `json:"featured"`
}

func (h *Handler) featureProduct(w http.ResponseWriter, r *http.Request, u *user.User) {
	var req featureProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	p, err := h.products.SetFeatured(r.Context(), u, r.PathValue("id"), req.Featured)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductView(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request, u *user.User) {
	if err := h.products.Delete(r.Context(), u, r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) favouriteProduct(w http.ResponseWriter, r *http.Request, u *user.User) {
	p, err := h.products.Favourite(r.Context(), u, r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductView(p))
}

func (h *Handler) unfavouriteProduct(w http.ResponseWriter, r *http.Request, u *user.User) {
	if err := h.products.Unfavourite(r.Context(), u, r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listFavourites(w http.ResponseWriter, r *http.Request, u *user.User) {
	products, err := h.productRepo.ListFavourites(r.Context(), u.ID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductViews(products))
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	term := r.PathValue("term")
	if len(term) < minSearchTermLen {
		respondError(w, http.StatusUnprocessableEntity, "search term must be at least 3 characters")
		return
	}

	products, err := h.productRepo.List(r.Context(), product.ListFilter{Search: term})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toProductViews(products))
}
