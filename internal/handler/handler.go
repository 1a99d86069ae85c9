// Package handler exposes the marketplace over HTTP, mapping JSON requests
// to domain services and domain errors to status codes.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/craft-market/internal/domain/auth"
	"github.com/xenking/craft-market/internal/domain/cart"
	"github.com/xenking/craft-market/internal/domain/order"
	"github.com/xenking/craft-market/internal/domain/product"
	"github.com/xenking/craft-market/internal/domain/shop"
	"github.com/xenking/craft-market/internal/domain/user"
)

// minSearchTermLen is the shortest accepted search term.
const minSearchTermLen = 3

// Handler implements every API route, delegating business logic to the
// injected domain services and repositories.
type Handler struct {
	auth     *auth.Service
	shops    *shop.Service
	products *product.Service
	carts    *cart.Service
	orders   *order.Service

	userRepo    user.Repository
	shopRepo    shop.Repository
	productRepo product.Repository
	cartRepo    cart.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	authSvc *auth.Service,
	shops *shop.Service,
	products *product.Service,
	carts *cart.Service,
	orders *order.Service,
	userRepo user.Repository,
	shopRepo shop.Repository,
	productRepo product.Repository,
	cartRepo cart.Repository,
) *Handler {
	return &Handler{
		auth:        authSvc,
		shops:       shops,
		products:    products,
		carts:       carts,
		orders:      orders,
		userRepo:    userRepo,
		shopRepo:    shopRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
	}
}

// Routes registers every API route on the mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("GET /api/auth/users", h.listUsers)
	mux.HandleFunc("GET /api/auth/users/{id}", h.getUser)
	mux.HandleFunc("GET /api/auth/me", h.authorized(h.me))
	mux.HandleFunc("PATCH /api/auth/me/switch", h.authorized(h.switchRole))
	mux.HandleFunc("DELETE /api/auth/users/{id}", h.authorized(h.deleteUser))

	mux.HandleFunc("GET /api/shops", h.listShops)
	mux.HandleFunc("GET /api/shops/{id}", h.getShop)
	mux.HandleFunc("GET /api/shops/owner/{userID}", h.listShopsByOwner)
	mux.HandleFunc("POST /api/shops", h.authorized(h.createShop))
	mux.HandleFunc("PUT /api/shops/{id}", h.authorized(h.updateShop))
	mux.HandleFunc("DELETE /api/shops/{id}", h.authorized(h.deleteShop))

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/featured", h.listFeaturedProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("GET /api/products/owner/{userID}", h.listProductsByOwner)
	mux.HandleFunc("GET /api/products/owner/details/{userID}", h.getOwnerProductDetails)
	mux.HandleFunc("POST /api/products", h.authorized(h.createProduct))
	mux.HandleFunc("PUT /api/products/{id}", h.authorized(h.updateProduct))
	mux.HandleFunc("PATCH /api/products/{id}/feature", h.authorized(h.featureProduct))
	mux.HandleFunc("DELETE /api/products/{id}", h.authorized(h.deleteProduct))
	mux.HandleFunc("POST /api/products/{id}/favourite", h.authorized(h.favouriteProduct))
	mux.HandleFunc("DELETE /api/products/{id}/favourite", h.authorized(h.unfavouriteProduct))
	mux.HandleFunc("GET /api/favourites", h.authorized(h.listFavourites))

	mux.HandleFunc("GET /api/search/products/{term}", h.searchProducts)
	mux.HandleFunc("GET /api/search/shops/{term}", h.searchShops)

	mux.HandleFunc("POST /api/carts", h.authorized(h.createCart))
	mux.HandleFunc("GET /api/carts", h.authorized(h.listCarts))
	mux.HandleFunc("GET /api/carts/{id}", h.authorized(h.getCart))
	mux.HandleFunc("POST /api/carts/{id}/products/{productID}", h.authorized(h.addCartProduct))
	mux.HandleFunc("DELETE /api/carts/{id}/products/{productID}", h.authorized(h.removeCartProduct))
	mux.HandleFunc("DELETE /api/carts/{id}", h.authorized(h.deleteCart))
	mux.HandleFunc("POST /api/carts/{id}/checkout", h.authorized(h.checkout))

	mux.HandleFunc("GET /api/orders", h.authorized(h.listOrders))
	mux.HandleFunc("GET /api/orders/{id}", h.authorized(h.getOrder))
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Code: status, Message: message})
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondDomainError maps a domain error onto the HTTP taxonomy:
// not-found -> 404, role/forbidden -> 403, unauthenticated -> 401,
// conflict -> 409, validation -> 422, anything else -> 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		roleErr   *auth.RoleError
		policyErr *auth.PasswordPolicyError
	)
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, shop.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, product.ErrNotFavourite),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrNotInCart),
		errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.As(err, &roleErr):
		respondError(w, http.StatusForbidden, roleErr.Error())

	case errors.Is(err, cart.ErrInsufficientBalance),
		errors.Is(err, product.ErrUnavailable),
		errors.Is(err, order.ErrEmptyCart):
		respondError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, cart.ErrDuplicateProduct),
		errors.Is(err, cart.ErrAlreadyCheckedOut),
		errors.Is(err, product.ErrAlreadyFavourite),
		errors.Is(err, user.ErrEmailTaken):
		respondError(w, http.StatusConflict, err.Error())

	case errors.As(err, &policyErr),
		errors.Is(err, auth.ErrInvalidRole):
		respondError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// authorized wraps a handler that requires a resolved bearer token.
func (h *Handler) authorized(next func(http.ResponseWriter, *http.Request, *user.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, auth.ErrUnauthenticated.Error())
			return
		}

		u, err := h.auth.ResolveToken(r.Context(), token)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		next(w, r, u)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return "", false
	}
	return header[len(prefix):], true
}
