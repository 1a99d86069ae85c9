package handler

import (
	"net/http"
	"strings"

	"github.com/xenking/craft-market/internal/domain/auth"
	"github.com/xenking/craft-market/internal/domain/user"
)

type registerRequest struct {
	FullName     string   `json:"full_name"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Bio          string   `json:"bio"`
	Image        string   `json:"image"`
	Address      string   `json:"address"`
	PhoneNumbers []string `json:"phone_numbers"`
	Role         string   `json:"role"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	if len(req.FullName) < 2 {
		respondError(w, http.StatusUnprocessableEntity, "full name must be at least 2 characters")
		return
	}
	if !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusUnprocessableEntity, "invalid email address")
		return
	}
	if req.Role != "" && !user.Role(req.Role).Valid() {
		respondError(w, http.StatusUnprocessableEntity, "role must be CUSTOMER or SELLER")
		return
	}

	u, err := h.auth.Register(r.Context(), auth.RegisterRequest{
		FullName:     req.FullName,
		Email:        req.Email,
		Password:     req.Password,
		Bio:          req.Bio,
		Image:        req.Image,
		Address:      req.Address,
		PhoneNumbers: req.PhoneNumbers,
		Role:         user.Role(req.Role),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toUserView(u))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserViews(users))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.userRepo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserView(u))
}

func (h *Handler) me(w http.ResponseWriter, _ *http.Request, u *user.User) {
	respondJSON(w, http.StatusOK, toUserView(u))
}

func (h *Handler) switchRole(w http.ResponseWriter, r *http.Request, u *user.User) {
	updated, err := h.auth.SwitchRole(r.Context(), u)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserView(updated))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request, u *user.User) {
	if err := h.auth.DeleteUser(r.Context(), u, r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
