package handlers

import (
	"errors"
	"net/http"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AccountHandler struct {
	svc *service.AccountService
}

func NewAccountHandler(svc *service.AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

type fieldErrorsResponse struct {
	Errors service.FieldErrors `json:"errors"`
}

type userResponse struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

type profileResponse struct {
	*domain.User
	RemainingStreakResets int    `json:"remaining_streak_resets"`
	Message               string `json:"message,omitempty"`
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		h.writeAccountError(w, err, "failed to create account")
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{Message: "User registered successfully", User: u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAccountError(w, err, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Message: "Login successful", User: u})
}

func (h *AccountHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.writeAccountError(w, err, "failed to get user")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: u})
}

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	u, remaining, err := h.svc.Profile(r.Context(), id)
	if err != nil {
		h.writeAccountError(w, err, "failed to get profile")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{User: u, RemainingStreakResets: remaining})
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var upd service.ProfileUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, remaining, err := h.svc.UpdateProfile(r.Context(), id, upd)
	if err != nil {
		h.writeAccountError(w, err, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{
		User:                  u,
		RemainingStreakResets: remaining,
		Message:               "Profile updated successfully",
	})
}

func userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *AccountHandler) writeAccountError(w http.ResponseWriter, err error, fallback string) {
	var ferr service.FieldErrors
	switch {
	case errors.As(err, &ferr):
		writeJSON(w, http.StatusBadRequest, fieldErrorsResponse{Errors: ferr})
	case errors.Is(err, service.ErrCredentialsRequired):
		writeError(w, http.StatusBadRequest, "Email and password are required")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, service.ErrNoUpdate):
		writeError(w, http.StatusBadRequest, "No update data provided")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
