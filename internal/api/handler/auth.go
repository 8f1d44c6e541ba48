package handler

import (
	"errors"
	"net/http"
	"time"

	mw "github.com/nexocrm/nexo/internal/api/middleware"
	"github.com/nexocrm/nexo/internal/api/response"
	"github.com/nexocrm/nexo/internal/auth"
	"github.com/nexocrm/nexo/pkg/models"
)

// Auth serves registration, login, logout, and the current principal.
type Auth struct {
	svc *auth.Service
}

func NewAuth(svc *auth.Service) *Auth {
	return &Auth{svc: svc}
}

type loginResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   string       `json:"expires_at"`
}

// Register handles POST /api/v1/auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrValidation):
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		case errors.Is(err, auth.ErrEmailTaken):
			response.Error(w, http.StatusConflict, "EMAIL_TAKEN",
				"An account with this email already exists", nil)
		default:
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
		}
		return
	}
	response.Created(w, user)
}

// Login handles POST /api/v1/auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"email and password are required", nil)
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS",
				"Invalid email or password", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
		return
	}

	response.JSON(w, loginResponse{
		User:        result.User,
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout handles POST /api/v1/auth/logout. Always succeeds from the client's
// point of view; a failed revocation is logged and the session expires by TTL.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := mw.GetSessionID(r); ok {
		h.svc.Logout(r.Context(), sessionID)
	}
	response.NoContent(w)
}

// ForgotPassword handles POST /api/v1/auth/forgot-password. The response does
// not reveal whether the email is registered.
func (h *Auth) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "email is required", nil)
		return
	}

	h.svc.ForgotPassword(r.Context(), req.Email)
	response.JSON(w, map[string]string{
		"message": "If that email is registered, a reset link is on its way",
	})
}

// Me handles GET /api/v1/auth/me.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}
	response.JSON(w, user)
}

// ChangePassword handles PUT /api/v1/auth/password.
func (h *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", nil)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.svc.ChangePassword(r.Context(), user.ID, req.Password); err != nil {
		if errors.Is(err, auth.ErrValidation) {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
		return
	}
	response.NoContent(w)
}
