package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/service"
)

type AuthHandler struct {
	auth     service.AuthService
	validate *validator.Validate
}

func NewAuthHandler(auth service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{auth: auth, validate: validate}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, "email and password are required", nil)
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if domain.IsKind(err, domain.KindValidation) {
			// credential failures are 401, not 400
			writeJSON(w, http.StatusUnauthorized, err.Error(), nil)
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "login successful", loginResponse{Token: token, User: user})
}

type profileResponse struct {
	User       *domain.User       `json:"user"`
	Department *domain.Department `json:"department,omitempty"`
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	user, dept, err := h.auth.Profile(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "user profile", profileResponse{User: user, Department: dept})
}
