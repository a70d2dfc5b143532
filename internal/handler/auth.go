package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/spicegarden/pos/internal/auth"
	"github.com/spicegarden/pos/internal/model"
	"github.com/spicegarden/pos/internal/service"
)

// Authenticator defines the service methods needed by auth handlers.
// Satisfied by *service.POS; narrow interface for testability.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (model.Staff, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	svc       Authenticator
	jwtSecret string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc Authenticator, jwtSecret string) *AuthHandler {
	return &AuthHandler{svc: svc, jwtSecret: jwtSecret}
}

// RegisterRoutes registers auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string        `json:"token"`
	Staff staffResponse `json:"staff"`
}

type staffResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
	Status   string    `json:"status"`
}

func toStaffResponse(s model.Staff) staffResponse {
	return staffResponse{
		ID:       s.ID,
		Name:     s.Name,
		Role:     s.Role,
		Phone:    s.Phone,
		Email:    s.Email,
		JoinedAt: s.JoinedAt,
		Status:   s.Status,
	}
}

// --- Handlers ---

// Login handles email + password authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	staff, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		logrus.WithError(err).Error("login")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, staff.ID, staff.Role)
	if err != nil {
		logrus.WithError(err).Error("generate token")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token: token,
		Staff: toStaffResponse(staff),
	})
}
