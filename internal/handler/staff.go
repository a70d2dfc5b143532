package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/spicegarden/pos/internal/enum"
	"github.com/spicegarden/pos/internal/model"
	"github.com/spicegarden/pos/internal/service"
)

// StaffService defines the service methods needed by staff handlers.
// Satisfied by *service.POS; narrow interface for testability.
type StaffService interface {
	ListStaff(ctx context.Context) ([]model.Staff, error)
	SaveStaff(ctx context.Context, s model.Staff, password string) (model.Staff, error)
	DeleteStaff(ctx context.Context, id string) error
}

// StaffHandler handles staff roster CRUD endpoints. All of them are
// manager-only.
type StaffHandler struct {
	svc StaffService
}

// NewStaffHandler creates a new StaffHandler.
func NewStaffHandler(svc StaffService) *StaffHandler {
	return &StaffHandler{svc: svc}
}

// RegisterRoutes registers staff endpoints on the given Chi router.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Get("/staff", h.List)
	r.Post("/staff", h.Create)
	r.Put("/staff/{id}", h.Update)
	r.Delete("/staff/{id}", h.Delete)
}

// --- Request types ---

type staffRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	Password string `json:"password"`
}

func isValidRole(role string) bool {
	switch role {
	case enum.StaffRoleManager, enum.StaffRoleWaiter, enum.StaffRoleChef, enum.StaffRoleCashier:
		return true
	}
	return false
}

func isValidStaffStatus(status string) bool {
	return status == enum.StaffStatusPresent || status == enum.StaffStatusAbsent
}

func (h *StaffHandler) parseRequest(w http.ResponseWriter, r *http.Request) (model.Staff, string, bool) {
	var req staffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return model.Staff{}, "", false
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return model.Staff{}, "", false
	}
	if !isValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "invalid role")
		return model.Staff{}, "", false
	}
	if req.Status == "" {
		req.Status = enum.StaffStatusPresent
	}
	if !isValidStaffStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return model.Staff{}, "", false
	}

	return model.Staff{
		Name:   req.Name,
		Role:   req.Role,
		Phone:  req.Phone,
		Email:  req.Email,
		Status: req.Status,
	}, req.Password, true
}

// --- Handlers ---

// List returns the roster, hashes stripped.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	staff, err := h.svc.ListStaff(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list staff")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]staffResponse, len(staff))
	for i, s := range staff {
		resp[i] = toStaffResponse(s)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a staff member. The password is required here: a staff
// record without one could never log in.
func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, password, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	if password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	saved, err := h.svc.SaveStaff(r.Context(), s, password)
	if err != nil {
		if errors.Is(err, service.ErrMissingName) {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		logrus.WithError(err).Error("create staff")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, toStaffResponse(saved))
}

// Update rewrites a staff member. An empty password keeps the stored
// credential.
func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	s, password, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	s.ID = chi.URLParam(r, "id")

	saved, err := h.svc.SaveStaff(r.Context(), s, password)
	if err != nil {
		logrus.WithError(err).Error("update staff")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toStaffResponse(saved))
}

// Delete removes a staff member from the roster.
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteStaff(r.Context(), chi.URLParam(r, "id")); err != nil {
		logrus.WithError(err).Error("delete staff")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
