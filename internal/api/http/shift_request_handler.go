package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/service"
)

type ShiftRequestHandler struct {
	requests service.ShiftRequestService
	validate *validator.Validate
}

func NewShiftRequestHandler(requests service.ShiftRequestService, validate *validator.Validate) *ShiftRequestHandler {
	return &ShiftRequestHandler{requests: requests, validate: validate}
}

type submitShiftRequest struct {
	DepartmentID int32  `json:"department_id" validate:"required,min=1"`
	Date         string `json:"date" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Reason       string `json:"reason"`
}

func (h *ShiftRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid shift request: "+err.Error(), nil)
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD: "+req.Date, nil)
		return
	}

	claims := ClaimsFromContext(r.Context())
	created, err := h.requests.Submit(r.Context(), claims.UserID, req.DepartmentID, date, req.StartTime, req.EndTime, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "shift request submitted", created)
}

func (h *ShiftRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.ShiftRequestStatus(r.URL.Query().Get("status"))
	requests, err := h.requests.ListAll(r.Context(), status, r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "shift requests", requests)
}

func (h *ShiftRequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	status := domain.ShiftRequestStatus(r.URL.Query().Get("status"))
	requests, err := h.requests.ListByUser(r.Context(), claims.UserID, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "shift requests", requests)
}

type reviewShiftRequest struct {
	Status     string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	AdminNotes string `json:"admin_notes"`
}

func (h *ShiftRequestHandler) Review(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req reviewShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, "status must be APPROVED or REJECTED", nil)
		return
	}

	claims := ClaimsFromContext(r.Context())
	reviewed, err := h.requests.Review(r.Context(), requestID, domain.ShiftRequestStatus(req.Status), claims.UserID, req.AdminNotes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "shift request reviewed", reviewed)
}

func (h *ShiftRequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.requests.Delete(r.Context(), requestID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "shift request deleted", nil)
}
