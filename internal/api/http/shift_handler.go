package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/service"
)

const dateLayout = "2006-01-02"

type ShiftHandler struct {
	shifts   service.ShiftService
	schedule service.ScheduleService
	validate *validator.Validate
}

func NewShiftHandler(shifts service.ShiftService, schedule service.ScheduleService, validate *validator.Validate) *ShiftHandler {
	return &ShiftHandler{shifts: shifts, schedule: schedule, validate: validate}
}

// pathID extracts a numeric path variable.
func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id < 1 {
		return 0, domain.Errorf(domain.KindValidation, "invalid %s: %s", name, raw)
	}
	return int32(id), nil
}

type slotUpload struct {
	Date         string `json:"date" validate:"required"`
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Quantity     int32  `json:"quantity" validate:"required,min=1"`
	PublishState string `json:"publish_state" validate:"omitempty,oneof=PUBLISHED UNPUBLISHED"`
}

type uploadShiftsRequest struct {
	DepartmentID int32        `json:"department_id" validate:"required,min=1"`
	Shifts       []slotUpload `json:"shifts" validate:"required,min=1,dive"`
}

func (h *ShiftHandler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadShiftsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid shift upload: "+err.Error(), nil)
		return
	}

	slots := make([]domain.ShiftSlot, 0, len(req.Shifts))
	for _, s := range req.Shifts {
		date, err := time.Parse(dateLayout, s.Date)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD: "+s.Date, nil)
			return
		}
		slots = append(slots, domain.ShiftSlot{
			Date:         date,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			Quantity:     s.Quantity,
			PublishState: domain.PublishState(s.PublishState),
		})
	}

	created, err := h.shifts.UploadSlots(r.Context(), req.DepartmentID, slots)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, "shifts uploaded", created)
}

func (h *ShiftHandler) Book(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	claims := ClaimsFromContext(r.Context())
	res, err := h.shifts.Book(r.Context(), slotID, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "shift booked, pending approval", res)
}

func (h *ShiftHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	claims := ClaimsFromContext(r.Context())
	if err := h.shifts.Cancel(r.Context(), slotID, claims.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "booking cancelled", nil)
}

type reviewBookingRequest struct {
	UserID int32  `json:"user_id" validate:"required,min=1"`
	Reason string `json:"reason"`
}

func (h *ShiftHandler) Approve(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req reviewBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, "user_id is required", nil)
		return
	}
	claims := ClaimsFromContext(r.Context())
	res, err := h.shifts.Approve(r.Context(), slotID, req.UserID, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "booking approved", res)
}

func (h *ShiftHandler) Reject(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req reviewBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, "user_id is required", nil)
		return
	}
	claims := ClaimsFromContext(r.Context())
	res, err := h.shifts.Reject(r.Context(), slotID, req.UserID, req.Reason, claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "booking rejected", res)
}

type publishRequest struct {
	PublishState string `json:"publish_state" validate:"required,oneof=PUBLISHED UNPUBLISHED"`
}

func (h *ShiftHandler) Publish(w http.ResponseWriter, r *http.Request) {
	slotID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, "publish_state must be PUBLISHED or UNPUBLISHED", nil)
		return
	}
	if err := h.shifts.SetPublishState(r.Context(), slotID, domain.PublishState(req.PublishState)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "publish state updated", nil)
}

func month(r *http.Request) string {
	return r.URL.Query().Get("month")
}

func (h *ShiftHandler) PendingForAdmin(w http.ResponseWriter, r *http.Request) {
	queue, err := h.schedule.PendingForAdmin(r.Context(), month(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "pending bookings", queue)
}

func (h *ShiftHandler) PendingByUser(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	views, err := h.schedule.PendingForUser(r.Context(), claims.UserID, month(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "pending bookings", views)
}

func (h *ShiftHandler) PendingAndRejected(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	entries, err := h.schedule.PendingAndRejectedForUser(r.Context(), claims.UserID, month(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "pending and rejected bookings", entries)
}

func (h *ShiftHandler) AvailableMyDepartment(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	slots, err := h.schedule.AvailableForUser(r.Context(), claims.UserID, month(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "available shifts", slots)
}

func (h *ShiftHandler) AvailableOtherDepartments(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	views, err := h.schedule.AvailableOtherDepartments(r.Context(), claims.UserID, month(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "available shifts in other departments", views)
}

func (h *ShiftHandler) Approved(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	views, err := h.schedule.ApprovedForUser(r.Context(), claims.UserID, month(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "approved shifts", views)
}

func (h *ShiftHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.schedule.DashboardStats(r.Context(), month(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "dashboard statistics", stats)
}

func (h *ShiftHandler) UnpublishedByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, err := pathID(r, "departmentId")
	if err != nil {
		writeError(w, err)
		return
	}
	sched, err := h.schedule.UnpublishedByDepartment(r.Context(), departmentID, month(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "unpublished shifts", sched)
}

func (h *ShiftHandler) ByDepartment(w http.ResponseWriter, r *http.Request) {
	departmentID, err := pathID(r, "departmentId")
	if err != nil {
		writeError(w, err)
		return
	}
	sched, err := h.schedule.PublishedByDepartment(r.Context(), departmentID, month(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "department shifts", sched)
}
