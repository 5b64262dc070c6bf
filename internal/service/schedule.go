package service

import (
	"context"
	"log/slog"
	"time"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/logger"
	"shiftboard-backend/internal/repository"
)

type scheduleService struct {
	slots       repository.SlotRepository
	users       repository.UserRepository
	departments repository.DepartmentRepository
	logger      *slog.Logger
}

func NewScheduleService(slots repository.SlotRepository, users repository.UserRepository, departments repository.DepartmentRepository) ScheduleService {
	return &scheduleService{
		slots:       slots,
		users:       users,
		departments: departments,
		logger:      logger.WithService("schedule-service"),
	}
}

// resolveWindow parses the YYYY-MM month filter, defaulting to the current
// month when empty.
func resolveWindow(month string) (domain.MonthWindow, error) {
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	}
	return domain.ParseMonthWindow(month)
}

func (s *scheduleService) departmentRefs(ctx context.Context) (map[int32]DepartmentRef, error) {
	depts, err := s.departments.List(ctx)
	if err != nil {
		return nil, err
	}
	refs := make(map[int32]DepartmentRef, len(depts))
	for _, d := range depts {
		refs[d.ID] = DepartmentRef{ID: d.ID, Name: d.Name}
	}
	return refs, nil
}

func (s *scheduleService) schedule(ctx context.Context, departmentID int32, month string, state domain.PublishState) (*DepartmentSchedule, error) {
	window, err := resolveWindow(month)
	if err != nil {
		return nil, err
	}
	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.ListByDepartment(ctx, departmentID, window)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.ShiftSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.PublishState == state {
			filtered = append(filtered, slot)
		}
	}
	return &DepartmentSchedule{
		Department: DepartmentRef{ID: dept.ID, Name: dept.Name},
		Slots:      filtered,
	}, nil
}

func (s *scheduleService) PublishedByDepartment(ctx context.Context, departmentID int32, month string) (*DepartmentSchedule, error) {
	return s.schedule(ctx, departmentID, month, domain.PublishStatePublished)
}

func (s *scheduleService) UnpublishedByDepartment(ctx context.Context, departmentID int32, month string) (*DepartmentSchedule, error) {
	return s.schedule(ctx, departmentID, month, domain.PublishStateUnpublished)
}

// AvailableForUser lists published slots in the user's own department with
// remaining capacity, excluding slots the user already holds an active
// reservation on.
func (s *scheduleService) AvailableForUser(ctx context.Context, userID int32, month string) ([]domain.ShiftSlot, error) {
	window, err := resolveWindow(month)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.DepartmentID == nil {
		return nil, domain.NewError(domain.KindNotFound, "user has no department assigned")
	}
	slots, err := s.slots.ListByDepartment(ctx, *user.DepartmentID, window)
	if err != nil {
		return nil, err
	}
	available := make([]domain.ShiftSlot, 0, len(slots))
	for _, slot := range slots {
		if bookableBy(&slot, userID) {
			available = append(available, slot)
		}
	}
	return available, nil
}

// AvailableOtherDepartments is the cross-department counterpart of
// AvailableForUser; each slot carries its department reference since the
// caller cannot infer it.
func (s *scheduleService) AvailableOtherDepartments(ctx context.Context, userID int32, month string) ([]SlotView, error) {
	window, err := resolveWindow(month)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	refs, err := s.departmentRefs(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.ListAll(ctx, window)
	if err != nil {
		return nil, err
	}
	views := make([]SlotView, 0)
	for _, slot := range slots {
		if user.DepartmentID != nil && slot.DepartmentID == *user.DepartmentID {
			continue
		}
		if bookableBy(&slot, userID) {
			views = append(views, SlotView{Slot: slot, Department: refs[slot.DepartmentID]})
		}
	}
	return views, nil
}

func bookableBy(slot *domain.ShiftSlot, userID int32) bool {
	if slot.PublishState != domain.PublishStatePublished {
		return false
	}
	if slot.AvailableSlots() == 0 {
		return false
	}
	return slot.ReservationFor(userID, domain.ReservationStatusPending, domain.ReservationStatusApproved) == nil
}

// ApprovedForUser lists every slot the user holds an APPROVED reservation
// on, regardless of publish state: an approved shift stays on the user's
// schedule even after the slot is retired.
func (s *scheduleService) ApprovedForUser(ctx context.Context, userID int32, month string) ([]SlotView, error) {
	return s.byUserStatus(ctx, userID, month, domain.ReservationStatusApproved, false)
}

func (s *scheduleService) PendingForUser(ctx context.Context, userID int32, month string) ([]SlotView, error) {
	return s.byUserStatus(ctx, userID, month, domain.ReservationStatusPending, true)
}

func (s *scheduleService) byUserStatus(ctx context.Context, userID int32, month string, status domain.ReservationStatus, publishedOnly bool) ([]SlotView, error) {
	window, err := resolveWindow(month)
	if err != nil {
		return nil, err
	}
	refs, err := s.departmentRefs(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.ListAll(ctx, window)
	if err != nil {
		return nil, err
	}
	views := make([]SlotView, 0)
	for _, slot := range slots {
		if publishedOnly && slot.PublishState != domain.PublishStatePublished {
			continue
		}
		if slot.ReservationFor(userID, status) != nil {
			views = append(views, SlotView{Slot: slot, Department: refs[slot.DepartmentID]})
		}
	}
	return views, nil
}

// PendingAndRejectedForUser merges the user's pending reservations with
// their rejections, both the reservation-level ones and the audit-trail
// entries. Each slot appears at most once per kind.
func (s *scheduleService) PendingAndRejectedForUser(ctx context.Context, userID int32, month string) ([]UserSlotEntry, error) {
	window, err := resolveWindow(month)
	if err != nil {
		return nil, err
	}
	refs, err := s.departmentRefs(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.ListAll(ctx, window)
	if err != nil {
		return nil, err
	}

	entries := make([]UserSlotEntry, 0)
	for _, slot := range slots {
		if slot.PublishState != domain.PublishStatePublished {
			continue
		}
		view := SlotView{Slot: slot, Department: refs[slot.DepartmentID]}

		if slot.ReservationFor(userID, domain.ReservationStatusPending) != nil {
			entries = append(entries, UserSlotEntry{SlotView: view, Kind: "pending"})
		}

		if rejection := latestRejectionFor(&slot, userID); rejection != nil {
			entries = append(entries, *rejection.withView(view))
		}
	}
	return entries, nil
}

type rejectionEntry struct {
	reason     string
	rejectedAt *time.Time
	rejectedBy *int32
}

func (r *rejectionEntry) withView(view SlotView) *UserSlotEntry {
	return &UserSlotEntry{
		SlotView:        view,
		Kind:            "rejected",
		RejectionReason: r.reason,
		RejectedAt:      r.rejectedAt,
		RejectedBy:      r.rejectedBy,
	}
}

// latestRejectionFor prefers the live rejected reservation and falls back to
// the audit trail, so a rejection stays visible after the reservation row is
// gone.
func latestRejectionFor(slot *domain.ShiftSlot, userID int32) *rejectionEntry {
	if res := slot.ReservationFor(userID, domain.ReservationStatusRejected); res != nil {
		reason := res.RejectionReason
		if reason == "" {
			reason = defaultRejectionReason
		}
		return &rejectionEntry{reason: reason, rejectedAt: res.ReviewedAt, rejectedBy: res.ReviewedBy}
	}
	var latest *domain.RejectionRecord
	for i := range slot.RejectionHistory {
		rec := &slot.RejectionHistory[i]
		if rec.UserID != userID {
			continue
		}
		if latest == nil || rec.RejectedAt.After(latest.RejectedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil
	}
	reason := latest.Reason
	if reason == "" {
		reason = defaultRejectionReason
	}
	at := latest.RejectedAt
	return &rejectionEntry{reason: reason, rejectedAt: &at, rejectedBy: latest.RejectedBy}
}

// PendingForAdmin is the review queue: one row per pending reservation on
// any published slot in the window.
func (s *scheduleService) PendingForAdmin(ctx context.Context, month string) ([]PendingApproval, error) {
	window, err := resolveWindow(month)
	if err != nil {
		return nil, err
	}
	refs, err := s.departmentRefs(ctx)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.ListAll(ctx, window)
	if err != nil {
		return nil, err
	}
	queue := make([]PendingApproval, 0)
	for _, slot := range slots {
		if slot.PublishState != domain.PublishStatePublished {
			continue
		}
		view := SlotView{Slot: slot, Department: refs[slot.DepartmentID]}
		for _, res := range slot.Reservations {
			if res.Status == domain.ReservationStatusPending {
				queue = append(queue, PendingApproval{SlotView: view, Reservation: res})
			}
		}
	}
	return queue, nil
}

// DashboardStats aggregates the admin landing-page counters over published
// slots in the window. TotalRequests counts active reservations and
// PendingApprovals the pending subset of those.
func (s *scheduleService) DashboardStats(ctx context.Context, month string) (*DashboardStats, error) {
	window, err := resolveWindow(month)
	if err != nil {
		return nil, err
	}
	slots, err := s.slots.ListAll(ctx, window)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{Month: window.String()}
	for _, slot := range slots {
		if slot.PublishState != domain.PublishStatePublished {
			continue
		}
		stats.TotalSlotsUploaded += slot.Quantity
		stats.AvailableSlots += slot.AvailableSlots()
		for _, res := range slot.Reservations {
			if res.Status.IsActive() {
				stats.TotalRequests++
			}
			if res.Status == domain.ReservationStatusPending {
				stats.PendingApprovals++
			}
		}
	}
	return stats, nil
}
