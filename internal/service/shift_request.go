package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/logger"
	"shiftboard-backend/internal/repository"
)

const expiredRequestNote = "Expired: requested date has passed"

type shiftRequestService struct {
	requests    repository.ShiftRequestRepository
	slots       repository.SlotRepository
	users       repository.UserRepository
	departments repository.DepartmentRepository
	logger      *slog.Logger
}

func NewShiftRequestService(requests repository.ShiftRequestRepository, slots repository.SlotRepository, users repository.UserRepository, departments repository.DepartmentRepository) ShiftRequestService {
	return &shiftRequestService{
		requests:    requests,
		slots:       slots,
		users:       users,
		departments: departments,
		logger:      logger.WithService("shift-request-service"),
	}
}

func (s *shiftRequestService) Submit(ctx context.Context, userID, departmentID int32, date time.Time, startTime, endTime, reason string) (*domain.ShiftRequest, error) {
	if date.IsZero() {
		return nil, domain.NewError(domain.KindValidation, "requested date is required")
	}
	if strings.TrimSpace(startTime) == "" || strings.TrimSpace(endTime) == "" {
		return nil, domain.NewError(domain.KindValidation, "start and end times are required")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		return nil, err
	}

	req := &domain.ShiftRequest{
		RequestedBy:  userID,
		DepartmentID: departmentID,
		Date:         date,
		StartTime:    strings.TrimSpace(startTime),
		EndTime:      strings.TrimSpace(endTime),
		Reason:       strings.TrimSpace(reason),
		Status:       domain.ShiftRequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("shift request submitted", "request_id", req.ID, "user_id", userID, "department_id", departmentID)
	return req, nil
}

func (s *shiftRequestService) ListAll(ctx context.Context, status domain.ShiftRequestStatus, month string) ([]domain.ShiftRequest, error) {
	var window *domain.MonthWindow
	if month != "" {
		w, err := domain.ParseMonthWindow(month)
		if err != nil {
			return nil, err
		}
		window = &w
	}
	return s.requests.List(ctx, status, window)
}

func (s *shiftRequestService) ListByUser(ctx context.Context, userID int32, status domain.ShiftRequestStatus) ([]domain.ShiftRequest, error) {
	return s.requests.ListByUser(ctx, userID, status)
}

// Review decides a pending request. A rejection is a plain terminal
// transition. An approval is a two-step saga: first win the reviewer race by
// flipping the request PENDING -> APPROVED, then materialize the slot and its
// APPROVED reservation. If materialization fails the request is rolled back
// to PENDING so it stays reviewable, and the original error is returned.
func (s *shiftRequestService) Review(ctx context.Context, requestID int32, decision domain.ShiftRequestStatus, reviewerID int32, notes string) (*domain.ShiftRequest, error) {
	switch decision {
	case domain.ShiftRequestStatusApproved, domain.ShiftRequestStatusRejected:
	default:
		return nil, domain.Errorf(domain.KindValidation, "invalid review decision: %s", decision)
	}

	if decision == domain.ShiftRequestStatusRejected {
		req, err := s.requests.UpdateStatus(ctx, requestID, domain.ShiftRequestStatusPending, domain.ShiftRequestStatusRejected, reviewerID, notes)
		if err != nil {
			return nil, err
		}
		s.logger.Info("shift request rejected", "request_id", requestID, "reviewer_id", reviewerID)
		return req, nil
	}

	req, err := s.requests.UpdateStatus(ctx, requestID, domain.ShiftRequestStatusPending, domain.ShiftRequestStatusApproved, reviewerID, notes)
	if err != nil {
		return nil, err
	}

	if err := s.materialize(ctx, req); err != nil {
		s.rollbackToPending(ctx, req.ID, reviewerID)
		return nil, err
	}
	s.logger.Info("shift request approved", "request_id", requestID, "reviewer_id", reviewerID)
	return req, nil
}

// materialize creates (or finds) the single-seat published slot for the
// request and appends the requester's reservation, already APPROVED.
func (s *shiftRequestService) materialize(ctx context.Context, req *domain.ShiftRequest) error {
	slot, err := s.slots.FindOrCreateSlot(ctx, req.DepartmentID, req.Date, req.StartTime, req.EndTime, 1, domain.PublishStatePublished)
	if err != nil {
		return err
	}
	if _, err := s.slots.AppendReservation(ctx, slot.ID, req.RequestedBy, domain.OriginBackdoor, domain.ReservationStatusApproved); err != nil {
		return err
	}
	return nil
}

func (s *shiftRequestService) rollbackToPending(ctx context.Context, requestID, reviewerID int32) {
	if _, err := s.requests.UpdateStatus(ctx, requestID, domain.ShiftRequestStatusApproved, domain.ShiftRequestStatusPending, reviewerID, ""); err != nil {
		s.logger.Error("failed to roll back shift request to pending", "request_id", requestID, "error", err)
		return
	}
	s.logger.Warn("shift request approval rolled back", "request_id", requestID)
}

func (s *shiftRequestService) Delete(ctx context.Context, requestID int32) error {
	if err := s.requests.Delete(ctx, requestID); err != nil {
		return err
	}
	s.logger.Info("shift request deleted", "request_id", requestID)
	return nil
}

// ExpireStale rejects every PENDING request whose date is already in the
// past. Used by the nightly cleanup job; reviewer 0 marks a system decision.
func (s *shiftRequestService) ExpireStale(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.requests.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range stale {
		_, err := s.requests.UpdateStatus(ctx, stale[i].ID, domain.ShiftRequestStatusPending, domain.ShiftRequestStatusRejected, 0, expiredRequestNote)
		if err != nil {
			if domain.IsKind(err, domain.KindInvalidStateTransition) {
				continue // reviewed concurrently, nothing to do
			}
			return expired, err
		}
		expired++
	}
	return expired, nil
}
