package service

import (
	"context"
	"log/slog"
	"strings"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/logger"
	"shiftboard-backend/internal/repository"
)

const defaultRejectionReason = "No reason provided"

type shiftService struct {
	slots              repository.SlotRepository
	departments        repository.DepartmentRepository
	maxConflictRetries int
	logger             *slog.Logger
}

func NewShiftService(slots repository.SlotRepository, departments repository.DepartmentRepository, maxConflictRetries int) ShiftService {
	if maxConflictRetries < 0 {
		maxConflictRetries = 0
	}
	return &shiftService{
		slots:              slots,
		departments:        departments,
		maxConflictRetries: maxConflictRetries,
		logger:             logger.WithService("shift-service"),
	}
}

func (s *shiftService) UploadSlots(ctx context.Context, departmentID int32, slots []domain.ShiftSlot) ([]domain.ShiftSlot, error) {
	if len(slots) == 0 {
		return nil, domain.NewError(domain.KindValidation, "no shifts to upload")
	}
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		return nil, err
	}
	for i := range slots {
		if err := validateSlot(&slots[i]); err != nil {
			return nil, err
		}
		if slots[i].PublishState == "" {
			slots[i].PublishState = domain.PublishStatePublished
		}
	}

	created, err := s.slots.CreateSlots(ctx, departmentID, slots)
	if err != nil {
		return nil, err
	}
	s.logger.Info("shifts uploaded", "department_id", departmentID, "count", len(created))
	return created, nil
}

func validateSlot(slot *domain.ShiftSlot) error {
	if slot.Date.IsZero() {
		return domain.NewError(domain.KindValidation, "shift date is required")
	}
	if strings.TrimSpace(slot.StartTime) == "" || strings.TrimSpace(slot.EndTime) == "" {
		return domain.NewError(domain.KindValidation, "shift start and end times are required")
	}
	if slot.Quantity < 1 {
		return domain.NewError(domain.KindValidation, "shift quantity must be at least 1")
	}
	switch slot.PublishState {
	case "", domain.PublishStatePublished, domain.PublishStateUnpublished:
	default:
		return domain.Errorf(domain.KindValidation, "invalid publish state: %s", slot.PublishState)
	}
	return nil
}

// Book appends a PENDING reservation. The store does the real admission
// check atomically; this layer only retries transient conflicts, bounded and
// abandoned as soon as the caller's context is done.
func (s *shiftService) Book(ctx context.Context, slotID, userID int32) (*domain.Reservation, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxConflictRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		res, err := s.slots.AppendReservation(ctx, slotID, userID, domain.OriginBooking, domain.ReservationStatusPending)
		if err == nil {
			s.logger.Info("shift booked", "slot_id", slotID, "user_id", userID, "attempt", attempt+1)
			return res, nil
		}
		if !domain.IsKind(err, domain.KindConflict) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("booking conflict, retrying", "slot_id", slotID, "user_id", userID, "attempt", attempt+1)
	}
	s.logger.Error("booking abandoned after repeated conflicts", "slot_id", slotID, "user_id", userID, "error", lastErr)
	return nil, domain.NewError(domain.KindConflict, "booking could not be completed due to concurrent updates, please retry")
}

func (s *shiftService) Approve(ctx context.Context, slotID, userID, reviewerID int32) (*domain.Reservation, error) {
	res, err := s.slots.TransitionReservation(ctx, slotID, userID,
		domain.ReservationStatusPending, domain.ReservationStatusApproved, reviewerID, "")
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking approved", "slot_id", slotID, "user_id", userID, "reviewer_id", reviewerID)
	return res, nil
}

func (s *shiftService) Reject(ctx context.Context, slotID, userID int32, reason string, reviewerID int32) (*domain.Reservation, error) {
	if strings.TrimSpace(reason) == "" {
		reason = defaultRejectionReason
	}
	res, err := s.slots.TransitionReservation(ctx, slotID, userID,
		domain.ReservationStatusPending, domain.ReservationStatusRejected, reviewerID, reason)
	if err != nil {
		return nil, err
	}
	s.logger.Info("booking rejected", "slot_id", slotID, "user_id", userID, "reviewer_id", reviewerID)
	return res, nil
}

// Cancel withdraws the user's own PENDING reservation. Unlike a rejection it
// deletes the reservation outright and leaves no audit record.
func (s *shiftService) Cancel(ctx context.Context, slotID, userID int32) error {
	if err := s.slots.RemoveReservation(ctx, slotID, userID); err != nil {
		return err
	}
	s.logger.Info("booking cancelled", "slot_id", slotID, "user_id", userID)
	return nil
}

func (s *shiftService) SetPublishState(ctx context.Context, slotID int32, state domain.PublishState) error {
	switch state {
	case domain.PublishStatePublished, domain.PublishStateUnpublished:
	default:
		return domain.Errorf(domain.KindValidation, "invalid publish state: %s", state)
	}
	if err := s.slots.SetPublishState(ctx, slotID, state); err != nil {
		return err
	}
	s.logger.Info("publish state changed", "slot_id", slotID, "state", state)
	return nil
}
