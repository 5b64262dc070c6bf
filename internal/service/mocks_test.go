package service_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/security"
)

// MockSlotRepo
type MockSlotRepo struct {
	mock.Mock
}

func (m *MockSlotRepo) CreateSlots(ctx context.Context, departmentID int32, slots []domain.ShiftSlot) ([]domain.ShiftSlot, error) {
	args := m.Called(ctx, departmentID, slots)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShiftSlot), args.Error(1)
}
func (m *MockSlotRepo) GetByID(ctx context.Context, slotID int32) (*domain.ShiftSlot, error) {
	args := m.Called(ctx, slotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShiftSlot), args.Error(1)
}
func (m *MockSlotRepo) ListByDepartment(ctx context.Context, departmentID int32, window domain.MonthWindow) ([]domain.ShiftSlot, error) {
	args := m.Called(ctx, departmentID, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShiftSlot), args.Error(1)
}
func (m *MockSlotRepo) ListAll(ctx context.Context, window domain.MonthWindow) ([]domain.ShiftSlot, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShiftSlot), args.Error(1)
}
func (m *MockSlotRepo) SetPublishState(ctx context.Context, slotID int32, state domain.PublishState) error {
	args := m.Called(ctx, slotID, state)
	return args.Error(0)
}
func (m *MockSlotRepo) FindOrCreateSlot(ctx context.Context, departmentID int32, date time.Time, startTime, endTime string, quantity int32, state domain.PublishState) (*domain.ShiftSlot, error) {
	args := m.Called(ctx, departmentID, date, startTime, endTime, quantity, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShiftSlot), args.Error(1)
}
func (m *MockSlotRepo) AppendReservation(ctx context.Context, slotID, userID int32, origin domain.ReservationOrigin, status domain.ReservationStatus) (*domain.Reservation, error) {
	args := m.Called(ctx, slotID, userID, origin, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockSlotRepo) TransitionReservation(ctx context.Context, slotID, userID int32, from, to domain.ReservationStatus, reviewerID int32, reason string) (*domain.Reservation, error) {
	args := m.Called(ctx, slotID, userID, from, to, reviewerID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}
func (m *MockSlotRepo) RemoveReservation(ctx context.Context, slotID, userID int32) error {
	args := m.Called(ctx, slotID, userID)
	return args.Error(0)
}
func (m *MockSlotRepo) UnpublishBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockShiftRequestRepo
type MockShiftRequestRepo struct {
	mock.Mock
}

func (m *MockShiftRequestRepo) Create(ctx context.Context, req *domain.ShiftRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockShiftRequestRepo) GetByID(ctx context.Context, id int32) (*domain.ShiftRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShiftRequest), args.Error(1)
}
func (m *MockShiftRequestRepo) List(ctx context.Context, status domain.ShiftRequestStatus, window *domain.MonthWindow) ([]domain.ShiftRequest, error) {
	args := m.Called(ctx, status, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShiftRequest), args.Error(1)
}
func (m *MockShiftRequestRepo) ListByUser(ctx context.Context, userID int32, status domain.ShiftRequestStatus) ([]domain.ShiftRequest, error) {
	args := m.Called(ctx, userID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShiftRequest), args.Error(1)
}
func (m *MockShiftRequestRepo) UpdateStatus(ctx context.Context, id int32, from, to domain.ShiftRequestStatus, reviewerID int32, notes string) (*domain.ShiftRequest, error) {
	args := m.Called(ctx, id, from, to, reviewerID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShiftRequest), args.Error(1)
}
func (m *MockShiftRequestRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockShiftRequestRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.ShiftRequest, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShiftRequest), args.Error(1)
}

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) UpdateLastLoggedIn(ctx context.Context, id int32, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockDepartmentRepo
type MockDepartmentRepo struct {
	mock.Mock
}

func (m *MockDepartmentRepo) Create(ctx context.Context, dept *domain.Department) error {
	args := m.Called(ctx, dept)
	return args.Error(0)
}
func (m *MockDepartmentRepo) GetByID(ctx context.Context, id int32) (*domain.Department, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Department), args.Error(1)
}
func (m *MockDepartmentRepo) List(ctx context.Context) ([]domain.Department, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Department), args.Error(1)
}

// MockTokenManager
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(userID int32, email string, role domain.Role) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}
func (m *MockTokenManager) ValidateToken(tokenString string) (*security.UserClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.UserClaims), args.Error(1)
}
