package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/repository/memory"
	"shiftboard-backend/internal/service"
)

type fixture struct {
	store    *memory.Store
	shifts   service.ShiftService
	schedule service.ScheduleService
	requests service.ShiftRequestService
}

func newFixture() *fixture {
	store := memory.NewStore()
	return &fixture{
		store:    store,
		shifts:   service.NewShiftService(store.SlotRepository, store.DepartmentRepository, 3),
		schedule: service.NewScheduleService(store.SlotRepository, store.UserRepository, store.DepartmentRepository),
		requests: service.NewShiftRequestService(store.ShiftRequestRepository, store.SlotRepository, store.UserRepository, store.DepartmentRepository),
	}
}

func (f *fixture) createDepartment(t *testing.T, name string) int32 {
	t.Helper()
	dept := &domain.Department{Name: name}
	require.NoError(t, f.store.DepartmentRepository.Create(context.Background(), dept))
	return dept.ID
}

func (f *fixture) createUser(t *testing.T, name string, deptID int32) int32 {
	t.Helper()
	user := &domain.User{FullName: name, Email: name + "@example.com", Role: domain.RoleStaff, DepartmentID: &deptID}
	require.NoError(t, f.store.UserRepository.Create(context.Background(), user))
	return user.ID
}

func (f *fixture) uploadSlot(t *testing.T, deptID int32, date time.Time, quantity int32, state domain.PublishState) int32 {
	t.Helper()
	created, err := f.shifts.UploadSlots(context.Background(), deptID, []domain.ShiftSlot{{
		Date:         date,
		StartTime:    "09:00 AM",
		EndTime:      "05:00 PM",
		Quantity:     quantity,
		PublishState: state,
	}})
	require.NoError(t, err)
	return created[0].ID
}

var september = time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

func TestScheduleService_AvailableForUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	icu := f.createDepartment(t, "ICU")
	er := f.createDepartment(t, "ER")
	alice := f.createUser(t, "alice", icu)
	bob := f.createUser(t, "bob", icu)

	open := f.uploadSlot(t, icu, september, 2, domain.PublishStatePublished)
	full := f.uploadSlot(t, icu, september.AddDate(0, 0, 1), 1, domain.PublishStatePublished)
	f.uploadSlot(t, icu, september.AddDate(0, 0, 2), 1, domain.PublishStateUnpublished)
	f.uploadSlot(t, er, september, 1, domain.PublishStatePublished)
	booked := f.uploadSlot(t, icu, september.AddDate(0, 0, 3), 2, domain.PublishStatePublished)

	_, err := f.shifts.Book(ctx, full, bob)
	require.NoError(t, err)

	_, err = f.shifts.Book(ctx, booked, alice)
	require.NoError(t, err)

	slots, err := f.schedule.AvailableForUser(ctx, alice, "2026-09")
	require.NoError(t, err)

	ids := make([]int32, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	// bob's booking fills the single-seat slot, alice's own booking and the
	// unpublished and other-department slots are excluded too
	assert.Contains(t, ids, open)
	assert.NotContains(t, ids, full)
	assert.NotContains(t, ids, booked)
	assert.Len(t, ids, 1)
}

func TestScheduleService_AvailableOtherDepartments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	icu := f.createDepartment(t, "ICU")
	er := f.createDepartment(t, "ER")
	alice := f.createUser(t, "alice", icu)

	f.uploadSlot(t, icu, september, 2, domain.PublishStatePublished)
	erSlot := f.uploadSlot(t, er, september, 1, domain.PublishStatePublished)

	views, err := f.schedule.AvailableOtherDepartments(ctx, alice, "2026-09")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, erSlot, views[0].Slot.ID)
	assert.Equal(t, "ER", views[0].Department.Name)
}

func TestScheduleService_PendingAndRejectedForUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	icu := f.createDepartment(t, "ICU")
	alice := f.createUser(t, "alice", icu)
	admin := f.createUser(t, "admin", icu)

	pendingSlot := f.uploadSlot(t, icu, september, 1, domain.PublishStatePublished)
	rejectedSlot := f.uploadSlot(t, icu, september.AddDate(0, 0, 1), 1, domain.PublishStatePublished)

	_, err := f.shifts.Book(ctx, pendingSlot, alice)
	require.NoError(t, err)
	_, err = f.shifts.Book(ctx, rejectedSlot, alice)
	require.NoError(t, err)
	_, err = f.shifts.Reject(ctx, rejectedSlot, alice, "", admin)
	require.NoError(t, err)

	entries, err := f.schedule.PendingAndRejectedForUser(ctx, alice, "2026-09")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byKind := map[string]service.UserSlotEntry{}
	for _, e := range entries {
		byKind[e.Kind] = e
	}
	assert.Equal(t, pendingSlot, byKind["pending"].Slot.ID)
	assert.Equal(t, rejectedSlot, byKind["rejected"].Slot.ID)
	assert.Equal(t, "No reason provided", byKind["rejected"].RejectionReason)
	require.NotNil(t, byKind["rejected"].RejectedBy)
	assert.Equal(t, admin, *byKind["rejected"].RejectedBy)
}

func TestScheduleService_RejectionFreesCapacityForRebooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	icu := f.createDepartment(t, "ICU")
	alice := f.createUser(t, "alice", icu)
	admin := f.createUser(t, "admin", icu)

	slotID := f.uploadSlot(t, icu, september, 1, domain.PublishStatePublished)

	_, err := f.shifts.Book(ctx, slotID, alice)
	require.NoError(t, err)
	_, err = f.shifts.Reject(ctx, slotID, alice, "overstaffed", admin)
	require.NoError(t, err)

	// the freed seat is bookable again, including by the same user
	res, err := f.shifts.Book(ctx, slotID, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, res.Status)

	slot, err := f.store.SlotRepository.GetByID(ctx, slotID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), slot.ActiveCount)
	assert.Len(t, slot.RejectionHistory, 1)
	assert.Equal(t, "overstaffed", slot.RejectionHistory[0].Reason)
}

func TestScheduleService_CancelLeavesNoAuditTrail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	icu := f.createDepartment(t, "ICU")
	alice := f.createUser(t, "alice", icu)

	slotID := f.uploadSlot(t, icu, september, 1, domain.PublishStatePublished)

	_, err := f.shifts.Book(ctx, slotID, alice)
	require.NoError(t, err)
	require.NoError(t, f.shifts.Cancel(ctx, slotID, alice))

	slot, err := f.store.SlotRepository.GetByID(ctx, slotID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), slot.ActiveCount)
	assert.Empty(t, slot.Reservations)
	assert.Empty(t, slot.RejectionHistory)

	// an approved booking cannot be cancelled
	_, err = f.shifts.Book(ctx, slotID, alice)
	require.NoError(t, err)
	_, err = f.shifts.Approve(ctx, slotID, alice, alice)
	require.NoError(t, err)
	err = f.shifts.Cancel(ctx, slotID, alice)
	assert.True(t, domain.IsKind(err, domain.KindInvalidStateTransition))
}

func TestScheduleService_DashboardStats(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	icu := f.createDepartment(t, "ICU")
	alice := f.createUser(t, "alice", icu)
	bob := f.createUser(t, "bob", icu)
	admin := f.createUser(t, "admin", icu)

	a := f.uploadSlot(t, icu, september, 3, domain.PublishStatePublished)
	f.uploadSlot(t, icu, september.AddDate(0, 0, 1), 5, domain.PublishStateUnpublished)

	_, err := f.shifts.Book(ctx, a, alice)
	require.NoError(t, err)
	_, err = f.shifts.Book(ctx, a, bob)
	require.NoError(t, err)
	_, err = f.shifts.Approve(ctx, a, bob, admin)
	require.NoError(t, err)

	stats, err := f.schedule.DashboardStats(ctx, "2026-09")
	require.NoError(t, err)

	// unpublished capacity is invisible to the dashboard
	assert.Equal(t, int32(3), stats.TotalSlotsUploaded)
	assert.Equal(t, int32(1), stats.AvailableSlots)
	// pending and approved reservations both count as requests
	assert.Equal(t, int32(2), stats.TotalRequests)
	assert.Equal(t, int32(1), stats.PendingApprovals)
	assert.Equal(t, "2026-09", stats.Month)
}

func TestScheduleService_InvalidMonth(t *testing.T) {
	f := newFixture()
	_, err := f.schedule.DashboardStats(context.Background(), "September 2026")
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestBackdoorRequest_EndToEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	icu := f.createDepartment(t, "ICU")
	alice := f.createUser(t, "alice", icu)
	admin := f.createUser(t, "admin", icu)

	req, err := f.requests.Submit(ctx, alice, icu, september.AddDate(0, 0, 5), "11:00 PM", "07:00 AM", "night cover")
	require.NoError(t, err)

	reviewed, err := f.requests.Review(ctx, req.ID, domain.ShiftRequestStatusApproved, admin, "approved for night cover")
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftRequestStatusApproved, reviewed.Status)

	// the materialized slot carries an already-approved reservation
	views, err := f.schedule.ApprovedForUser(ctx, alice, "2026-09")
	require.NoError(t, err)
	require.Len(t, views, 1)
	slot := views[0].Slot
	assert.Equal(t, int32(1), slot.Quantity)
	assert.Equal(t, int32(1), slot.ActiveCount)
	require.Len(t, slot.Reservations, 1)
	assert.Equal(t, domain.OriginBackdoor, slot.Reservations[0].Origin)
	assert.Equal(t, domain.ReservationStatusApproved, slot.Reservations[0].Status)

	// the materialized slot and its approved reservation show up in the counters
	stats, err := f.schedule.DashboardStats(ctx, "2026-09")
	require.NoError(t, err)
	assert.Equal(t, int32(1), stats.TotalSlotsUploaded)
	assert.Equal(t, int32(0), stats.AvailableSlots)
	assert.Equal(t, int32(1), stats.TotalRequests)
	assert.Equal(t, int32(0), stats.PendingApprovals)
}
