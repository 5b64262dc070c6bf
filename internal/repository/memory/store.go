// Package memory provides a mutex-guarded in-memory implementation of the
// repository interfaces. It backs the `database.driver: memory` dev mode and
// the storage-free unit tests; its conditional-write semantics mirror the
// postgres store exactly.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/repository"
)

// Store aggregates the in-memory repositories over one shared, mutex-guarded
// core, mirroring the postgres Store shape.
type Store struct {
	repository.UserRepository
	repository.DepartmentRepository
	repository.GroupRepository
	repository.SlotRepository
	repository.ShiftRequestRepository
}

func NewStore() *Store {
	c := &core{
		users:       make(map[int32]*domain.User),
		departments: make(map[int32]*domain.Department),
		groups:      make(map[int32]*domain.Group),
		slots:       make(map[int32]*domain.ShiftSlot),
		requests:    make(map[int32]*domain.ShiftRequest),
	}
	return &Store{
		UserRepository:         userRepo{c},
		DepartmentRepository:   departmentRepo{c},
		GroupRepository:        groupRepo{c},
		SlotRepository:         slotRepo{c},
		ShiftRequestRepository: requestRepo{c},
	}
}

type core struct {
	mu sync.Mutex

	users       map[int32]*domain.User
	departments map[int32]*domain.Department
	groups      map[int32]*domain.Group
	slots       map[int32]*domain.ShiftSlot
	requests    map[int32]*domain.ShiftRequest

	nextUserID        int32
	nextDepartmentID  int32
	nextGroupID       int32
	nextSlotID        int32
	nextReservationID int32
	nextRejectionID   int32
	nextRequestID     int32
}

// --- users ---

type userRepo struct{ c *core }

func (r userRepo) Create(ctx context.Context, user *domain.User) error {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.users {
		if existing.Email == user.Email {
			return domain.NewError(domain.KindValidation, "email already registered")
		}
	}
	c.nextUserID++
	user.ID = c.nextUserID
	now := time.Now().UTC()
	user.CreatedOn, user.UpdatedOn = now, now
	cp := *user
	c.users[user.ID] = &cp
	return nil
}

func (r userRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[id]
	if !ok {
		return nil, domain.NewError(domain.KindNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "user not found")
}

func (r userRepo) UpdateLastLoggedIn(ctx context.Context, id int32, at time.Time) error {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[id]
	if !ok {
		return domain.NewError(domain.KindNotFound, "user not found")
	}
	t := at
	u.LastLoggedIn = &t
	u.UpdatedOn = time.Now().UTC()
	return nil
}

// --- departments ---

type departmentRepo struct{ c *core }

func (r departmentRepo) Create(ctx context.Context, dept *domain.Department) error {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextDepartmentID++
	dept.ID = c.nextDepartmentID
	now := time.Now().UTC()
	dept.CreatedOn, dept.UpdatedOn = now, now
	cp := *dept
	c.departments[dept.ID] = &cp
	return nil
}

func (r departmentRepo) GetByID(ctx context.Context, id int32) (*domain.Department, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.departments[id]
	if !ok {
		return nil, domain.Errorf(domain.KindNotFound, "department %d not found", id)
	}
	cp := *d
	return &cp, nil
}

func (r departmentRepo) List(ctx context.Context) ([]domain.Department, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Department, 0, len(c.departments))
	for _, d := range c.departments {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- groups ---

type groupRepo struct{ c *core }

func (r groupRepo) Create(ctx context.Context, group *domain.Group) error {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextGroupID++
	group.ID = c.nextGroupID
	now := time.Now().UTC()
	group.CreatedOn, group.UpdatedOn = now, now
	cp := *group
	c.groups[group.ID] = &cp
	return nil
}

func (r groupRepo) List(ctx context.Context) ([]domain.Group, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Group, 0, len(c.groups))
	for _, g := range c.groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- slot store ---

type slotRepo struct{ c *core }

func (r slotRepo) CreateSlots(ctx context.Context, departmentID int32, slots []domain.ShiftSlot) ([]domain.ShiftSlot, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now().UTC()
	created := make([]domain.ShiftSlot, 0, len(slots))
	for _, in := range slots {
		c.nextSlotID++
		slot := in
		slot.ID = c.nextSlotID
		slot.DepartmentID = departmentID
		if slot.PublishState == "" {
			slot.PublishState = domain.PublishStatePublished
		}
		slot.ActiveCount = 0
		slot.Version = 0
		slot.Reservations = nil
		slot.RejectionHistory = nil
		slot.CreatedOn, slot.UpdatedOn = now, now
		cp := slot
		c.slots[slot.ID] = &cp
		created = append(created, slot)
	}
	return created, nil
}

func (r slotRepo) GetByID(ctx context.Context, slotID int32) (*domain.ShiftSlot, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.slots[slotID]
	if !ok {
		return nil, domain.Errorf(domain.KindNotFound, "shift %d not found", slotID)
	}
	return cloneSlot(slot), nil
}

func (r slotRepo) ListByDepartment(ctx context.Context, departmentID int32, window domain.MonthWindow) ([]domain.ShiftSlot, error) {
	return r.c.listSlots(func(slot *domain.ShiftSlot) bool {
		return slot.DepartmentID == departmentID && window.Contains(slot.Date)
	})
}

func (r slotRepo) ListAll(ctx context.Context, window domain.MonthWindow) ([]domain.ShiftSlot, error) {
	return r.c.listSlots(func(slot *domain.ShiftSlot) bool {
		return window.Contains(slot.Date)
	})
}

func (c *core) listSlots(match func(*domain.ShiftSlot) bool) ([]domain.ShiftSlot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.ShiftSlot
	for _, slot := range c.slots {
		if match(slot) {
			out = append(out, *cloneSlot(slot))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r slotRepo) SetPublishState(ctx context.Context, slotID int32, state domain.PublishState) error {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.slots[slotID]
	if !ok {
		return domain.Errorf(domain.KindNotFound, "shift %d not found", slotID)
	}
	slot.PublishState = state
	slot.Version++
	slot.UpdatedOn = time.Now().UTC()
	return nil
}

func (r slotRepo) FindOrCreateSlot(ctx context.Context, departmentID int32, date time.Time, startTime, endTime string, quantity int32, state domain.PublishState) (*domain.ShiftSlot, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, slot := range c.slots {
		if slot.DepartmentID == departmentID && slot.Date.Equal(date) && slot.StartTime == startTime && slot.EndTime == endTime {
			return cloneSlot(slot), nil
		}
	}
	c.nextSlotID++
	now := time.Now().UTC()
	slot := &domain.ShiftSlot{
		ID:           c.nextSlotID,
		DepartmentID: departmentID,
		Date:         date,
		StartTime:    startTime,
		EndTime:      endTime,
		Quantity:     quantity,
		PublishState: state,
		CreatedOn:    now,
		UpdatedOn:    now,
	}
	c.slots[slot.ID] = slot
	return cloneSlot(slot), nil
}

func (r slotRepo) AppendReservation(ctx context.Context, slotID, userID int32, origin domain.ReservationOrigin, status domain.ReservationStatus) (*domain.Reservation, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.slots[slotID]
	if !ok || slot.PublishState != domain.PublishStatePublished {
		return nil, domain.Errorf(domain.KindNotFound, "shift %d not found", slotID)
	}
	// Capacity is claimed before the duplicate check, matching the guarded
	// UPDATE ordering of the postgres store.
	if slot.ActiveCount >= slot.Quantity {
		return nil, domain.NewError(domain.KindCapacityExceeded, "no available slots for this shift")
	}
	if slot.ReservationFor(userID, domain.ReservationStatusPending, domain.ReservationStatusApproved) != nil {
		return nil, domain.NewError(domain.KindDuplicateBooking, "you already have an active booking for this shift")
	}

	c.nextReservationID++
	rec := domain.Reservation{
		ID:       c.nextReservationID,
		SlotID:   slotID,
		UserID:   userID,
		Status:   status,
		Origin:   origin,
		BookedAt: time.Now().UTC(),
	}
	slot.Reservations = append(slot.Reservations, rec)
	slot.ActiveCount++
	slot.Version++
	slot.UpdatedOn = rec.BookedAt
	cp := rec
	return &cp, nil
}

func (r slotRepo) TransitionReservation(ctx context.Context, slotID, userID int32, from, to domain.ReservationStatus, reviewerID int32, reason string) (*domain.Reservation, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.slots[slotID]
	if !ok {
		return nil, domain.Errorf(domain.KindNotFound, "shift %d not found", slotID)
	}
	rec := slot.ReservationFor(userID, from)
	if rec == nil {
		if slot.ReservationFor(userID) == nil {
			return nil, domain.Errorf(domain.KindNotFound, "no %s booking found for this user on this shift", from)
		}
		return nil, domain.Errorf(domain.KindInvalidStateTransition, "booking is not %s", from)
	}

	now := time.Now().UTC()
	reviewer := reviewerID
	rec.Status = to
	rec.ReviewedAt = &now
	rec.ReviewedBy = &reviewer
	if to == domain.ReservationStatusRejected {
		rec.RejectionReason = reason
		slot.ActiveCount--
		c.nextRejectionID++
		slot.RejectionHistory = append(slot.RejectionHistory, domain.RejectionRecord{
			ID:         c.nextRejectionID,
			SlotID:     slotID,
			UserID:     userID,
			Reason:     reason,
			RejectedAt: now,
			RejectedBy: &reviewer,
		})
	}
	slot.Version++
	slot.UpdatedOn = now
	cp := *rec
	return &cp, nil
}

func (r slotRepo) RemoveReservation(ctx context.Context, slotID, userID int32) error {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()

	slot, ok := c.slots[slotID]
	if !ok {
		return domain.Errorf(domain.KindNotFound, "shift %d not found", slotID)
	}
	for i := range slot.Reservations {
		res := &slot.Reservations[i]
		if res.UserID != userID || res.Status != domain.ReservationStatusPending {
			continue
		}
		slot.Reservations = append(slot.Reservations[:i], slot.Reservations[i+1:]...)
		slot.ActiveCount--
		slot.Version++
		slot.UpdatedOn = time.Now().UTC()
		return nil
	}
	if slot.ReservationFor(userID) != nil {
		return domain.NewError(domain.KindInvalidStateTransition, "booking is not PENDING")
	}
	return domain.NewError(domain.KindNotFound, "no PENDING booking found for this user on this shift")
}

func (r slotRepo) UnpublishBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	now := time.Now().UTC()
	for _, slot := range c.slots {
		if slot.PublishState == domain.PublishStatePublished && slot.Date.Before(cutoff) {
			slot.PublishState = domain.PublishStateUnpublished
			slot.Version++
			slot.UpdatedOn = now
			n++
		}
	}
	return n, nil
}

// --- shift requests ---

type requestRepo struct{ c *core }

func (r requestRepo) Create(ctx context.Context, req *domain.ShiftRequest) error {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextRequestID++
	req.ID = c.nextRequestID
	now := time.Now().UTC()
	req.CreatedOn, req.UpdatedOn = now, now
	cp := *req
	c.requests[req.ID] = &cp
	return nil
}

func (r requestRepo) GetByID(ctx context.Context, id int32) (*domain.ShiftRequest, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.requests[id]
	if !ok {
		return nil, domain.Errorf(domain.KindNotFound, "shift request %d not found", id)
	}
	cp := *req
	return &cp, nil
}

func (r requestRepo) List(ctx context.Context, status domain.ShiftRequestStatus, window *domain.MonthWindow) ([]domain.ShiftRequest, error) {
	return r.c.listRequests(func(req *domain.ShiftRequest) bool {
		if status != "" && req.Status != status {
			return false
		}
		return window == nil || window.Contains(req.Date)
	})
}

func (r requestRepo) ListByUser(ctx context.Context, userID int32, status domain.ShiftRequestStatus) ([]domain.ShiftRequest, error) {
	return r.c.listRequests(func(req *domain.ShiftRequest) bool {
		return req.RequestedBy == userID && (status == "" || req.Status == status)
	})
}

func (c *core) listRequests(match func(*domain.ShiftRequest) bool) ([]domain.ShiftRequest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []domain.ShiftRequest
	for _, req := range c.requests {
		if match(req) {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedOn.Equal(out[j].CreatedOn) {
			return out[i].CreatedOn.After(out[j].CreatedOn)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r requestRepo) UpdateStatus(ctx context.Context, id int32, from, to domain.ShiftRequestStatus, reviewerID int32, notes string) (*domain.ShiftRequest, error) {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	req, ok := c.requests[id]
	if !ok {
		return nil, domain.Errorf(domain.KindNotFound, "shift request %d not found", id)
	}
	if req.Status != from {
		return nil, domain.Errorf(domain.KindInvalidStateTransition, "shift request is not %s", from)
	}
	now := time.Now().UTC()
	req.Status = to
	req.ReviewedBy = nil
	if reviewerID != 0 {
		reviewer := reviewerID
		req.ReviewedBy = &reviewer
	}
	req.ReviewedAt = &now
	req.AdminNotes = notes
	req.UpdatedOn = now
	cp := *req
	return &cp, nil
}

func (r requestRepo) Delete(ctx context.Context, id int32) error {
	c := r.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.requests[id]; !ok {
		return domain.Errorf(domain.KindNotFound, "shift request %d not found", id)
	}
	delete(c.requests, id)
	return nil
}

func (r requestRepo) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.ShiftRequest, error) {
	return r.c.listRequests(func(req *domain.ShiftRequest) bool {
		return req.Status == domain.ShiftRequestStatusPending && req.Date.Before(cutoff)
	})
}

func cloneSlot(slot *domain.ShiftSlot) *domain.ShiftSlot {
	cp := *slot
	cp.Reservations = append([]domain.Reservation(nil), slot.Reservations...)
	cp.RejectionHistory = append([]domain.RejectionRecord(nil), slot.RejectionHistory...)
	return &cp
}
