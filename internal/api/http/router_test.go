package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/repository/memory"
	"shiftboard-backend/internal/security"
	"shiftboard-backend/internal/service"
)

type testEnv struct {
	router     http.Handler
	store      *memory.Store
	adminToken string
	staffToken string
	staffID    int32
	deptID     int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", 60)

	dept := &domain.Department{Name: "ICU"}
	require.NoError(t, store.DepartmentRepository.Create(context.Background(), dept))

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	admin := &domain.User{FullName: "Admin", Email: "admin@example.com", PasswordHash: string(hash), Role: domain.RoleAdmin, DepartmentID: &dept.ID}
	require.NoError(t, store.UserRepository.Create(context.Background(), admin))
	staff := &domain.User{FullName: "Staff", Email: "staff@example.com", PasswordHash: string(hash), Role: domain.RoleStaff, DepartmentID: &dept.ID}
	require.NoError(t, store.UserRepository.Create(context.Background(), staff))

	adminToken, err := tokens.GenerateAccessToken(admin.ID, admin.Email, admin.Role)
	require.NoError(t, err)
	staffToken, err := tokens.GenerateAccessToken(staff.ID, staff.Email, staff.Role)
	require.NoError(t, err)

	router := NewRouter(Services{
		Auth:         service.NewAuthService(store.UserRepository, store.DepartmentRepository, tokens),
		Shifts:       service.NewShiftService(store.SlotRepository, store.DepartmentRepository, 3),
		Schedule:     service.NewScheduleService(store.SlotRepository, store.UserRepository, store.DepartmentRepository),
		Requests:     service.NewShiftRequestService(store.ShiftRequestRepository, store.SlotRepository, store.UserRepository, store.DepartmentRepository),
		Departments:  service.NewDepartmentService(store.DepartmentRepository),
		Groups:       service.NewGroupService(store.GroupRepository),
		TokenManager: tokens,
	})

	return &testEnv{
		router:     router,
		store:      store,
		adminToken: adminToken,
		staffToken: staffToken,
		staffID:    staff.ID,
		deptID:     dept.ID,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) uploadShift(t *testing.T, quantity int32) int32 {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/shifts/upload", e.adminToken, map[string]any{
		"department_id": e.deptID,
		"shifts": []map[string]any{{
			"date":          time.Now().UTC().Format("2006-01-02"),
			"start_time":    "09:00 AM",
			"end_time":      "05:00 PM",
			"quantity":      quantity,
			"publish_state": "PUBLISHED",
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data []domain.ShiftSlot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	return resp.Data[0].ID
}

func TestAuthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Login Success", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "staff@example.com", "password": "password123",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"token"`)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "staff@example.com", "password": "nope",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Missing Token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/auth/user", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Profile", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/auth/user", env.staffToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "staff@example.com")
	})
}

func TestAdminGating(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/shifts/upload", env.staffToken, map[string]any{
		"department_id": env.deptID,
		"shifts":        []map[string]any{},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/shifts/admin-dashboard-stats", env.staffToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBookingStatusMapping(t *testing.T) {
	env := newTestEnv(t)
	slotID := env.uploadShift(t, 1)

	t.Run("Book", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/shifts/book/%d", slotID), env.staffToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("Duplicate Is Conflict", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/shifts/book/%d", slotID), env.staffToken, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Full Slot Is Conflict For Another User", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/shifts/book/%d", slotID), env.adminToken, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Unknown Slot Is Not Found", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/shifts/book/9999", env.staffToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Approve Then Cancel Is Conflict", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/shifts/approve/%d", slotID), env.adminToken, map[string]any{"user_id": env.staffID})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/shifts/cancel/%d", slotID), env.staffToken, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestValidationAndRouting(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Bad Upload Body", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/shifts/upload", env.adminToken, map[string]any{
			"department_id": env.deptID,
			"shifts": []map[string]any{{
				"date": "14-09-2026", "start_time": "09:00 AM", "end_time": "05:00 PM", "quantity": 1,
			}},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Invalid Publish State", func(t *testing.T) {
		slotID := env.uploadShift(t, 1)
		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/api/shifts/publish/%d", slotID), env.adminToken, map[string]any{
			"publish_state": "ARCHIVED",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown Route", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/unknown", env.staffToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Department Schedule", func(t *testing.T) {
		env.uploadShift(t, 2)
		rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/shifts/%d?month=%s", env.deptID, time.Now().UTC().Format("2006-01")), env.staffToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"department"`)
	})
}

func TestShiftRequestEndpoints(t *testing.T) {
	env := newTestEnv(t)
	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	rec := env.do(t, http.MethodPost, "/api/shift-requests", env.staffToken, map[string]any{
		"department_id": env.deptID,
		"date":          date,
		"start_time":    "11:00 PM",
		"end_time":      "07:00 AM",
		"reason":        "night cover",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data domain.ShiftRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	t.Run("Staff Cannot Review", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/api/shift-requests/review/%d", created.Data.ID), env.staffToken, map[string]any{"status": "APPROVED"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Admin Approves", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/api/shift-requests/review/%d", created.Data.ID), env.adminToken, map[string]any{
			"status": "APPROVED", "admin_notes": "ok",
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("Second Review Is Conflict", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, fmt.Sprintf("/api/shift-requests/review/%d", created.Data.ID), env.adminToken, map[string]any{"status": "REJECTED"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Approved Shift Visible To Requester", func(t *testing.T) {
		month := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01")
		rec := env.do(t, http.MethodGet, "/api/shifts/approved?month="+month, env.staffToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"BACKDOOR"`)
	})
}
