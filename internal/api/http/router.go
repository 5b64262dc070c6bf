package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"shiftboard-backend/internal/security"
	"shiftboard-backend/internal/service"
)

// Services bundles everything the router needs.
type Services struct {
	Auth         service.AuthService
	Shifts       service.ShiftService
	Schedule     service.ScheduleService
	Requests     service.ShiftRequestService
	Departments  service.DepartmentService
	Groups       service.GroupService
	TokenManager security.TokenManager
}

// NewRouter builds the full API route table. Login is public; every other
// endpoint requires a valid token, and mutating admin operations are
// additionally gated on the admin role.
func NewRouter(svcs Services) *mux.Router {
	validate := validator.New()

	authHandler := NewAuthHandler(svcs.Auth, validate)
	shiftHandler := NewShiftHandler(svcs.Shifts, svcs.Schedule, validate)
	requestHandler := NewShiftRequestHandler(svcs.Requests, validate)
	directoryHandler := NewDirectoryHandler(svcs.Departments, svcs.Groups)

	root := mux.NewRouter()
	root.Use(RequestLogger)
	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, "route not found", nil)
	})

	api := root.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(Authenticate(svcs.TokenManager))

	authed.HandleFunc("/auth/user", authHandler.CurrentUser).Methods(http.MethodGet)
	authed.HandleFunc("/departments", directoryHandler.ListDepartments).Methods(http.MethodGet)
	authed.HandleFunc("/groups", directoryHandler.ListGroups).Methods(http.MethodGet)

	// staff shift endpoints; literal paths registered before the
	// {departmentId} catch-all
	authed.HandleFunc("/shifts/book/{id:[0-9]+}", shiftHandler.Book).Methods(http.MethodPost)
	authed.HandleFunc("/shifts/cancel/{id:[0-9]+}", shiftHandler.Cancel).Methods(http.MethodPost)
	authed.HandleFunc("/shifts/pending-by-user", shiftHandler.PendingByUser).Methods(http.MethodGet)
	authed.HandleFunc("/shifts/pending-and-rejected", shiftHandler.PendingAndRejected).Methods(http.MethodGet)
	authed.HandleFunc("/shifts/available-my-department", shiftHandler.AvailableMyDepartment).Methods(http.MethodGet)
	authed.HandleFunc("/shifts/available/other-department", shiftHandler.AvailableOtherDepartments).Methods(http.MethodGet)
	authed.HandleFunc("/shifts/approved", shiftHandler.Approved).Methods(http.MethodGet)

	// backdoor shift requests
	authed.HandleFunc("/shift-requests", requestHandler.Submit).Methods(http.MethodPost)
	authed.HandleFunc("/shift-requests/mine", requestHandler.ListMine).Methods(http.MethodGet)

	admin := authed.NewRoute().Subrouter()
	admin.Use(RequireAdmin)

	admin.HandleFunc("/shifts/upload", shiftHandler.Upload).Methods(http.MethodPost)
	admin.HandleFunc("/shifts/approve/{id:[0-9]+}", shiftHandler.Approve).Methods(http.MethodPost)
	admin.HandleFunc("/shifts/reject/{id:[0-9]+}", shiftHandler.Reject).Methods(http.MethodPost)
	admin.HandleFunc("/shifts/publish/{id:[0-9]+}", shiftHandler.Publish).Methods(http.MethodPatch)
	admin.HandleFunc("/shifts/pending", shiftHandler.PendingForAdmin).Methods(http.MethodGet)
	admin.HandleFunc("/shifts/admin-dashboard-stats", shiftHandler.DashboardStats).Methods(http.MethodGet)
	admin.HandleFunc("/shifts/unpublished/{departmentId:[0-9]+}", shiftHandler.UnpublishedByDepartment).Methods(http.MethodGet)

	admin.HandleFunc("/shift-requests/all", requestHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/shift-requests/review/{id:[0-9]+}", requestHandler.Review).Methods(http.MethodPatch)
	admin.HandleFunc("/shift-requests/{id:[0-9]+}", requestHandler.Delete).Methods(http.MethodDelete)

	// published schedule for one department; last so literal shift routes win
	authed.HandleFunc("/shifts/{departmentId:[0-9]+}", shiftHandler.ByDepartment).Methods(http.MethodGet)

	return root
}
