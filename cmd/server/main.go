package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	httpapi "shiftboard-backend/internal/api/http"
	"shiftboard-backend/internal/config"
	"shiftboard-backend/internal/logger"
	"shiftboard-backend/internal/repository"
	"shiftboard-backend/internal/repository/memory"
	"shiftboard-backend/internal/repository/postgres"
	"shiftboard-backend/internal/security"
	"shiftboard-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Shiftboard Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())

	// Initialize Repositories
	var (
		users       repository.UserRepository
		departments repository.DepartmentRepository
		groups      repository.GroupRepository
		slots       repository.SlotRepository
		requests    repository.ShiftRequestRepository
	)
	switch cfg.Database.Driver {
	case "memory":
		logger.Info("Using in-memory store (data is not persisted)")
		store := memory.NewStore()
		users = store.UserRepository
		departments = store.DepartmentRepository
		groups = store.GroupRepository
		slots = store.SlotRepository
		requests = store.ShiftRequestRepository
	default:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Test database connection
		if err := db.Ping(); err != nil {
			logger.Error("Failed to ping database", "error", err)
			log.Fatalf("Failed to ping database: %v", err)
		}
		logger.Info("Database connection established")

		store := postgres.NewStore(db)
		users = store.UserRepository
		departments = store.DepartmentRepository
		groups = store.GroupRepository
		slots = store.SlotRepository
		requests = store.ShiftRequestRepository
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Services
	authSvc := service.NewAuthService(users, departments, tokenManager)
	shiftSvc := service.NewShiftService(slots, departments, cfg.Booking.MaxConflictRetries)
	scheduleSvc := service.NewScheduleService(slots, users, departments)
	requestSvc := service.NewShiftRequestService(requests, slots, users, departments)
	departmentSvc := service.NewDepartmentService(departments)
	groupSvc := service.NewGroupService(groups)

	// Initialize Router
	router := httpapi.NewRouter(httpapi.Services{
		Auth:         authSvc,
		Shifts:       shiftSvc,
		Schedule:     scheduleSvc,
		Requests:     requestSvc,
		Departments:  departmentSvc,
		Groups:       groupSvc,
		TokenManager: tokenManager,
	})

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
