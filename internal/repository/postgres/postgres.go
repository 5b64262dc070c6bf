package postgres

import (
	"database/sql"

	_ "github.com/lib/pq"

	"shiftboard-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.DepartmentRepository
	repository.GroupRepository
	repository.SlotRepository
	repository.ShiftRequestRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		DepartmentRepository:   NewDepartmentRepository(db),
		GroupRepository:        NewGroupRepository(db),
		SlotRepository:         NewSlotRepository(db),
		ShiftRequestRepository: NewShiftRequestRepository(db),
	}
}
