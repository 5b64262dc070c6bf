package service

import (
	"context"

	"shiftboard-backend/internal/domain"
	"shiftboard-backend/internal/repository"
)

type departmentService struct {
	departments repository.DepartmentRepository
}

func NewDepartmentService(departments repository.DepartmentRepository) DepartmentService {
	return &departmentService{departments: departments}
}

func (s *departmentService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.departments.List(ctx)
}

type groupService struct {
	groups repository.GroupRepository
}

func NewGroupService(groups repository.GroupRepository) GroupService {
	return &groupService{groups: groups}
}

func (s *groupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return s.groups.List(ctx)
}
