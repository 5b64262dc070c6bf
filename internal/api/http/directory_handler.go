package http

import (
	"net/http"

	"shiftboard-backend/internal/service"
)

type DirectoryHandler struct {
	departments service.DepartmentService
	groups      service.GroupService
}

func NewDirectoryHandler(departments service.DepartmentService, groups service.GroupService) *DirectoryHandler {
	return &DirectoryHandler{departments: departments, groups: groups}
}

func (h *DirectoryHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.departments.ListDepartments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "departments", departments)
}

func (h *DirectoryHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "groups", groups)
}
