package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	rolepkg "github.com/tendant/simple-rbac/pkg/role"
)

// Handle handles HTTP requests for role management
type Handle struct {
	roleService *rolepkg.RoleService
}

// NewHandle creates a new role handler
func NewHandle(roleService *rolepkg.RoleService) *Handle {
	return &Handle{
		roleService: roleService,
	}
}

// RegisterRoutes registers the role routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.ListRoles)
		r.Post("/", h.CreateRole)
		r.Get("/{id}", h.GetRole)
	})
}

type roleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toRoleResponse(role rolepkg.Role) roleResponse {
	return roleResponse{
		ID:   role.ID.String(),
		Name: role.Name,
	}
}

// ListRoles handles retrieving the list of roles
func (h *Handle) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleService.FindRoles(r.Context())
	if err != nil {
		slog.Error("Failed to find roles", "error", err)
		http.Error(w, "Failed to find roles", http.StatusInternalServerError)
		return
	}

	response := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		response = append(response, toRoleResponse(role))
	}
	render.JSON(w, r, response)
}

// GetRole handles retrieving a role by ID
func (h *Handle) GetRole(w http.ResponseWriter, r *http.Request) {
	roleId, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid role ID", http.StatusBadRequest)
		return
	}

	role, err := h.roleService.GetRole(r.Context(), roleId)
	if err != nil {
		if errors.Is(err, rolepkg.ErrRoleNotFound) {
			http.Error(w, "Role not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get role", "error", err, "roleId", roleId)
		http.Error(w, "Failed to get role", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, toRoleResponse(role))
}

// CreateRole handles creating a new role
func (h *Handle) CreateRole(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	role, err := h.roleService.CreateRole(r.Context(), request.Name)
	if err != nil {
		switch {
		case errors.Is(err, rolepkg.ErrEmptyRoleName):
			http.Error(w, "Role name is required", http.StatusBadRequest)
		case errors.Is(err, rolepkg.ErrRoleNameExists):
			http.Error(w, "Role name already exists", http.StatusConflict)
		default:
			slog.Error("Failed to create role", "error", err)
			http.Error(w, "Failed to create role", http.StatusInternalServerError)
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toRoleResponse(role))
}
