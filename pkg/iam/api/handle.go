package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"golang.org/x/exp/slog"

	"github.com/tendant/simple-rbac/pkg/client"
	"github.com/tendant/simple-rbac/pkg/iam"
)

// Handle handles HTTP requests for user management
type Handle struct {
	iamService *iam.IamService
}

// NewHandle creates a new user handler
func NewHandle(iamService *iam.IamService) Handle {
	return Handle{
		iamService: iamService,
	}
}

// RegisterAdminRoutes registers the administrative user CRUD routes.
// Callers mount these behind client.AdminRoleMiddleware.
func (h Handle) RegisterAdminRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
	})
}

// RegisterProfileRoutes registers the self-service profile route
func (h Handle) RegisterProfileRoutes(r chi.Router) {
	r.Get("/profile", h.GetProfile)
}

// CreateUserRequest is the payload for creating a user
type CreateUserRequest struct {
	Username  string      `json:"username"`
	Password  string      `json:"password"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Age       int         `json:"age"`
	RoleIds   []uuid.UUID `json:"role_ids"`
}

// UpdateUserRequest is the payload for updating a user. Any id carried in
// the payload is ignored; the path id is authoritative. A blank password
// leaves the stored hash unchanged.
type UpdateUserRequest struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	Password  string      `json:"password"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Age       int         `json:"age"`
	RoleIds   []uuid.UUID `json:"role_ids"`
}

type roleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type userResponse struct {
	ID        string         `json:"id"`
	Username  string         `json:"username"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
	Email     string         `json:"email"`
	Age       int            `json:"age,omitempty"`
	Roles     []roleResponse `json:"roles"`
}

func toUserResponse(user iam.UserWithRoles) userResponse {
	roles := make([]roleResponse, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, roleResponse{ID: r.ID.String(), Name: r.Name})
	}
	return userResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Age:       user.Age,
		Roles:     roles,
	}
}

// ListUsers handles retrieving the list of users
// (GET /users)
func (h Handle) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.iamService.FindUsers(r.Context())
	if err != nil {
		slog.Error("Failed getting users", "error", err)
		http.Error(w, "Failed getting users", http.StatusInternalServerError)
		return
	}

	response := make([]userResponse, 0, len(users))
	for _, user := range users {
		response = append(response, toUserResponse(user))
	}
	render.JSON(w, r, response)
}

// GetUser handles retrieving a user by ID
// (GET /users/{id})
func (h Handle) GetUser(w http.ResponseWriter, r *http.Request) {
	userId, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := h.iamService.GetUser(r.Context(), userId)
	if err != nil {
		if errors.Is(err, iam.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed getting user", "error", err, "userId", userId)
		http.Error(w, "Failed getting user", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, toUserResponse(user))
}

// CreateUser handles creating a new user with its role bindings
// (POST /users)
func (h Handle) CreateUser(w http.ResponseWriter, r *http.Request) {
	var request CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if request.Username == "" || request.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	params := iam.CreateUserParams{}
	if err := copier.Copy(&params, &request); err != nil {
		slog.Error("Failed to copy request params", "error", err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	user, err := h.iamService.CreateUser(r.Context(), params, request.RoleIds)
	if err != nil {
		if errors.Is(err, iam.ErrUsernameExists) {
			http.Error(w, "Username already exists", http.StatusConflict)
			return
		}
		slog.Error("Failed creating user", "error", err)
		http.Error(w, "Failed creating user", http.StatusInternalServerError)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toUserResponse(user))
}

// UpdateUser handles updating a user under the path-supplied id
// (PUT /users/{id})
func (h Handle) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userId, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	var request UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if request.Username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	params := iam.UpdateUserParams{}
	if err := copier.Copy(&params, &request); err != nil {
		slog.Error("Failed to copy request params", "error", err)
		http.Error(w, "Failed to update user", http.StatusInternalServerError)
		return
	}

	// The path id is authoritative; the payload id is discarded
	user, err := h.iamService.UpdateUser(r.Context(), userId, params, request.RoleIds)
	if err != nil {
		switch {
		case errors.Is(err, iam.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		case errors.Is(err, iam.ErrUsernameExists):
			http.Error(w, "Username already exists", http.StatusConflict)
		default:
			slog.Error("Failed updating user", "error", err, "userId", userId)
			http.Error(w, "Failed updating user", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, r, toUserResponse(user))
}

// DeleteUser handles deleting a user by ID
// (DELETE /users/{id})
func (h Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userId, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.iamService.DeleteUser(r.Context(), userId); err != nil {
		if errors.Is(err, iam.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed deleting user", "error", err, "userId", userId)
		http.Error(w, "Failed deleting user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles the self-service profile read. The username comes
// from the verified claims of the already-authenticated caller, passed
// explicitly; there is no ambient principal.
// (GET /profile)
func (h Handle) GetProfile(w http.ResponseWriter, r *http.Request) {
	authUser, ok := client.GetAuthUser(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.iamService.GetUserByUsername(r.Context(), authUser.Username)
	if err != nil {
		if errors.Is(err, iam.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed getting profile", "error", err)
		http.Error(w, "Failed getting profile", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, toUserResponse(user))
}
