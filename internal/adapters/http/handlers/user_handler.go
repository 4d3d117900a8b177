package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"sogecredit/internal/core/domain"
	"sogecredit/internal/core/services"
	"sogecredit/internal/pkg/response"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents create user request body
type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Branch    string `json:"branch"`
	Phone     string `json:"phone"`
}

// UpdateUserRequest represents update user request body
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	Branch    *string `json:"branch"`
	Phone     *string `json:"phone"`
}

// ChangePasswordRequest represents change password request body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// List handles the role-scoped user listing
// @Summary List users
// @Description Managers see every account but their own; other roles see the active officers
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	users, err := h.userService.ListUsers(c.Context(), actor)
	if err != nil {
		return mapDomainError(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved successfully", fiber.Map{
		"users": users,
	})
}

// Create handles account creation
// @Summary Create user
// @Description Create an account (manager only); a welcome email is sent
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateUserRequest true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}
	if req.Role == "" {
		return response.BadRequest(c, "Role is required")
	}

	input := &services.CreateUserInput{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Role:      domain.Role(req.Role),
		Branch:    req.Branch,
		Phone:     req.Phone,
	}

	user, err := h.userService.CreateUser(c.Context(), actor, input, requestMeta(c))
	if err != nil {
		return mapDomainError(c, err, "Failed to create user")
	}

	return response.Created(c, "User created successfully", user.ToResponse())
}

// GetByID handles single user retrieval
// @Summary Get user
// @Description Get one account by id (manager only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	user, err := h.userService.GetByID(c.Context(), actor, id)
	if err != nil {
		return mapDomainError(c, err, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", user.ToResponse())
}

// Update handles account update
// @Summary Update user
// @Description Update an account (manager only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body UpdateUserRequest true "Changed fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id} [patch]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Branch:    req.Branch,
		Phone:     req.Phone,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.userService.UpdateUser(c.Context(), actor, id, input, requestMeta(c))
	if err != nil {
		return mapDomainError(c, err, "Failed to update user")
	}

	return response.Success(c, "User updated successfully", user.ToResponse())
}

// ToggleActive handles activation toggling
// @Summary Toggle user activation
// @Description Flip the active flag of an account (manager only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users/{id}/toggle-active [post]
func (h *UserHandler) ToggleActive(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	user, err := h.userService.ToggleActive(c.Context(), actor, id, requestMeta(c))
	if err != nil {
		return mapDomainError(c, err, "Failed to toggle user activation")
	}

	return response.Success(c, "User activation toggled successfully", user.ToResponse())
}

// Delete handles account deletion
// @Summary Delete user
// @Description Soft delete an account (manager only)
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid user id")
	}

	if err := h.userService.DeleteUser(c.Context(), actor, id); err != nil {
		return mapDomainError(c, err, "Failed to delete user")
	}

	return response.Success(c, "User deleted successfully", nil)
}

// ChangePassword handles own password change
// @Summary Change password
// @Description Change the current user's password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/change-password [post]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Old and new passwords are required")
	}

	input := &services.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}

	if err := h.userService.ChangePassword(c.Context(), actor, input); err != nil {
		return mapDomainError(c, err, "Failed to change password")
	}

	return response.Success(c, "Password changed successfully", nil)
}
