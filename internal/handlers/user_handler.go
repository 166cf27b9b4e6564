package handlers

import (
	"errors"

	"fishlog/internal/middleware"
	"fishlog/internal/models"
	"fishlog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler provisions accounts. Only admins reach it.
type UserHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the account provisioning routes.
func (h *UserHandler) RegisterRoutes(router fiber.Router, guard middleware.Guard) {
	admin := guard(models.RoleAdmin)
	router.Get("/create_user", admin, h.HandleCreateUserForm)
	router.Post("/create_user", admin, h.HandleCreateUser)
}

// CreateUserRequest represents the account creation form.
type CreateUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Role     string `json:"role" form:"role" validate:"required,oneof=read write admin"`
}

// HandleCreateUserForm describes the account creation form.
func (h *UserHandler) HandleCreateUserForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"fields": []string{"username", "password", "role"},
		"roles":  []models.Role{models.RoleRead, models.RoleWrite, models.RoleAdmin},
	})
}

// HandleCreateUser creates an account with the requested role.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	user, err := h.authService.CreateUser(req.Username, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Could not create user",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrInvalidRole):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Could not create user",
				"error":   err.Error(),
			})
		}
		return internalError(c, "Could not create user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created",
		"user":    user,
	})
}
