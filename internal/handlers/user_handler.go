package handlers

import (
	"looplane/internal/middleware"
	"looplane/internal/models"
	"looplane/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler serves a caller's own account.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the account routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/:id", h.GetUser)
	userRoutes.Put("/:id", h.UpdateUser)
	userRoutes.Delete("/:id", h.DeleteUser)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.authService.GetAccount(c.UserContext(), middleware.RequestContextFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var in models.UpdateAccountInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	user, err := h.authService.UpdateAccount(c.UserContext(), middleware.RequestContextFrom(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	user, err := h.authService.DeleteAccount(c.UserContext(), middleware.RequestContextFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"id":      user.ID,
		"user":    user,
	})
}
