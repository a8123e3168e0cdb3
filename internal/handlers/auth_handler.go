package handlers

import (
	"errors"
	"fmt"
	"log"

	"lapak/internal/flash"
	"lapak/internal/middleware"
	"lapak/internal/models"
	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles the browser-facing login, registration and logout
// routes. Registration and login share one form, distinguished by the
// "action" field.
type AuthHandler struct {
	authService *services.AuthService
	flashes     *flash.Store
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, flashes *flash.Store) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		flashes:     flashes,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireUser fiber.Handler) {
	router.Get("/login", h.ShowLogin)
	router.Post("/login", h.HandleLoginOrRegister)
	router.Get("/logout", requireUser, h.HandleLogout)
}

// credentialsForm is the shared login/register form body.
type credentialsForm struct {
	Username string `form:"username" validate:"required,min=3,max=100"`
	Password string `form:"password" validate:"required,min=6"`
	Action   string `form:"action" validate:"omitempty,oneof=login register"`
}

// ShowLogin renders the combined login/register form.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"Flashes": h.flashes.Pop(c),
	})
}

// HandleLoginOrRegister processes the login form. action=register creates an
// account; anything else attempts a login. Business failures flash a message
// and redisplay the form, they never surface as HTTP errors.
func (h *AuthHandler) HandleLoginOrRegister(c *fiber.Ctx) error {
	var form credentialsForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing login form: %v", err)
		h.flashes.Push(c, flash.KindError, "Invalid form submission.")
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	if err := h.validate.Struct(form); err != nil {
		h.flashes.Push(c, flash.KindError, "Username must be 3-100 characters and the password at least 6.")
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	if form.Action == "register" {
		user, err := h.authService.Register(form.Username, form.Password)
		if err != nil {
			if errors.Is(err, services.ErrUsernameTaken) {
				h.flashes.Push(c, flash.KindError, "Username exists.")
				return c.Redirect("/login", fiber.StatusSeeOther)
			}
			return fmt.Errorf("registration failed: %w", err)
		}
		return h.establishSession(c, user)
	}

	user, err := h.authService.Login(form.Username, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.flashes.Push(c, flash.KindError, "Invalid credentials")
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return fmt.Errorf("login failed: %w", err)
	}
	return h.establishSession(c, user)
}

// HandleLogout tears down the session and returns to the product list.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	middleware.ClearSessionCookie(c)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *AuthHandler) establishSession(c *fiber.Ctx, user *models.User) error {
	token, err := h.authService.IssueToken(user)
	if err != nil {
		return fmt.Errorf("failed to establish session: %w", err)
	}
	middleware.SetSessionCookie(c, token)
	return c.Redirect("/", fiber.StatusSeeOther)
}
