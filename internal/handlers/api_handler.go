package handlers

import (
	"errors"
	"fmt"
	"log"

	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// APIHandler exposes the shop operations as a Bearer-token JSON API under
// /api/v1, mirroring the browser routes.
type APIHandler struct {
	authService    *services.AuthService
	catalogService *services.CatalogService
	cartService    *services.CartService
	validate       *validator.Validate
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(authService *services.AuthService, catalogService *services.CatalogService, cartService *services.CartService) *APIHandler {
	return &APIHandler{
		authService:    authService,
		catalogService: catalogService,
		cartService:    cartService,
		validate:       validator.New(),
	}
}

// RegisterRoutes registers the API routes with the Fiber app.
func (h *APIHandler) RegisterRoutes(router fiber.Router, apiAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)

	router.Get("/products", h.HandleListProducts)

	cartRoutes := router.Group("/cart", apiAuth)
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/items/:productID", h.HandleAddItem)
	cartRoutes.Delete("/items/:itemID", h.HandleRemoveItem)
	cartRoutes.Post("/checkout", h.HandleCheckout)
}

// CredentialsRequest is the request body for register and login.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6"`
}

// HandleRegister handles new user registration and issues a token.
func (h *APIHandler) HandleRegister(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	user, err := h.authService.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   services.ErrUsernameTaken.Error(),
			})
		}
		log.Printf("Error registering user: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
			"error":   err.Error(),
		})
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		log.Printf("Error issuing token after registration: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not issue token",
			"error":   err.Error(),
		})
	}

	// For security, do not return the password hash
	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// HandleLogin handles user login and issues a token.
func (h *APIHandler) HandleLogin(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Username, err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   services.ErrInvalidCredentials.Error(),
		})
	}

	token, err := h.authService.IssueToken(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not issue token",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// HandleListProducts returns the full catalog.
func (h *APIHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.catalogService.GetAll()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleGetCart returns the current user's cart items and total.
func (h *APIHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	items, err := h.cartService.ListForUser(userID)
	if err != nil {
		log.Printf("Error listing cart for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"items":       items,
		"total_cents": h.cartService.Total(items),
	})
}

// HandleAddItem adds one unit of a product to the current user's cart.
func (h *APIHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	productID := c.Params("productID")

	if err := h.cartService.AddOne(userID, productID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product %s not found", productID),
			})
		}
		log.Printf("Error adding product %s to cart: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not add to cart",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Item added to cart",
	})
}

// HandleRemoveItem deletes a single cart item owned by the current user. A
// missing item and a non-owned item are the same 404.
func (h *APIHandler) HandleRemoveItem(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	itemID := c.Params("itemID")

	if err := h.cartService.Remove(itemID, userID); err != nil {
		if errors.Is(err, services.ErrNotCartOwner) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Cart item not found",
			})
		}
		log.Printf("Error removing cart item %s: %v", itemID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove cart item",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
	})
}

// HandleCheckout clears the current user's cart.
func (h *APIHandler) HandleCheckout(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	if err := h.cartService.Checkout(userID); err != nil {
		log.Printf("Error during checkout for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not complete checkout",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Checkout complete, cart cleared",
	})
}
