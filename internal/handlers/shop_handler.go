package handlers

import (
	"errors"
	"fmt"
	"log"

	"lapak/internal/flash"
	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ShopHandler handles the browser-facing catalog and cart routes.
type ShopHandler struct {
	catalogService *services.CatalogService
	cartService    *services.CartService
	flashes        *flash.Store
}

// NewShopHandler creates a new ShopHandler.
func NewShopHandler(catalogService *services.CatalogService, cartService *services.CartService, flashes *flash.Store) *ShopHandler {
	return &ShopHandler{
		catalogService: catalogService,
		cartService:    cartService,
		flashes:        flashes,
	}
}

// RegisterRoutes registers the shop routes with the Fiber app. Browsing is
// public; everything touching the cart requires a session.
func (h *ShopHandler) RegisterRoutes(router fiber.Router, loadUser, requireUser fiber.Handler) {
	router.Get("/", loadUser, h.HandleIndex)
	router.Get("/add/:productID", requireUser, h.HandleAdd)
	router.Get("/cart", requireUser, h.HandleCart)
	router.Get("/cart/remove/:itemID", requireUser, h.HandleRemove)
	router.Get("/checkout", requireUser, h.HandleCheckout)
}

// HandleIndex renders the product list.
func (h *ShopHandler) HandleIndex(c *fiber.Ctx) error {
	products, err := h.catalogService.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	return c.Render("index", fiber.Map{
		"Products": products,
		"Username": c.Locals("username"),
		"Flashes":  h.flashes.Pop(c),
	})
}

// HandleAdd puts one unit of a product into the current user's cart and
// returns to the product list.
func (h *ShopHandler) HandleAdd(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	productID := c.Params("productID")

	if err := h.cartService.AddOne(userID, productID); err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			h.flashes.Push(c, flash.KindError, "That product does not exist.")
			return c.Redirect("/", fiber.StatusSeeOther)
		}
		return fmt.Errorf("failed to add to cart: %w", err)
	}

	h.flashes.Push(c, flash.KindInfo, "Item added to cart!")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleCart renders the current user's cart with line items and the total.
func (h *ShopHandler) HandleCart(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	items, err := h.cartService.ListForUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}

	return c.Render("cart", fiber.Map{
		"Items":    items,
		"Total":    h.cartService.Total(items),
		"Username": c.Locals("username"),
		"Flashes":  h.flashes.Pop(c),
	})
}

// HandleRemove deletes a single item from the current user's cart. Removing
// an item that is missing or belongs to someone else reports one
// indistinguishable failure.
func (h *ShopHandler) HandleRemove(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	itemID := c.Params("itemID")

	if err := h.cartService.Remove(itemID, userID); err != nil {
		if errors.Is(err, services.ErrNotCartOwner) {
			h.flashes.Push(c, flash.KindError, "Item could not be removed.")
			return c.Redirect("/cart", fiber.StatusSeeOther)
		}
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	h.flashes.Push(c, flash.KindInfo, "Item removed from cart.")
	return c.Redirect("/cart", fiber.StatusSeeOther)
}

// HandleCheckout finalizes the purchase by clearing the user's cart.
func (h *ShopHandler) HandleCheckout(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	if err := h.cartService.Checkout(userID); err != nil {
		return fmt.Errorf("checkout failed: %w", err)
	}

	log.Printf("User %s checked out", userID)
	h.flashes.Push(c, flash.KindInfo, "Thank you for your purchase! Your order has been placed.")
	return c.Redirect("/", fiber.StatusSeeOther)
}

// FormatCents renders an integer cent amount as a dollar string, e.g.
// 30050 -> "$300.50". Registered as the "price" template function.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
