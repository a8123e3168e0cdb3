package services

import (
	"errors"
	"fmt"
	"log"

	"lapak/internal/models"
	"lapak/internal/repositories"
)

// ErrNotCartOwner is returned when removing a cart item that does not exist
// or belongs to another user. The two cases are deliberately conflated so a
// caller cannot probe for item IDs.
var ErrNotCartOwner = errors.New("cart item not found or not owned by user")

// EventPublisher publishes shop events to the message broker. It is
// satisfied by *rabbitmq.Client and mocked in tests.
type EventPublisher interface {
	PublishCartCheckedOut(payload map[string]interface{}) error
}

// CartService handles the per-user shopping cart.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	events      EventPublisher // may be nil when no broker is configured
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, events EventPublisher) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		events:      events,
	}
}

// AddOne puts one unit of a product into the user's cart, incrementing the
// quantity if the product is already there.
func (s *CartService) AddOne(userID, productID string) error {
	if _, err := s.productRepo.GetByID(productID); err != nil {
		return fmt.Errorf("cannot add product %s to cart: %w", productID, err)
	}
	return s.cartRepo.AddOne(userID, productID)
}

// Remove deletes a single cart item, but only when it is owned by the
// requesting user. A missing item and a non-owned item both yield
// ErrNotCartOwner.
func (s *CartService) Remove(itemID, userID string) error {
	item, err := s.cartRepo.GetByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrCartItemNotFound) {
			return ErrNotCartOwner
		}
		return fmt.Errorf("failed to load cart item %s: %w", itemID, err)
	}
	if item.UserID != userID {
		return ErrNotCartOwner
	}
	if err := s.cartRepo.Delete(itemID); err != nil {
		// A concurrent delete may have won the race since the lookup.
		if errors.Is(err, repositories.ErrCartItemNotFound) {
			return ErrNotCartOwner
		}
		return fmt.Errorf("failed to delete cart item %s: %w", itemID, err)
	}
	return nil
}

// ListForUser retrieves the user's cart items with products attached.
func (s *CartService) ListForUser(userID string) ([]models.CartItem, error) {
	return s.cartRepo.ListByUser(userID)
}

// Total sums price times quantity over the given items, in cents. Items
// without a loaded product contribute nothing.
func (s *CartService) Total(items []models.CartItem) int64 {
	var total int64
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		total += item.Product.PriceCents * int64(item.Quantity)
	}
	return total
}

// Checkout finalizes the user's cart by deleting every item in it. When a
// broker is configured, a cart.checked_out event is published afterwards;
// publish failures are logged, not surfaced, since the purchase itself has
// already completed.
func (s *CartService) Checkout(userID string) error {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load cart for checkout: %w", err)
	}

	if err := s.cartRepo.DeleteByUser(userID); err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}

	if s.events != nil {
		payload := map[string]interface{}{
			"user_id":     userID,
			"item_count":  len(items),
			"total_cents": s.Total(items),
		}
		if err := s.events.PublishCartCheckedOut(payload); err != nil {
			log.Printf("Warning: failed to publish checkout event for user %s: %v", userID, err)
		}
	}
	return nil
}
