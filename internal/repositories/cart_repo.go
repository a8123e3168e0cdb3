package repositories

import (
	"errors"

	"lapak/internal/models"
)

// ErrCartItemNotFound is returned by lookups when no cart item matches.
var ErrCartItemNotFound = errors.New("cart item not found")

// CartRepository defines the interface for cart data access.
//
// AddOne must be atomic with respect to concurrent calls for the same
// (userID, productID) pair: N overlapping calls leave exactly one row with
// quantity N, never two rows and never a lost increment.
type CartRepository interface {
	AddOne(userID, productID string) error
	GetByID(id string) (*models.CartItem, error)
	ListByUser(userID string) ([]models.CartItem, error)
	Delete(id string) error
	DeleteByUser(userID string) error
}
