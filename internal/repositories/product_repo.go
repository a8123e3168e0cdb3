package repositories

import (
	"errors"

	"lapak/internal/models"
)

// ErrProductNotFound is returned by lookups when no product matches.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for catalog data access. The
// catalog is read-only after seeding, so there are no update or delete
// operations.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Count() (int64, error)
}
