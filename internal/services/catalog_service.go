package services

import (
	"fmt"
	"log"

	"lapak/internal/models"
	"lapak/internal/repositories"
)

// CatalogService handles the read-only product catalog.
type CatalogService struct {
	repo repositories.ProductRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// GetAll retrieves every product in the catalog.
func (s *CatalogService) GetAll() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetByID retrieves a single product by its ID.
func (s *CatalogService) GetByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// SeedIfEmpty inserts the given products only when the catalog currently
// holds zero rows. The emptiness check makes the call idempotent across
// process restarts.
func (s *CatalogService) SeedIfEmpty(items []models.Product) error {
	count, err := s.repo.Count()
	if err != nil {
		return fmt.Errorf("failed to count catalog before seeding: %w", err)
	}
	if count > 0 {
		return nil
	}

	for i := range items {
		if err := s.repo.Create(&items[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", items[i].Name, err)
		}
	}
	log.Printf("Catalog seeded with %d products", len(items))
	return nil
}
