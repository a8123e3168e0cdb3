package repositories

import (
	"sync"

	"lapak/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository. The
// mutex gives it the same atomicity guarantee for AddOne that the unique
// index gives the GORM implementation.
type MockCartRepository struct {
	items map[string]models.CartItem // keyed by ID
	mu    sync.Mutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		items: make(map[string]models.CartItem),
	}
}

// AddOne increments the quantity for (userID, productID) or creates a
// quantity-1 item.
func (r *MockCartRepository) AddOne(userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity++
			r.items[id] = item
			return nil
		}
	}
	id := uuid.New().String()
	r.items[id] = models.CartItem{
		ID:        id,
		UserID:    userID,
		ProductID: productID,
		Quantity:  1,
	}
	return nil
}

// GetByID returns a cart item by its ID.
func (r *MockCartRepository) GetByID(id string) (*models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrCartItemNotFound
	}
	return &item, nil
}

// ListByUser returns all cart items owned by a user.
func (r *MockCartRepository) ListByUser(userID string) ([]models.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var items []models.CartItem
	for _, item := range r.items {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	return items, nil
}

// Delete removes a cart item by its ID.
func (r *MockCartRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrCartItemNotFound
	}
	delete(r.items, id)
	return nil
}

// DeleteByUser removes every cart item owned by a user.
func (r *MockCartRepository) DeleteByUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.UserID == userID {
			delete(r.items, id)
		}
	}
	return nil
}
