package repositories

import (
	"errors"
	"fmt"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// AddOne inserts a quantity-1 row for (userID, productID) or bumps the
// existing row's quantity by one. The whole operation is a single INSERT ...
// ON CONFLICT DO UPDATE against the idx_cart_user_product unique index, so
// concurrent adds for the same pair cannot race.
func (r *GORMCartRepository) AddOne(userID, productID string) error {
	item := models.CartItem{
		ID:        uuid.New().String(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  1,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + 1"),
		}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add product %s to cart of user %s: %w", productID, userID, err)
	}
	return nil
}

// GetByID retrieves a single cart item by its ID.
func (r *GORMCartRepository) GetByID(id string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to get cart item by ID %s: %w", id, err)
	}
	return &item, nil
}

// ListByUser retrieves all cart items owned by a user, with the product
// association preloaded so callers can compute line totals.
func (r *GORMCartRepository) ListByUser(userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Find(&items, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart items for user %s: %w", userID, err)
	}
	return items, nil
}

// Delete removes a cart item by its ID. The delete is unscoped: a
// soft-deleted row would still occupy the (user, product) unique index and
// block re-adding the product.
func (r *GORMCartRepository) Delete(id string) error {
	res := r.db.Unscoped().Delete(&models.CartItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// DeleteByUser removes every cart item owned by a user in one statement.
func (r *GORMCartRepository) DeleteByUser(userID string) error {
	if err := r.db.Unscoped().Delete(&models.CartItem{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
