package models

import "gorm.io/gorm"

// CartItem is one (user, product) line in a cart. The composite unique index
// backs the atomic increment-or-insert in the cart repository: two concurrent
// adds for the same pair can never produce two rows.
type CartItem struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID     string `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_product"`
	ProductID  string `json:"product_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_product"`
	Quantity   int    `json:"quantity" validate:"gte=1"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
