package services_test

import (
	"testing"

	"lapak/internal/models"
	"lapak/internal/repositories"
	"lapak/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEventPublisher is a mock implementation of services.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishCartCheckedOut(payload map[string]interface{}) error {
	args := m.Called(payload)
	return args.Error(0)
}

func newCartFixture(t *testing.T) (*services.CartService, *repositories.MockCartRepository, *models.Product, *models.Product) {
	t.Helper()

	productRepo := repositories.NewMockProductRepository()
	keyboard := &models.Product{Name: "Mechanical Keyboard", PriceCents: 12000}
	mouse := &models.Product{Name: "Gaming Mouse", PriceCents: 6050}
	require.NoError(t, productRepo.Create(keyboard))
	require.NoError(t, productRepo.Create(mouse))

	cartRepo := repositories.NewMockCartRepository()
	return services.NewCartService(cartRepo, productRepo, nil), cartRepo, keyboard, mouse
}

func TestCartService_AddOne(t *testing.T) {
	cartService, _, keyboard, _ := newCartFixture(t)

	// N sequential adds of the same product leave one item with quantity N.
	for i := 0; i < 5; i++ {
		require.NoError(t, cartService.AddOne("user-a", keyboard.ID))
	}

	items, err := cartService.ListForUser("user-a")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keyboard.ID, items[0].ProductID)
	assert.Equal(t, 5, items[0].Quantity)

	// Adding an unknown product fails without touching the cart.
	err = cartService.AddOne("user-a", "no-such-product")
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	items, err = cartService.ListForUser("user-a")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartService_Remove(t *testing.T) {
	cartService, _, keyboard, _ := newCartFixture(t)

	require.NoError(t, cartService.AddOne("user-a", keyboard.ID))
	items, err := cartService.ListForUser("user-a")
	require.NoError(t, err)
	require.Len(t, items, 1)
	itemID := items[0].ID

	// Another user cannot remove the item, and cannot tell it exists.
	err = cartService.Remove(itemID, "user-b")
	assert.ErrorIs(t, err, services.ErrNotCartOwner)

	items, err = cartService.ListForUser("user-a")
	require.NoError(t, err)
	assert.Len(t, items, 1, "foreign remove must not delete anything")

	// A missing item yields the same error as a non-owned one.
	err = cartService.Remove("no-such-item", "user-a")
	assert.ErrorIs(t, err, services.ErrNotCartOwner)

	// The owner can remove it.
	require.NoError(t, cartService.Remove(itemID, "user-a"))
	items, err = cartService.ListForUser("user-a")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartService_Total(t *testing.T) {
	cartService, _, _, _ := newCartFixture(t)

	items := []models.CartItem{
		{Quantity: 2, Product: &models.Product{PriceCents: 12000}},
		{Quantity: 1, Product: &models.Product{PriceCents: 6050}},
	}
	assert.Equal(t, int64(30050), cartService.Total(items))

	assert.Equal(t, int64(0), cartService.Total(nil))

	// Items without a loaded product contribute nothing.
	assert.Equal(t, int64(0), cartService.Total([]models.CartItem{{Quantity: 3}}))
}

func TestCartService_Checkout(t *testing.T) {
	productRepo := repositories.NewMockProductRepository()
	keyboard := &models.Product{Name: "Mechanical Keyboard", PriceCents: 12000}
	require.NoError(t, productRepo.Create(keyboard))

	cartRepo := repositories.NewMockCartRepository()
	mockEvents := new(MockEventPublisher)
	mockEvents.On("PublishCartCheckedOut", mock.Anything).Return(nil).Once()

	cartService := services.NewCartService(cartRepo, productRepo, mockEvents)

	require.NoError(t, cartService.AddOne("user-a", keyboard.ID))
	require.NoError(t, cartService.AddOne("user-a", keyboard.ID))
	require.NoError(t, cartService.AddOne("user-b", keyboard.ID))

	require.NoError(t, cartService.Checkout("user-a"))

	// user-a's cart is empty, user-b's is untouched.
	itemsA, err := cartService.ListForUser("user-a")
	require.NoError(t, err)
	assert.Empty(t, itemsA)

	itemsB, err := cartService.ListForUser("user-b")
	require.NoError(t, err)
	require.Len(t, itemsB, 1)
	assert.Equal(t, 1, itemsB[0].Quantity)

	mockEvents.AssertExpectations(t)

	// Checkout of an already-empty cart is harmless and still publishes.
	mockEvents.On("PublishCartCheckedOut", mock.Anything).Return(nil).Once()
	require.NoError(t, cartService.Checkout("user-a"))
	mockEvents.AssertExpectations(t)
}
