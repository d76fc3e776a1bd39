package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edaexpress/fooddelivery/cart/pkg/request"
	"github.com/edaexpress/fooddelivery/internal/config"
	inErrors "github.com/edaexpress/fooddelivery/internal/errors"
)

// The delivery service is not reachable from these tests, so the
// max-products-per-order limit always comes from the configured fallback.
var testDeliveryConfig = config.Delivery{
	BaseCost:              150,
	FreeDeliveryThreshold: 2000,
	TimeMinMinutes:        30,
	TimeMaxMinutes:        60,
	MaxProductsPerOrder:   3,
}

func TestAddItemPersistsCart(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, testDeliveryConfig)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	userID := uuid.New()
	cart, err := svc.AddItem(c, userID, request.AddCartItem{
		ProductID: "burger",
		Name:      "Бургер",
		Price:     decimal.NewFromInt(350),
	})
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	assert.Equal(t, "burger", cart.CartItems[0].ProductID)
	assert.EqualValues(t, 1, cart.CartItems[0].Quantity)
	assert.True(t, cart.Subtotal.Equal(decimal.NewFromInt(350)))

	cart, err = svc.AddItem(c, userID, request.AddCartItem{
		ProductID: "burger",
		Name:      "Бургер",
		Price:     decimal.NewFromInt(350),
	})
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1, "adding the same product should merge lines")
	assert.EqualValues(t, 2, cart.CartItems[0].Quantity)

	found, err := svc.FindCartByUserId(c, userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, found.ID)
	assert.True(t, found.Subtotal.Equal(decimal.NewFromInt(700)))
}

func TestAddItemRejectsWhenLimitReached(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, testDeliveryConfig)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		_, err := svc.AddItem(c, userID, request.AddCartItem{
			ProductID: "burger",
			Name:      "Бургер",
			Price:     decimal.NewFromInt(350),
		})
		require.NoError(t, err)
	}

	_, err := svc.AddItem(c, userID, request.AddCartItem{
		ProductID: "cola",
		Name:      "Кола",
		Price:     decimal.NewFromInt(100),
	})
	capErr := inErrors.CapExceededError{}
	require.ErrorAs(t, err, &capErr)
	assert.EqualValues(t, 3, capErr.Limit)

	cart, err := svc.FindCartByUserId(c, userID)
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1, "rejected mutation should not be persisted")
	assert.EqualValues(t, 3, cart.CartItems[0].Quantity)
}

func TestUpdateItemQuantity(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, testDeliveryConfig)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	userID := uuid.New()
	_, err := svc.AddItem(c, userID, request.AddCartItem{
		ProductID: "burger",
		Name:      "Бургер",
		Price:     decimal.NewFromInt(350),
	})
	require.NoError(t, err)

	cart, err := svc.UpdateItemQuantity(c, userID, "burger", 3)
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	assert.EqualValues(t, 3, cart.CartItems[0].Quantity)

	_, err = svc.UpdateItemQuantity(c, userID, "burger", 4)
	capErr := inErrors.CapExceededError{}
	require.ErrorAs(t, err, &capErr)

	cart, err = svc.UpdateItemQuantity(c, userID, "burger", 0)
	require.NoError(t, err)
	assert.Empty(t, cart.CartItems, "zero quantity should remove the line")
}

func TestRemoveItemAndCart(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, testDeliveryConfig)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	userID := uuid.New()
	_, err := svc.AddItem(c, userID, request.AddCartItem{
		ProductID: "burger",
		Name:      "Бургер",
		Price:     decimal.NewFromInt(350),
	})
	require.NoError(t, err)

	cart, err := svc.RemoveItem(c, userID, "burger")
	require.NoError(t, err)
	assert.Empty(t, cart.CartItems)

	cart, err = svc.RemoveItem(c, userID, "burger")
	require.NoError(t, err, "removing an absent item is a no-op")
	assert.Empty(t, cart.CartItems)

	require.NoError(t, svc.RemoveCart(c, userID))
	found, err := svc.FindCartByUserId(c, userID)
	require.NoError(t, err)
	assert.Empty(t, found.CartItems)
}

func TestCheckoutEmptyCart(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, testDeliveryConfig)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := svc.CheckoutCart(c, uuid.New(), request.Checkout{})
	assert.ErrorIs(t, err, inErrors.ErrNoItemsCheckout)
}
