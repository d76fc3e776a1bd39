package request

import "github.com/shopspring/decimal"

type AddCartItem struct {
	ProductID string          `json:"id"    validate:"required"`
	Name      string          `json:"name"  validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"required"`
}

type UpdateCartItemQuantity struct {
	Quantity int32 `json:"quantity"`
}

type Checkout struct {
	DeliveryZone string `json:"delivery_zone" validate:"omitempty"`
	Address      string `json:"address"       validate:"omitempty"`
}
