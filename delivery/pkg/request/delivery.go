package request

import (
	"github.com/shopspring/decimal"

	"github.com/edaexpress/fooddelivery/delivery/pkg/pricing"
)

type CalculateCost struct {
	OrderAmount  decimal.Decimal `json:"order_amount"  validate:"required"`
	DeliveryZone string          `json:"delivery_zone" validate:"omitempty"`
	Address      string          `json:"address"       validate:"omitempty"`
}

type UpdateDeliverySettings struct {
	BaseDeliveryCost      *decimal.Decimal        `json:"base_delivery_cost"      validate:"omitempty"`
	FreeDeliveryThreshold *decimal.Decimal        `json:"free_delivery_threshold" validate:"omitempty"`
	DeliveryZones         map[string]pricing.Zone `json:"delivery_zones"          validate:"omitempty"`
	DeliveryTimeMin       *int32                  `json:"delivery_time_min"       validate:"omitempty,min=1"`
	DeliveryTimeMax       *int32                  `json:"delivery_time_max"       validate:"omitempty,min=1"`
	IsDeliveryAvailable   *bool                   `json:"is_delivery_available"   validate:"omitempty"`
	DeliveryWorkingHours  *pricing.WeeklySchedule `json:"delivery_working_hours"  validate:"omitempty"`
	MaxProductsPerOrder   *int32                  `json:"max_products_per_order"  validate:"omitempty,min=1"`
}

type CreateZone struct {
	Name                  string           `json:"name"                    validate:"required"`
	Cost                  decimal.Decimal  `json:"cost"                    validate:"required"`
	MinOrderAmount        *decimal.Decimal `json:"min_order_amount"        validate:"omitempty"`
	FreeDeliveryThreshold *decimal.Decimal `json:"free_delivery_threshold" validate:"omitempty"`
	DeliveryTime          string           `json:"delivery_time"           validate:"required"`
	Radius                *float64         `json:"radius"                  validate:"omitempty,min=0"`
}

type UpdateZone struct {
	Name                  *string          `json:"name"                    validate:"omitempty"`
	Cost                  *decimal.Decimal `json:"cost"                    validate:"omitempty"`
	MinOrderAmount        *decimal.Decimal `json:"min_order_amount"        validate:"omitempty"`
	FreeDeliveryThreshold *decimal.Decimal `json:"free_delivery_threshold" validate:"omitempty"`
	DeliveryTime          *string          `json:"delivery_time"           validate:"omitempty"`
	Radius                *float64         `json:"radius"                  validate:"omitempty,min=0"`
}
