package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edaexpress/fooddelivery/delivery/pkg/pricing"
)

type DeliverySettings struct {
	ID                    uuid.UUID               `json:"id"`
	BaseDeliveryCost      decimal.Decimal         `json:"base_delivery_cost"`
	FreeDeliveryThreshold decimal.Decimal         `json:"free_delivery_threshold"`
	DeliveryZones         map[string]pricing.Zone `json:"delivery_zones"`
	DeliveryTimeMin       int32                   `json:"delivery_time_min"`
	DeliveryTimeMax       int32                   `json:"delivery_time_max"`
	IsDeliveryAvailable   bool                    `json:"is_delivery_available"`
	DeliveryWorkingHours  *pricing.WeeklySchedule `json:"delivery_working_hours"`
	MaxProductsPerOrder   int32                   `json:"max_products_per_order"`
	CreatedAt             time.Time               `json:"created_at"`
	UpdatedAt             time.Time               `json:"updated_at"`
}

type Zones struct {
	Zones map[string]pricing.Zone `json:"zones"`
}

type Availability struct {
	IsAvailable bool                    `json:"is_available"`
	Zones       map[string]pricing.Zone `json:"zones"`
	NextOpening *pricing.NextOpening    `json:"next_opening,omitempty"`
}

type WorkingHours struct {
	Message      string                 `json:"message,omitempty"`
	WorkingHours pricing.WeeklySchedule `json:"working_hours"`
}
