package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Zone is one administratively managed delivery area. Zones are stored as a
// JSON object keyed by zone id on the delivery settings row.
type Zone struct {
	Name                  string          `json:"name"`
	Cost                  decimal.Decimal `json:"cost"`
	MinOrderAmount        decimal.Decimal `json:"min_order_amount"`
	FreeDeliveryThreshold decimal.Decimal `json:"free_delivery_threshold"`
	DeliveryTime          string          `json:"delivery_time"`
	Radius                float64         `json:"radius,omitempty"`
}

// Defaults is the global pricing configuration applied when no zone is
// selected, or when a selected zone leaves a field unset.
type Defaults struct {
	BaseCost              decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	TimeMinMinutes        int
	TimeMaxMinutes        int
}

func (d Defaults) TimeLabel() string {
	return fmt.Sprintf("%d-%d мин", d.TimeMinMinutes, d.TimeMaxMinutes)
}

// Quote is the resolved delivery pricing for one subtotal at one point in
// time. It is recomputed on every resolution, never partially mutated.
type Quote struct {
	ZoneID                string           `json:"delivery_zone,omitempty"`
	Cost                  decimal.Decimal  `json:"delivery_cost"`
	IsFree                bool             `json:"is_free_delivery"`
	DeliveryTime          string           `json:"delivery_time"`
	FreeDeliveryThreshold *decimal.Decimal `json:"free_delivery_threshold,omitempty"`
}
