package repository

import (
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	cartResponse "github.com/edaexpress/fooddelivery/cart/pkg/response"
	"github.com/edaexpress/fooddelivery/delivery/pkg/pricing"
	deliveryResponse "github.com/edaexpress/fooddelivery/delivery/pkg/response"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func (d DeliverySetting) Zones() (map[string]pricing.Zone, error) {
	if len(d.DeliveryZones) == 0 {
		return map[string]pricing.Zone{}, nil
	}
	zones := map[string]pricing.Zone{}
	if err := json.Unmarshal(d.DeliveryZones, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (d DeliverySetting) Schedule() (*pricing.WeeklySchedule, error) {
	if len(d.DeliveryWorkingHours) == 0 {
		return nil, nil
	}
	schedule := pricing.WeeklySchedule{}
	if err := json.Unmarshal(d.DeliveryWorkingHours, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (d DeliverySetting) Response() (deliveryResponse.DeliverySettings, error) {
	zones, err := d.Zones()
	if err != nil {
		return deliveryResponse.DeliverySettings{}, err
	}
	schedule, err := d.Schedule()
	if err != nil {
		return deliveryResponse.DeliverySettings{}, err
	}
	return deliveryResponse.DeliverySettings{
		ID:                    d.ID,
		BaseDeliveryCost:      DecimalFromNumeric(d.BaseDeliveryCost),
		FreeDeliveryThreshold: DecimalFromNumeric(d.FreeDeliveryThreshold),
		DeliveryZones:         zones,
		DeliveryTimeMin:       d.DeliveryTimeMin,
		DeliveryTimeMax:       d.DeliveryTimeMax,
		IsDeliveryAvailable:   d.IsDeliveryAvailable,
		DeliveryWorkingHours:  schedule,
		MaxProductsPerOrder:   d.MaxProductsPerOrder,
		CreatedAt:             d.CreatedAt.Time,
		UpdatedAt:             d.UpdatedAt.Time,
	}, nil
}

func (f FindCartByUserIdRow) Response() (cartResponse.Cart, error) {
	cartItems := []cartResponse.CartItem{}
	if err := json.Unmarshal(f.CartItems, &cartItems); err != nil {
		return cartResponse.Cart{}, err
	}
	subtotal := decimal.Zero
	for _, item := range cartItems {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	return cartResponse.Cart{
		ID:        f.ID,
		UserID:    f.UserID,
		CartItems: cartItems,
		Subtotal:  subtotal,
		CreatedAt: f.CreatedAt.Time,
		UpdatedAt: f.UpdatedAt.Time,
	}, nil
}
