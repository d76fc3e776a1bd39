package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type CartItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID string
	Name      string
	Price     pgtype.Numeric
	Quantity  int32
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type DeliverySetting struct {
	ID                    uuid.UUID
	BaseDeliveryCost      pgtype.Numeric
	FreeDeliveryThreshold pgtype.Numeric
	DeliveryZones         []byte
	DeliveryTimeMin       int32
	DeliveryTimeMax       int32
	IsDeliveryAvailable   bool
	DeliveryWorkingHours  []byte
	MaxProductsPerOrder   int32
	CreatedAt             pgtype.Timestamptz
	UpdatedAt             pgtype.Timestamptz
}
