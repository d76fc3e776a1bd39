package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const findLatestDeliverySettings = `-- name: FindLatestDeliverySettings :one
select id,
       base_delivery_cost,
       free_delivery_threshold,
       delivery_zones,
       delivery_time_min,
       delivery_time_max,
       is_delivery_available,
       delivery_working_hours,
       max_products_per_order,
       created_at,
       updated_at
from delivery_settings
order by created_at desc
limit 1
`

func (q *Queries) FindLatestDeliverySettings(ctx context.Context) (DeliverySetting, error) {
	row := q.db.QueryRow(ctx, findLatestDeliverySettings)
	var i DeliverySetting
	err := row.Scan(
		&i.ID,
		&i.BaseDeliveryCost,
		&i.FreeDeliveryThreshold,
		&i.DeliveryZones,
		&i.DeliveryTimeMin,
		&i.DeliveryTimeMax,
		&i.IsDeliveryAvailable,
		&i.DeliveryWorkingHours,
		&i.MaxProductsPerOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertDeliverySettings = `-- name: InsertDeliverySettings :one
insert into delivery_settings (base_delivery_cost,
                               free_delivery_threshold,
                               delivery_zones,
                               delivery_time_min,
                               delivery_time_max,
                               is_delivery_available,
                               delivery_working_hours,
                               max_products_per_order)
values ($1, $2, $3, $4, $5, $6, $7, $8)
returning id, base_delivery_cost, free_delivery_threshold, delivery_zones, delivery_time_min, delivery_time_max, is_delivery_available, delivery_working_hours, max_products_per_order, created_at, updated_at
`

type InsertDeliverySettingsParams struct {
	BaseDeliveryCost      pgtype.Numeric
	FreeDeliveryThreshold pgtype.Numeric
	DeliveryZones         []byte
	DeliveryTimeMin       int32
	DeliveryTimeMax       int32
	IsDeliveryAvailable   bool
	DeliveryWorkingHours  []byte
	MaxProductsPerOrder   int32
}

func (q *Queries) InsertDeliverySettings(
	ctx context.Context,
	arg InsertDeliverySettingsParams,
) (DeliverySetting, error) {
	row := q.db.QueryRow(ctx, insertDeliverySettings,
		arg.BaseDeliveryCost,
		arg.FreeDeliveryThreshold,
		arg.DeliveryZones,
		arg.DeliveryTimeMin,
		arg.DeliveryTimeMax,
		arg.IsDeliveryAvailable,
		arg.DeliveryWorkingHours,
		arg.MaxProductsPerOrder,
	)
	var i DeliverySetting
	err := row.Scan(
		&i.ID,
		&i.BaseDeliveryCost,
		&i.FreeDeliveryThreshold,
		&i.DeliveryZones,
		&i.DeliveryTimeMin,
		&i.DeliveryTimeMax,
		&i.IsDeliveryAvailable,
		&i.DeliveryWorkingHours,
		&i.MaxProductsPerOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateDeliverySettings = `-- name: UpdateDeliverySettings :one
update delivery_settings
set base_delivery_cost      = $2,
    free_delivery_threshold = $3,
    delivery_zones          = $4,
    delivery_time_min       = $5,
    delivery_time_max       = $6,
    is_delivery_available   = $7,
    delivery_working_hours  = $8,
    max_products_per_order  = $9,
    updated_at              = now()
where id = $1
returning id, base_delivery_cost, free_delivery_threshold, delivery_zones, delivery_time_min, delivery_time_max, is_delivery_available, delivery_working_hours, max_products_per_order, created_at, updated_at
`

type UpdateDeliverySettingsParams struct {
	ID                    uuid.UUID
	BaseDeliveryCost      pgtype.Numeric
	FreeDeliveryThreshold pgtype.Numeric
	DeliveryZones         []byte
	DeliveryTimeMin       int32
	DeliveryTimeMax       int32
	IsDeliveryAvailable   bool
	DeliveryWorkingHours  []byte
	MaxProductsPerOrder   int32
}

func (q *Queries) UpdateDeliverySettings(
	ctx context.Context,
	arg UpdateDeliverySettingsParams,
) (DeliverySetting, error) {
	row := q.db.QueryRow(ctx, updateDeliverySettings,
		arg.ID,
		arg.BaseDeliveryCost,
		arg.FreeDeliveryThreshold,
		arg.DeliveryZones,
		arg.DeliveryTimeMin,
		arg.DeliveryTimeMax,
		arg.IsDeliveryAvailable,
		arg.DeliveryWorkingHours,
		arg.MaxProductsPerOrder,
	)
	var i DeliverySetting
	err := row.Scan(
		&i.ID,
		&i.BaseDeliveryCost,
		&i.FreeDeliveryThreshold,
		&i.DeliveryZones,
		&i.DeliveryTimeMin,
		&i.DeliveryTimeMax,
		&i.IsDeliveryAvailable,
		&i.DeliveryWorkingHours,
		&i.MaxProductsPerOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateDeliveryZones = `-- name: UpdateDeliveryZones :one
update delivery_settings
set delivery_zones = $2,
    updated_at     = now()
where id = $1
returning id, base_delivery_cost, free_delivery_threshold, delivery_zones, delivery_time_min, delivery_time_max, is_delivery_available, delivery_working_hours, max_products_per_order, created_at, updated_at
`

type UpdateDeliveryZonesParams struct {
	ID            uuid.UUID
	DeliveryZones []byte
}

func (q *Queries) UpdateDeliveryZones(
	ctx context.Context,
	arg UpdateDeliveryZonesParams,
) (DeliverySetting, error) {
	row := q.db.QueryRow(ctx, updateDeliveryZones, arg.ID, arg.DeliveryZones)
	var i DeliverySetting
	err := row.Scan(
		&i.ID,
		&i.BaseDeliveryCost,
		&i.FreeDeliveryThreshold,
		&i.DeliveryZones,
		&i.DeliveryTimeMin,
		&i.DeliveryTimeMax,
		&i.IsDeliveryAvailable,
		&i.DeliveryWorkingHours,
		&i.MaxProductsPerOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateDeliveryWorkingHours = `-- name: UpdateDeliveryWorkingHours :one
update delivery_settings
set delivery_working_hours = $2,
    updated_at             = now()
where id = $1
returning id, base_delivery_cost, free_delivery_threshold, delivery_zones, delivery_time_min, delivery_time_max, is_delivery_available, delivery_working_hours, max_products_per_order, created_at, updated_at
`

type UpdateDeliveryWorkingHoursParams struct {
	ID                   uuid.UUID
	DeliveryWorkingHours []byte
}

func (q *Queries) UpdateDeliveryWorkingHours(
	ctx context.Context,
	arg UpdateDeliveryWorkingHoursParams,
) (DeliverySetting, error) {
	row := q.db.QueryRow(ctx, updateDeliveryWorkingHours, arg.ID, arg.DeliveryWorkingHours)
	var i DeliverySetting
	err := row.Scan(
		&i.ID,
		&i.BaseDeliveryCost,
		&i.FreeDeliveryThreshold,
		&i.DeliveryZones,
		&i.DeliveryTimeMin,
		&i.DeliveryTimeMax,
		&i.IsDeliveryAvailable,
		&i.DeliveryWorkingHours,
		&i.MaxProductsPerOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
