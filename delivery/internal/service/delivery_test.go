package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edaexpress/fooddelivery/delivery/pkg/pricing"
	"github.com/edaexpress/fooddelivery/delivery/pkg/request"
	inErrors "github.com/edaexpress/fooddelivery/internal/errors"
)

var seedPath = filepath.Join("seed", "settings.seed.sql")

func TestCalculateCostWithSeededZones(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, seedPath)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	tests := []struct {
		name         string
		orderAmount  decimal.Decimal
		deliveryZone string
		expectedCost decimal.Decimal
		expectedFree bool
	}{
		{
			name:         "given subtotal below zone threshold should charge zone cost",
			orderAmount:  decimal.NewFromInt(1000),
			deliveryZone: "zone_2",
			expectedCost: decimal.NewFromInt(250),
			expectedFree: false,
		},
		{
			name:         "given subtotal at zone threshold should be free",
			orderAmount:  decimal.NewFromInt(3000),
			deliveryZone: "zone_2",
			expectedCost: decimal.Zero,
			expectedFree: true,
		},
		{
			name:         "given no zone should fall back to cheapest zone",
			orderAmount:  decimal.NewFromInt(500),
			deliveryZone: "",
			expectedCost: decimal.NewFromInt(150),
			expectedFree: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := svc.CalculateCost(c, request.CalculateCost{
				OrderAmount:  tt.orderAmount,
				DeliveryZone: tt.deliveryZone,
			})
			require.NoError(t, err)
			assert.True(
				t,
				quote.Cost.Equal(tt.expectedCost),
				"expected cost %s got %s",
				tt.expectedCost,
				quote.Cost,
			)
			assert.Equal(t, tt.expectedFree, quote.IsFree)
		})
	}
}

func TestCalculateCostWithoutSettingsIsUnavailable(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	quote, err := svc.CalculateCost(c, request.CalculateCost{
		OrderAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	assert.True(t, quote.Cost.IsZero())
	assert.True(t, quote.IsFree)
	assert.Equal(t, "Доставка недоступна", quote.DeliveryTime)
}

func TestCheckAvailabilityWithSeededSchedule(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, seedPath)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	availability, err := svc.CheckAvailability(c, time.Now())
	require.NoError(t, err)
	assert.True(t, availability.IsAvailable)
	assert.Len(t, availability.Zones, 2)
	assert.Nil(t, availability.NextOpening)
}

func TestCheckAvailabilityWithoutSettings(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	availability, err := svc.CheckAvailability(c, time.Now())
	require.NoError(t, err)
	assert.False(t, availability.IsAvailable)
	assert.Empty(t, availability.Zones)
}

func TestCreateZoneAllocatesNextFreeId(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, seedPath)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	zoneID, zone, err := svc.CreateZone(c, request.CreateZone{
		Name:         "Промзона",
		Cost:         decimal.NewFromInt(400),
		DeliveryTime: "60-90 мин",
	})
	require.NoError(t, err)
	assert.Equal(t, "zone_3", zoneID)
	assert.Equal(t, "Промзона", zone.Name)

	require.NoError(t, svc.DeleteZone(c, "zone_1"))

	zoneID, _, err = svc.CreateZone(c, request.CreateZone{
		Name:         "Северный",
		Cost:         decimal.NewFromInt(300),
		DeliveryTime: "45-60 мин",
	})
	require.NoError(t, err)
	assert.Equal(t, "zone_1", zoneID, "ids of deleted zones should be reused")
}

func TestUpdateZone(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, seedPath)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	newCost := decimal.NewFromInt(500)
	zone, err := svc.UpdateZone(c, "zone_2", request.UpdateZone{Cost: &newCost})
	require.NoError(t, err)
	assert.True(t, zone.Cost.Equal(newCost))
	assert.Equal(t, "Заречный район", zone.Name, "untouched fields should survive")

	quote, err := svc.CalculateCost(c, request.CalculateCost{
		OrderAmount:  decimal.NewFromInt(1000),
		DeliveryZone: "zone_2",
	})
	require.NoError(t, err)
	assert.True(t, quote.Cost.Equal(newCost))
}

func TestUpdateZoneUnknownId(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, seedPath)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := svc.UpdateZone(c, "zone_99", request.UpdateZone{})
	assert.ErrorIs(t, err, inErrors.ErrZoneNotFound)

	err = svc.DeleteZone(c, "zone_99")
	assert.ErrorIs(t, err, inErrors.ErrZoneNotFound)
}

func TestZoneCacheIsInvalidatedOnWrites(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, seedPath)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	zones, err := svc.GetZones(c)
	require.NoError(t, err)
	require.Len(t, zones, 2)

	_, _, err = svc.CreateZone(c, request.CreateZone{
		Name:         "Промзона",
		Cost:         decimal.NewFromInt(400),
		DeliveryTime: "60-90 мин",
	})
	require.NoError(t, err)

	zones, err = svc.GetZones(c)
	require.NoError(t, err)
	assert.Len(t, zones, 3, "cache should not serve stale zones after a write")
}

func TestUpdateSettingsDoesNotBlankZones(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, seedPath)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	newBase := decimal.NewFromInt(200)
	settings, err := svc.UpdateSettings(c, request.UpdateDeliverySettings{
		BaseDeliveryCost: &newBase,
		DeliveryZones:    map[string]pricing.Zone{},
	})
	require.NoError(t, err)
	assert.True(t, settings.BaseDeliveryCost.Equal(newBase))
	assert.Len(t, settings.DeliveryZones, 2, "an empty zone map should not blank stored zones")
}

func TestUpdateSettingsCreatesRowFromDefaults(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	available := false
	settings, err := svc.UpdateSettings(c, request.UpdateDeliverySettings{
		IsDeliveryAvailable: &available,
	})
	require.NoError(t, err)
	assert.False(t, settings.IsDeliveryAvailable)
	assert.True(t, settings.BaseDeliveryCost.Equal(decimal.NewFromInt(150)))
	assert.EqualValues(t, 50, settings.MaxProductsPerOrder)

	quote, err := svc.CalculateCost(c, request.CalculateCost{
		OrderAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Доставка недоступна", quote.DeliveryTime)
}

func TestGetWorkingHours(t *testing.T) {
	c := context.Background()
	redisClient, pool, pgContainer, redisContainer, _, svc := setup(t)(c, seedPath)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	schedule, err := svc.GetWorkingHours(c)
	require.NoError(t, err)
	assert.True(t, schedule.Is24x7)

	updated, err := svc.UpdateWorkingHours(c, pricing.WeeklySchedule{
		Is24x7: false,
		Days: map[string]pricing.DayHours{
			"monday": {Enabled: true, Start: "09:00", End: "22:00"},
		},
	})
	require.NoError(t, err)
	assert.False(t, updated.WorkingHours.Is24x7)

	schedule, err = svc.GetWorkingHours(c)
	require.NoError(t, err)
	assert.False(t, schedule.Is24x7)
	assert.Contains(t, schedule.Days, "monday")
}
