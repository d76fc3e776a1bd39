package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testZones() map[string]Zone {
	return map[string]Zone{
		"zone_1": {
			Name:                  "Центр",
			Cost:                  decimal.NewFromInt(150),
			FreeDeliveryThreshold: decimal.NewFromInt(2000),
			DeliveryTime:          "30-45 мин",
		},
		"zone_2": {
			Name:                  "Заречный район",
			Cost:                  decimal.NewFromInt(250),
			FreeDeliveryThreshold: decimal.NewFromInt(3000),
			DeliveryTime:          "45-60 мин",
		},
		"zone_3": {
			Name: "Промзона",
			Cost: decimal.NewFromInt(400),
		},
	}
}

func testDefaults() Defaults {
	return Defaults{
		BaseCost:              decimal.NewFromInt(200),
		FreeDeliveryThreshold: decimal.NewFromInt(2000),
		TimeMinMinutes:        30,
		TimeMaxMinutes:        60,
	}
}

func TestResolveExplicitZone(t *testing.T) {
	tests := []struct {
		name         string
		subtotal     decimal.Decimal
		zoneID       string
		expectedCost decimal.Decimal
		expectedFree bool
		expectedTime string
	}{
		{
			name:         "given subtotal below threshold should charge zone cost",
			subtotal:     decimal.NewFromInt(1999),
			zoneID:       "zone_1",
			expectedCost: decimal.NewFromInt(150),
			expectedFree: false,
			expectedTime: "30-45 мин",
		},
		{
			name:         "given subtotal at threshold should be free",
			subtotal:     decimal.NewFromInt(2000),
			zoneID:       "zone_1",
			expectedCost: decimal.Zero,
			expectedFree: true,
			expectedTime: "30-45 мин",
		},
		{
			name:         "given subtotal above threshold should be free",
			subtotal:     decimal.NewFromInt(5000),
			zoneID:       "zone_1",
			expectedCost: decimal.Zero,
			expectedFree: true,
			expectedTime: "30-45 мин",
		},
		{
			name:         "given zone with zero threshold should never be free",
			subtotal:     decimal.NewFromInt(100000),
			zoneID:       "zone_3",
			expectedCost: decimal.NewFromInt(400),
			expectedFree: false,
			expectedTime: "30-60 мин",
		},
	}

	resolver := NewResolver(testZones(), testDefaults())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := resolver.Resolve(tt.subtotal, tt.zoneID, "")
			assert.Equal(t, tt.zoneID, quote.ZoneID)
			assert.True(
				t,
				tt.expectedCost.Equal(quote.Cost),
				"expected cost %s got %s", tt.expectedCost, quote.Cost,
			)
			assert.Equal(t, tt.expectedFree, quote.IsFree)
			assert.Equal(t, tt.expectedTime, quote.DeliveryTime)
		})
	}
}

func TestResolveUnknownExplicitZoneFallsBackToDefaults(t *testing.T) {
	resolver := NewResolver(testZones(), testDefaults())

	quote := resolver.Resolve(decimal.NewFromInt(500), "zone_99", "")

	assert.Empty(t, quote.ZoneID)
	assert.True(t, decimal.NewFromInt(200).Equal(quote.Cost))
	assert.False(t, quote.IsFree)
	assert.Equal(t, "30-60 мин", quote.DeliveryTime)
}

func TestResolveNoZonesUsesGlobalDefaults(t *testing.T) {
	defaults := Defaults{
		BaseCost:              decimal.NewFromInt(200),
		FreeDeliveryThreshold: decimal.Zero,
		TimeMinMinutes:        30,
		TimeMaxMinutes:        60,
	}
	resolver := NewResolver(nil, defaults)

	for _, subtotal := range []int64{0, 100, 2000, 1000000} {
		quote := resolver.Resolve(decimal.NewFromInt(subtotal), "", "ул. Ленина 1")
		assert.Empty(t, quote.ZoneID)
		assert.True(t, decimal.NewFromInt(200).Equal(quote.Cost))
		assert.False(t, quote.IsFree, "zero threshold disables free delivery")
		assert.Nil(t, quote.FreeDeliveryThreshold)
	}
}

func TestResolveNegativeCostClampsToZero(t *testing.T) {
	zones := map[string]Zone{
		"zone_1": {Name: "Центр", Cost: decimal.NewFromInt(-50)},
	}
	resolver := NewResolver(zones, testDefaults())

	quote := resolver.Resolve(decimal.NewFromInt(100), "zone_1", "")

	assert.True(t, quote.Cost.IsZero())
	assert.False(t, quote.IsFree)
}

func TestResolveFreeDeliveryMonotonicity(t *testing.T) {
	resolver := NewResolver(testZones(), testDefaults())

	threshold := int64(2000)
	previousFree := false
	for subtotal := int64(0); subtotal <= 4000; subtotal += 50 {
		quote := resolver.Resolve(decimal.NewFromInt(subtotal), "zone_1", "")
		if subtotal >= threshold {
			assert.True(t, quote.IsFree, "subtotal=%d must be free", subtotal)
		} else {
			assert.False(t, quote.IsFree, "subtotal=%d must not be free", subtotal)
		}
		if previousFree {
			assert.True(t, quote.IsFree, "free delivery must not flip back off")
		}
		previousFree = quote.IsFree
	}
}

func TestMatchAddress(t *testing.T) {
	tests := []struct {
		name          string
		address       string
		expectedID    string
		expectedMatch bool
	}{
		{
			name:          "given address containing zone name should match",
			address:       "г. Москва, Центр, ул. Тверская 4",
			expectedID:    "zone_1",
			expectedMatch: true,
		},
		{
			name:          "given address with different case and punctuation should match",
			address:       "ЗАРЕЧНЫЙ РАЙОН, д.7",
			expectedID:    "zone_2",
			expectedMatch: true,
		},
		{
			name:          "given address matching nothing should not match",
			address:       "пос. Дальний, ул. Лесная 2",
			expectedMatch: false,
		},
		{
			name:          "given empty address should not match",
			address:       "",
			expectedMatch: false,
		},
	}

	resolver := NewResolver(testZones(), testDefaults())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := resolver.MatchAddress(tt.address)
			assert.Equal(t, tt.expectedMatch, ok)
			assert.Equal(t, tt.expectedID, id)
		})
	}
}

func TestMatchAddressPrefersLongestZoneName(t *testing.T) {
	zones := map[string]Zone{
		"zone_1": {Name: "Заречный", Cost: decimal.NewFromInt(100)},
		"zone_2": {Name: "Заречный район", Cost: decimal.NewFromInt(300)},
	}
	resolver := NewResolver(zones, testDefaults())

	id, ok := resolver.MatchAddress("Заречный район, ул. Мира 15")

	assert.True(t, ok)
	assert.Equal(t, "zone_2", id)
}

func TestResolveUnmatchedAddressFallsBackToCheapestZone(t *testing.T) {
	resolver := NewResolver(testZones(), testDefaults())

	quote := resolver.Resolve(decimal.NewFromInt(100), "", "пос. Дальний")

	assert.Equal(t, "zone_1", quote.ZoneID)
	assert.True(t, decimal.NewFromInt(150).Equal(quote.Cost))
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Улица   Ленина,  д. 5 ", "улица ленина д 5"},
		{"Ёлочная улица", "елочная улица"},
		{"Main St. 42", "main st 42"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeAddress(tt.input))
	}
}
