package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Resolver computes delivery quotes from a read-only zone table and the
// global defaults. It never fails: missing or malformed zone data degrades
// to the defaults.
type Resolver struct {
	zones    map[string]Zone
	defaults Defaults
}

func NewResolver(zones map[string]Zone, defaults Defaults) Resolver {
	return Resolver{zones: zones, defaults: defaults}
}

// Resolve produces a quote for the given subtotal. An explicit zone id wins
// over address matching; an unknown explicit id degrades to "no zone"
// rather than failing.
func (r Resolver) Resolve(subtotal decimal.Decimal, explicitZoneID, address string) Quote {
	zoneID, zone := r.selectZone(explicitZoneID, address)

	threshold := r.defaults.FreeDeliveryThreshold
	cost := r.defaults.BaseCost
	label := r.defaults.TimeLabel()
	if zone != nil {
		threshold = zone.FreeDeliveryThreshold
		cost = zone.Cost
		if zone.DeliveryTime != "" {
			label = zone.DeliveryTime
		}
	}

	// A negative configured cost is a configuration error, not a runtime
	// error. Clamp instead of propagating.
	if cost.IsNegative() {
		cost = decimal.Zero
	}

	// Threshold of zero disables free delivery entirely.
	isFree := threshold.IsPositive() && subtotal.GreaterThanOrEqual(threshold)
	if isFree {
		cost = decimal.Zero
	}

	quote := Quote{
		ZoneID:       zoneID,
		Cost:         cost,
		IsFree:       isFree,
		DeliveryTime: label,
	}
	if threshold.IsPositive() {
		t := threshold
		quote.FreeDeliveryThreshold = &t
	}
	return quote
}

func (r Resolver) selectZone(explicitZoneID, address string) (string, *Zone) {
	if explicitZoneID != "" {
		if zone, ok := r.zones[explicitZoneID]; ok {
			return explicitZoneID, &zone
		}
		return "", nil
	}
	if len(r.zones) == 0 {
		return "", nil
	}
	if id, ok := r.MatchAddress(address); ok {
		zone := r.zones[id]
		return id, &zone
	}
	if id, ok := r.cheapestZone(); ok {
		zone := r.zones[id]
		return id, &zone
	}
	return "", nil
}

// MatchAddress finds the zone whose name occurs in the address. Both sides
// are normalized before comparison; when several zone names occur, the
// longest normalized name wins.
func (r Resolver) MatchAddress(address string) (string, bool) {
	normalized := NormalizeAddress(address)
	if normalized == "" {
		return "", false
	}

	bestID := ""
	bestScore := 0
	for id, zone := range r.zones {
		name := NormalizeAddress(zone.Name)
		if name == "" {
			continue
		}
		if !strings.Contains(normalized, name) {
			continue
		}
		score := len(name)
		if score > bestScore || (score == bestScore && id < bestID) {
			bestScore = score
			bestID = id
		}
	}
	return bestID, bestID != ""
}

// cheapestZone is the fallback when nothing in the table matches the
// address: the zone with the lowest cost, ties broken by zone id so the
// result does not depend on map iteration order.
func (r Resolver) cheapestZone() (string, bool) {
	cheapestID := ""
	var cheapestCost decimal.Decimal
	for id, zone := range r.zones {
		if cheapestID == "" ||
			zone.Cost.LessThan(cheapestCost) ||
			(zone.Cost.Equal(cheapestCost) && id < cheapestID) {
			cheapestID = id
			cheapestCost = zone.Cost
		}
	}
	return cheapestID, cheapestID != ""
}

// NormalizeAddress lowercases, folds ё into е, replaces everything outside
// cyrillic/latin letters and digits with spaces, and collapses whitespace.
func NormalizeAddress(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == 'ё' {
			r = 'е'
		}
		if (r >= 'a' && r <= 'z') || (r >= 'а' && r <= 'я') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
