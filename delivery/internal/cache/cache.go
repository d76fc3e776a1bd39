package cache

import "time"

const (
	KeyZones    = "delivery:zones"
	KeySettings = "delivery:settings"

	TTL = 1 * time.Hour
)
