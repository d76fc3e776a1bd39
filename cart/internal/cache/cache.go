package cache

import "time"

const (
	KeyCartsByUserID = "carts:user:%s"

	TTL = 1 * time.Hour
)
