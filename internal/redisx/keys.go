package redisx

import "time"

const (
	// Cart hash per user: cart:{user_id} -> field product_id, value quantity.
	KeyCart = "cart:%s"

	// Cached order status: order_status:{order_id} -> {"status":"...","canCancel":bool}
	KeyOrderStatus = "order_status:%s"

	// Dedup for event consumers: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
