package redisx

import "time"

const (
	// Idempotency for POST /orders: idem:order:{external_id} -> receipt id
	KeyIdemOrder = "idem:order:%s"

	// Receipt cache: receipt:{receipt_id} -> receipt JSON
	KeyReceipt = "receipt:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Order in flight across processes: lock:order:{external_id}
	KeyOrderLock = "lock:order:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLReceipt     = 30 * time.Minute
	TTLDedup       = 48 * time.Hour
	TTLOrderLock   = 30 * time.Second
)
