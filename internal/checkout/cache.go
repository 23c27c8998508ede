package checkout

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-retail-store/internal/redisx"
	"github.com/ariefcatur/go-retail-store/internal/store"
)

const defaultCacheSize = 1024

// remember keeps r in the bounded in-process cache and, when configured, in
// Redis together with the idempotency key.
func (s *Service) remember(ctx context.Context, r *store.Receipt, externalID string) {
	s.mu.Lock()
	if s.recent == nil {
		s.recent = make(map[string]*store.Receipt)
		s.byExternal = make(map[string]string)
	}
	size := s.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	for len(s.order) >= size {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.recent, oldest)
		for ext, id := range s.byExternal {
			if id == oldest {
				delete(s.byExternal, ext)
			}
		}
	}
	s.recent[r.ID] = r
	s.order = append(s.order, r.ID)
	if externalID != "" {
		s.byExternal[externalID] = r.ID
	}
	s.mu.Unlock()

	if s.Redis == nil {
		return
	}
	if err := redisx.SetJSON(ctx, s.Redis, fmt.Sprintf(redisx.KeyReceipt, r.ID), r, redisx.TTLReceipt); err != nil {
		s.logger().WithError(err).Warn("cache receipt")
	}
	if externalID != "" {
		if err := s.Redis.Set(ctx, fmt.Sprintf(redisx.KeyIdemOrder, externalID), r.ID, redisx.TTLIdempotency).Err(); err != nil {
			s.logger().WithError(err).Warn("set idempotency key")
		}
	}
}
