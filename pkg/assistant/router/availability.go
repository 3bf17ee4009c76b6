package router

import (
	"context"
	"time"

	"github.com/auroradesk/aurora/pkg/assistant/adapters"
)

// ProbeCache memoizes availability probe results so a burst of requests
// doesn't hammer every backend with reachability checks. Implementations
// decide the TTL; a nil cache means every selection probes directly.
type ProbeCache interface {
	Get(name string) (available bool, found bool)
	Set(name string, available bool)
}

// available runs the adapter's reachability probe under a short timeout,
// consulting the cache first when one is configured.
func (m *Mux) available(ctx context.Context, a adapters.ContractAdapter) bool {
	name := a.Descriptor().Name
	if m.cache != nil {
		if v, ok := m.cache.Get(name); ok {
			return v
		}
	}

	timeout := m.cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ok := a.IsAvailable(pctx)
	if m.cache != nil {
		m.cache.Set(name, ok)
	}
	return ok
}
