package pool

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Registry hands out shared pools by name. A pool is created on first
// request and shut down once it has not been requested for the idle
// timeout, so occasional users do not keep workers alive forever.
type Registry struct {
	mu    sync.Mutex
	pools *ttlcache.Cache[string, *Pool]
	opts  []Option
}

// NewRegistry creates a registry whose pools are shut down after
// idleTimeout without a Get. The given options are applied to every
// pool the registry creates, in addition to the pool's name.
func NewRegistry(idleTimeout time.Duration, opts ...Option) *Registry {
	c := ttlcache.New(
		ttlcache.WithTTL[string, *Pool](idleTimeout),
	)

	c.OnEviction(func(ctx context.Context, er ttlcache.EvictionReason, i *ttlcache.Item[string, *Pool]) {
		i.Value().Shutdown()
	})

	return &Registry{
		pools: c,
		opts:  opts,
	}
}

// Get returns the pool registered under name, creating and starting it
// if there is none. Requesting a pool resets its idle timer.
func (r *Registry) Get(name string) *Pool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.pools.Get(name)
	if e != nil {
		return e.Value()
	}

	opts := make([]Option, 0, len(r.opts)+1)
	opts = append(opts, r.opts...)
	opts = append(opts, WithName(name))

	p := New(opts...)
	r.pools.Set(name, p, ttlcache.DefaultTTL)

	return p
}

// StartEviction runs the idle eviction loop until ctx is canceled.
// Without it pools are only evicted when the registry shuts down.
func (r *Registry) StartEviction(ctx context.Context) {
	go r.pools.Start()

	<-ctx.Done()

	r.pools.Stop()
}

// Shutdown evicts every registered pool, shutting each one down and
// waiting for its accepted tasks.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pools.DeleteAll()
}
