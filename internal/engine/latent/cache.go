package latent

import "sync/atomic"

// Cache holds the active model snapshot behind an atomic pointer. Readers
// always observe either the full old model or the full new one; the swap is
// a single pointer store.
type Cache struct {
	ptr     atomic.Pointer[Model]
	version atomic.Int64
}

// Load returns the active model, or nil when no model has been built yet.
func (c *Cache) Load() *Model {
	return c.ptr.Load()
}

// Store publishes a freshly built model, stamping it with the next version.
// The model must not be mutated after Store.
func (c *Cache) Store(m *Model) {
	m.Version = c.version.Add(1)
	c.ptr.Store(m)
}
