package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This keeps cached layouts and route plans separate when several users
// or editing sessions share one cache backend.
//
// Example usage:
//
//	// Session-specific keys
//	sessionKeyer := NewScopedKeyer(NewDefaultKeyer(), "session:planning:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DiagramKey generates a prefixed key for serialized diagram snapshots.
func (k *ScopedKeyer) DiagramKey(namespace, name string) string {
	return k.prefix + k.inner.DiagramKey(namespace, name)
}

// LayoutKey generates a prefixed key for layout results.
func (k *ScopedKeyer) LayoutKey(structureHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(structureHash, opts)
}

// RouteKey generates a prefixed key for route plans.
func (k *ScopedKeyer) RouteKey(geometryHash string, opts RouteKeyOpts) string {
	return k.prefix + k.inner.RouteKey(geometryHash, opts)
}
