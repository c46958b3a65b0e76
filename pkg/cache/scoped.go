package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The API server scopes keys per user so one user's cached extractions are
// never served to another.
//
// Example usage:
//
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:usr_123456:")
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

// ExtractKey generates a prefixed extraction key.
func (k *ScopedKeyer) ExtractKey(model, text string) string {
	return k.prefix + k.inner.ExtractKey(model, text)
}

// BioKey generates a prefixed biography key.
func (k *ScopedKeyer) BioKey(model string, opts BioKeyOpts) string {
	return k.prefix + k.inner.BioKey(model, opts)
}
