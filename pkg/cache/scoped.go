package cache

// ScopedKeyer wraps a Keyer with a prefix so separate namespaces never share
// entries. The CLI scopes keys by build version, which invalidates every
// cached view when the parsers or generators change.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v0.3.1:")
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

// ASTKey generates a prefixed key for parsed trees.
func (k *ScopedKeyer) ASTKey(format, sourceHash string) string {
	return k.prefix + k.inner.ASTKey(format, sourceHash)
}

// ViewKey generates a prefixed key for generated views.
func (k *ScopedKeyer) ViewKey(astHash string, opts ViewKeyOpts) string {
	return k.prefix + k.inner.ViewKey(astHash, opts)
}
