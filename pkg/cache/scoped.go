package cache

// ScopedKeyer wraps a Keyer with a prefix, so several boards or tenants can
// share one Redis instance without key collisions.
//
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "team:hel:")
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

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// BoardKey generates a prefixed key for fetched boards.
func (k *ScopedKeyer) BoardKey(project, pi string) string {
	return k.prefix + k.inner.BoardKey(project, pi)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(boardHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(boardHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
