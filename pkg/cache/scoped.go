package cache

// ScopedKeyer wraps a Keyer with a prefix so that several projects can
// share one Redis instance without reading each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "lab-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) BandsKey(opts BandsKeyOpts) string {
	return k.prefix + k.inner.BandsKey(opts)
}

func (k *ScopedKeyer) ButterflyKey(opts ButterflyKeyOpts) string {
	return k.prefix + k.inner.ButterflyKey(opts)
}

func (k *ScopedKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(resultHash, opts)
}
