package cache

import "strings"

// ScopedKeyer puts every key of an inner Keyer under "<scope>:", so several
// deployments can share one Redis without reading each other's layouts.
// An empty scope leaves keys unchanged.
type ScopedKeyer struct {
	inner Keyer
	scope string
}

// NewScopedKeyer scopes inner, or the default keyer when inner is nil. A
// trailing colon on scope is ignored.
func NewScopedKeyer(inner Keyer, scope string) *ScopedKeyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, scope: strings.TrimSuffix(scope, ":")}
}

func (k *ScopedKeyer) within(key string) string {
	if k.scope == "" {
		return key
	}
	return k.scope + ":" + key
}

func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.within(k.inner.LayoutKey(graphHash, opts))
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.within(k.inner.ArtifactKey(layoutHash, opts))
}

var _ Keyer = (*ScopedKeyer)(nil)
