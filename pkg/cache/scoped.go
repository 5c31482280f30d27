package cache

import "strings"

// WithScope returns a keyer whose keys all live under scope, so
// deployments sharing one Redis never read each other's layouts:
//
//	keyer := cache.WithScope(cache.NewDefaultKeyer(), "staging")
//	keyer.LayoutKey(h, opts) // "staging:layout:v1:<sha256>"
//
// A missing trailing colon is added. An empty scope returns inner as is,
// and a nil inner means the default keyer.
func WithScope(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if scope == "" {
		return inner
	}
	if !strings.HasSuffix(scope, ":") {
		scope += ":"
	}
	return scopedKeyer{inner: inner, prefix: scope}
}

type scopedKeyer struct {
	inner  Keyer
	prefix string
}

func (k scopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

func (k scopedKeyer) DiscretiseKey(graphHash string, opts DiscretiseKeyOpts) string {
	return k.prefix + k.inner.DiscretiseKey(graphHash, opts)
}

func (k scopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
