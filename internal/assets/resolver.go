// Package assets resolves audio asset names to URLs and caches decoded
// buffers, deduplicating concurrent loads so each asset is fetched and
// decoded at most once at a time.
package assets

import (
	"net/url"
	"strings"

	"github.com/neurotoxic/gigaudio/internal/log"
)

// Source reports where a resolved URL came from.
type Source int

const (
	SourceNone Source = iota
	SourceBundled
	SourcePublic
)

func (s Source) String() string {
	switch s {
	case SourceBundled:
		return "bundled"
	case SourcePublic:
		return "public"
	default:
		return "none"
	}
}

// NormalizePath strips a leading "./" or "/" so lookups are stable no
// matter how the caller spells the asset path.
func NormalizePath(name string) string {
	name = strings.TrimPrefix(name, "./")
	return strings.TrimPrefix(name, "/")
}

// EncodePublicPath URL-encodes an asset path segment by segment, preserving
// the slashes.
func EncodePublicPath(assetPath string) string {
	trimmed := strings.TrimLeft(assetPath, "/")
	if trimmed == "" {
		return ""
	}
	segments := strings.Split(trimmed, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// Resolver maps asset names to URLs: an exact relative-path entry wins,
// then a bare-basename entry, then a public-path fallback.
type Resolver struct {
	urls       map[string]string
	publicBase string
}

// NewResolver builds the lookup map from relative asset paths to URLs.
// Each entry is registered under its full relative path and its basename;
// conflicting basenames keep the first URL and warn, matching how bundled
// asset maps behave.
func NewResolver(assetURLs map[string]string, publicBase string, logger *log.Logger) *Resolver {
	urls := make(map[string]string, len(assetURLs)*2)
	for path, u := range assetURLs {
		rel := NormalizePath(path)
		if rel == "" {
			continue
		}
		if _, ok := urls[rel]; !ok {
			urls[rel] = u
		}
		base := rel
		if i := strings.LastIndexByte(rel, '/'); i >= 0 {
			base = rel[i+1:]
		}
		if base == "" {
			continue
		}
		if existing, ok := urls[base]; ok {
			if existing != u && logger != nil {
				logger.Warnf("assets: basename conflict for %q, keeping %q and ignoring %q", base, existing, u)
			}
			continue
		}
		urls[base] = u
	}
	return &Resolver{urls: urls, publicBase: strings.TrimRight(publicBase, "/")}
}

// HasAsset reports whether a name resolves to a bundled asset (exact path
// or basename). Empty names resolve to nothing.
func (r *Resolver) HasAsset(name string) bool {
	if name == "" {
		return false
	}
	normalized := NormalizePath(name)
	if _, ok := r.urls[normalized]; ok {
		return true
	}
	base := normalized
	if i := strings.LastIndexByte(normalized, '/'); i >= 0 {
		base = normalized[i+1:]
	}
	_, ok := r.urls[base]
	return ok
}

// Resolve returns the URL for an asset name and where it came from. When
// the asset is not bundled and a public base is configured, the encoded
// public path is returned as a fallback.
func (r *Resolver) Resolve(name string) (string, Source) {
	if name == "" {
		return "", SourceNone
	}
	normalized := NormalizePath(name)
	if u, ok := r.urls[normalized]; ok {
		return u, SourceBundled
	}
	base := normalized
	if i := strings.LastIndexByte(normalized, '/'); i >= 0 {
		base = normalized[i+1:]
	}
	if u, ok := r.urls[base]; ok {
		return u, SourceBundled
	}
	if r.publicBase == "" {
		return "", SourceNone
	}
	encoded := EncodePublicPath(normalized)
	if encoded == "" {
		return "", SourceNone
	}
	return r.publicBase + "/" + encoded, SourcePublic
}

// Keys returns the bundled full-path keys, for diagnostics.
func (r *Resolver) Keys() []string {
	keys := make([]string, 0, len(r.urls))
	for k := range r.urls {
		if strings.ContainsRune(k, '/') || strings.ContainsRune(k, '.') {
			keys = append(keys, k)
		}
	}
	return keys
}
