package assets

import (
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/goliatone/go-bannergen/pkg/banner"
)

// Resolver maps path-like references to inline payloads via an ordered
// candidate-key chain. Unresolvable references pass through unchanged;
// broken or external references are expected and tolerated.
type Resolver struct {
	bundle *Bundle
	logger *zap.Logger
}

// ResolverOption customises resolver construction.
type ResolverOption func(*Resolver)

// WithLogger attaches a structured logger used for unresolved-reference
// diagnostics.
func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver wraps a bundle. A nil bundle yields a resolver that passes
// every reference through.
func NewResolver(bundle *Bundle, options ...ResolverOption) *Resolver {
	r := &Resolver{bundle: bundle, logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// candidateKeys is the auditable fallback chain: each generator derives one
// lookup key from the raw reference, evaluated in order, first hit wins.
var candidateKeys = []func(string) string{
	func(ref string) string { return ref },
	normalizeRef,
	func(ref string) string { return "./" + normalizeRef(ref) },
	func(ref string) string { return path.Base(normalizeRef(ref)) },
}

// Resolve maps one reference to its inline payload, returning the original
// reference unchanged when it is already inline, absolute, or unknown to
// the bundle.
func (r *Resolver) Resolve(ref string) string {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" || isPassthrough(trimmed) || r.bundle == nil {
		return ref
	}

	seen := make(map[string]struct{}, len(candidateKeys))
	for _, generate := range candidateKeys {
		key := generate(trimmed)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if payload, ok := r.bundle.Lookup(key); ok {
			return payload.DataURI()
		}
	}

	r.logger.Debug("assets: reference unresolved, keeping original",
		zap.String("reference", trimmed))
	return ref
}

// ResolveRecord returns a copy of the record with every string, sequence,
// and group-source value promoted to an inline payload where the bundle
// knows it. Records may carry bare filenames that need the same promotion
// as template references; the input record is never mutated.
func (r *Resolver) ResolveRecord(record banner.Record) banner.Record {
	if len(record) == 0 {
		return record
	}

	out := make(banner.Record, len(record))
	for name, value := range record {
		out[name] = r.resolveValue(value)
	}
	return out
}

func (r *Resolver) resolveValue(value any) any {
	switch v := value.(type) {
	case string:
		return r.Resolve(v)
	case []string:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = r.Resolve(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = r.resolveValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if key == "srcs" {
				out[key] = r.resolveValue(item)
				continue
			}
			out[key] = item
		}
		return out
	default:
		return value
	}
}

// ResolveMarkup rewrites every image reference inside a bound document to
// its inline payload. Applied after binding and before capture so the
// rasterizer never fetches.
func (r *Resolver) ResolveMarkup(doc *goquery.Document) {
	if doc == nil {
		return
	}
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src := sel.AttrOr("src", "")
		if resolved := r.Resolve(src); resolved != src {
			sel.SetAttr("src", resolved)
		}
	})
}

// isPassthrough reports whether a reference is already inline or absolute.
func isPassthrough(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//")
}

// normalizeRef strips leading "./" and "../" segments.
func normalizeRef(ref string) string {
	for {
		switch {
		case strings.HasPrefix(ref, "./"):
			ref = ref[2:]
		case strings.HasPrefix(ref, "../"):
			ref = ref[3:]
		default:
			return ref
		}
	}
}
