package assets

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-bannergen/pkg/banner"
)

func testBundle() *Bundle {
	b := NewBundle(WithTemplateDir("tpl"))
	b.Add("img/x.png", []byte("x-bytes"), "image/png")
	b.Add("tpl/img/p1.png", []byte("p1-bytes"), "image/png")
	b.Add("fonts/head.woff2", []byte("font-bytes"), "")
	return b
}

func TestResolveEquivalentForms(t *testing.T) {
	r := NewResolver(testBundle())

	want := r.Resolve("img/x.png")
	if !strings.HasPrefix(want, "data:image/png;base64,") {
		t.Fatalf("expected inline payload, got %q", want)
	}

	for _, ref := range []string{"./img/x.png", "img/x.png", "x.png", "../img/x.png"} {
		if got := r.Resolve(ref); got != want {
			t.Fatalf("Resolve(%q) = %q, want the identical payload", ref, got)
		}
	}
}

func TestResolveTemplateRelativeKey(t *testing.T) {
	r := NewResolver(testBundle())

	// The entry lives at tpl/img/p1.png inside the upload; the template in
	// tpl/ references it relative to itself.
	if got := r.Resolve("img/p1.png"); !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("template-relative reference unresolved: %q", got)
	}
}

func TestResolvePassthrough(t *testing.T) {
	r := NewResolver(testBundle())

	refs := []string{
		"data:image/png;base64,AAAA",
		"http://example.com/x.png",
		"https://example.com/x.png",
		"//cdn.example.com/x.png",
	}
	for _, ref := range refs {
		if got := r.Resolve(ref); got != ref {
			t.Fatalf("Resolve(%q) = %q, want unchanged", ref, got)
		}
	}

	// Resolving an already-resolved reference is a no-op.
	inline := r.Resolve("x.png")
	if again := r.Resolve(inline); again != inline {
		t.Fatal("round-trip of an inline payload changed it")
	}
}

func TestResolveUnknownKeepsOriginal(t *testing.T) {
	r := NewResolver(testBundle())
	if got := r.Resolve("missing.png"); got != "missing.png" {
		t.Fatalf("unresolved reference rewritten to %q", got)
	}
}

func TestResolveNilBundle(t *testing.T) {
	r := NewResolver(nil)
	if got := r.Resolve("x.png"); got != "x.png" {
		t.Fatalf("nil bundle should pass through, got %q", got)
	}
}

func TestResolveRecordPromotesValues(t *testing.T) {
	r := NewResolver(testBundle())

	record := banner.Record{
		"title":            "Hi",
		"product_main_src": "x.png",
		"gift": map[string]any{
			"srcs": []any{"x.png", "missing.png"},
			"qty":  float64(2),
		},
	}

	got := r.ResolveRecord(record)

	if got["title"] != "Hi" {
		t.Fatalf("non-reference value changed: %v", got["title"])
	}
	if s, _ := got["product_main_src"].(string); !strings.HasPrefix(s, "data:") {
		t.Fatalf("record image reference not promoted: %v", got["product_main_src"])
	}

	group, ok := got["gift"].(map[string]any)
	if !ok {
		t.Fatalf("group shape lost: %T", got["gift"])
	}
	srcs, ok := group["srcs"].([]any)
	if !ok || len(srcs) != 2 {
		t.Fatalf("group srcs shape lost: %v", group["srcs"])
	}
	if s, _ := srcs[0].(string); !strings.HasPrefix(s, "data:") {
		t.Fatalf("group source not promoted: %v", srcs[0])
	}
	if srcs[1] != "missing.png" {
		t.Fatalf("unknown group source should stay put: %v", srcs[1])
	}
	if qty := group["qty"]; qty != float64(2) {
		t.Fatalf("qty changed: %v", qty)
	}

	// The input record is never mutated.
	if record["product_main_src"] != "x.png" {
		t.Fatal("ResolveRecord mutated its input")
	}
}

func TestBundleKeysDoNotOverrideEarlierEntries(t *testing.T) {
	b := NewBundle()
	b.Add("a/logo.png", []byte("first"), "image/png")
	b.Add("b/logo.png", []byte("second"), "image/png")

	// Both register the bare filename; the first entry wins.
	payload, ok := b.Lookup("logo.png")
	if !ok {
		t.Fatal("bare filename key missing")
	}
	if string(payload.Data) != "first" {
		t.Fatalf("bare key overridden: %s", payload.Data)
	}
	if diff := cmp.Diff("second", string(mustLookup(t, b, "b/logo.png").Data)); diff != "" {
		t.Fatalf("exact key mismatch (-want +got):\n%s", diff)
	}
}

func mustLookup(t *testing.T, b *Bundle, key string) Payload {
	t.Helper()
	payload, ok := b.Lookup(key)
	if !ok {
		t.Fatalf("key %q missing", key)
	}
	return payload
}

func TestMIMEForPath(t *testing.T) {
	tests := map[string]string{
		"x.png":        "image/png",
		"fonts/a.woff": "font/woff",
		"a.woff2":      "font/woff2",
		"unknown.bin":  "application/octet-stream",
	}
	for path, want := range tests {
		if got := MIMEForPath(path); got != want {
			t.Fatalf("MIMEForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
