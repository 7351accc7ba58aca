package assets

import (
	"strings"
	"testing"
)

func TestRewriteStylesheetInlinesBackgroundsAndFonts(t *testing.T) {
	r := NewResolver(testBundle())

	const css = `
.banner {
  background-image: url("./img/x.png");
  color: red;
}
@font-face {
  font-family: "Headline";
  src: url(fonts/head.woff2) format("woff2");
}
`

	got, err := r.RewriteStylesheet(css)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	if !strings.Contains(got, "data:image/png;base64,") {
		t.Fatalf("background image not inlined:\n%s", got)
	}
	if !strings.Contains(got, "data:font/woff2;base64,") {
		t.Fatalf("font source not inlined:\n%s", got)
	}
	if strings.Contains(got, "img/x.png") {
		t.Fatalf("original image reference survived:\n%s", got)
	}
	if !strings.Contains(got, `format("woff2")`) {
		t.Fatalf("surrounding value text lost:\n%s", got)
	}
	if !strings.Contains(got, "color: red") {
		t.Fatalf("unrelated declaration lost:\n%s", got)
	}
}

func TestRewriteStylesheetKeepsUnresolvedTokens(t *testing.T) {
	r := NewResolver(testBundle())

	const css = `.x { background: url(https://cdn.example.com/a.png); } .y { background: url('missing.png'); }`

	got, err := r.RewriteStylesheet(css)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if !strings.Contains(got, "https://cdn.example.com/a.png") {
		t.Fatalf("absolute URL rewritten:\n%s", got)
	}
	if !strings.Contains(got, "missing.png") {
		t.Fatalf("unresolved reference dropped:\n%s", got)
	}
}

func TestRewriteStylesheetEmptyInput(t *testing.T) {
	r := NewResolver(testBundle())
	got, err := r.RewriteStylesheet("   ")
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got != "   " {
		t.Fatalf("blank stylesheet changed: %q", got)
	}
}

func TestRewriteURLTokens(t *testing.T) {
	resolve := func(ref string) string {
		if ref == "a.png" {
			return "data:inline"
		}
		return ref
	}

	tests := []struct {
		value string
		want  string
	}{
		{`url(a.png)`, `url("data:inline")`},
		{`url("a.png")`, `url("data:inline")`},
		{`url( 'a.png' )`, `url("data:inline")`},
		{`url(b.png)`, `url(b.png)`},
		{`url(a.png), url(b.png)`, `url("data:inline"), url(b.png)`},
		{`none`, `none`},
		{`url(unclosed`, `url(unclosed`},
	}
	for _, tc := range tests {
		if got := rewriteURLTokens(tc.value, resolve); got != tc.want {
			t.Fatalf("rewriteURLTokens(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
}
