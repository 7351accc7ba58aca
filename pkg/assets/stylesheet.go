package assets

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// RewriteStylesheet parses the stylesheet and replaces every url(...) token
// whose reference resolves against the bundle, covering background images
// and @font-face sources alike. Unresolvable tokens keep their original
// reference. The rewritten stylesheet text is returned; the input is never
// mutated.
func (r *Resolver) RewriteStylesheet(stylesheet string) (string, error) {
	if strings.TrimSpace(stylesheet) == "" {
		return stylesheet, nil
	}

	sheet, err := parser.Parse(stylesheet)
	if err != nil {
		return "", fmt.Errorf("assets: parse stylesheet: %w", err)
	}

	for _, rule := range sheet.Rules {
		r.rewriteRule(rule)
	}

	return sheet.String(), nil
}

func (r *Resolver) rewriteRule(rule *css.Rule) {
	if rule == nil {
		return
	}
	for _, declaration := range rule.Declarations {
		if declaration == nil {
			continue
		}
		declaration.Value = rewriteURLTokens(declaration.Value, r.Resolve)
	}
	for _, nested := range rule.Rules {
		r.rewriteRule(nested)
	}
}

// rewriteURLTokens scans a declaration value for url(...) tokens and maps
// each inner reference through resolve. Quoting is preserved by re-emitting
// resolved references double-quoted.
func rewriteURLTokens(value string, resolve func(string) string) string {
	const open = "url("

	var out strings.Builder
	rest := value
	for {
		idx := strings.Index(strings.ToLower(rest), open)
		if idx < 0 {
			out.WriteString(rest)
			return out.String()
		}

		end := strings.Index(rest[idx+len(open):], ")")
		if end < 0 {
			out.WriteString(rest)
			return out.String()
		}
		end += idx + len(open)

		out.WriteString(rest[:idx])

		raw := rest[idx+len(open) : end]
		ref := strings.Trim(strings.TrimSpace(raw), `'"`)

		resolved := resolve(ref)
		if resolved == ref {
			// Unchanged: keep the original token byte-for-byte.
			out.WriteString(rest[idx : end+1])
		} else {
			out.WriteString(`url("` + resolved + `")`)
		}

		rest = rest[end+1:]
	}
}
