// Package report renders the end-of-batch summary shown to the user: one
// success-versus-total digest instead of per-record interruptions.
package report

import (
	"fmt"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-bannergen/pkg/orchestrator"
)

const summaryTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Batch report</title></head>
<body>
<h1>Batch {{ timestamp }}</h1>
<p>{{ succeeded }} of {{ total }} records rendered{% if failed > 0 %}, {{ failed }} failed{% endif %}.</p>
<table>
<tr><th>#</th><th>Output</th><th>Status</th></tr>
{% for row in rows %}<tr><td>{{ row.index }}</td><td>{{ row.name }}</td><td>{% if row.failed %}failed: {{ row.reason }}{% else %}ok{% endif %}</td></tr>
{% endfor %}</table>
</body>
</html>
`

// Renderer turns a batch summary into an HTML digest.
type Renderer struct {
	tpl *pongo2.Template
}

// New compiles the embedded summary template.
func New() (*Renderer, error) {
	tpl, err := pongo2.FromString(summaryTemplate)
	if err != nil {
		return nil, fmt.Errorf("report: compile template: %w", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// Render produces the HTML report for one completed batch.
func (r *Renderer) Render(summary orchestrator.Summary) ([]byte, error) {
	rows := make([]map[string]any, 0, len(summary.Results))
	for _, res := range summary.Results {
		row := map[string]any{
			"index":  res.Index,
			"name":   res.Name,
			"failed": res.Failed(),
			"reason": "",
		}
		if res.Err != nil {
			row["reason"] = res.Err.Error()
		}
		rows = append(rows, row)
	}

	out, err := r.tpl.Execute(pongo2.Context{
		"timestamp": summary.Timestamp,
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"rows":      rows,
	})
	if err != nil {
		return nil, fmt.Errorf("report: execute template: %w", err)
	}
	return []byte(out), nil
}
