package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-bannergen/pkg/orchestrator"
)

func TestRenderSummary(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	summary := orchestrator.Summary{
		Total:     3,
		Succeeded: 2,
		Failed:    1,
		Timestamp: "20240102030405",
		Results: []orchestrator.Result{
			{Index: 0, Name: "a_20240102030405"},
			{Index: 1, Name: "b_20240102030405", Err: errors.New("capture blew up")},
			{Index: 2, Name: "1_20240102030405"},
		},
	}

	out, err := renderer.Render(summary)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		"Batch 20240102030405",
		"2 of 3 records rendered",
		"1 failed",
		"a_20240102030405",
		"capture blew up",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("report missing %q:\n%s", want, html)
		}
	}
}

func TestRenderAllSucceededOmitsFailureNote(t *testing.T) {
	renderer, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := renderer.Render(orchestrator.Summary{
		Total:     1,
		Succeeded: 1,
		Timestamp: "ts",
		Results:   []orchestrator.Result{{Name: "a_ts"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "failed") {
		t.Fatalf("clean run should not mention failures:\n%s", out)
	}
}
