package bannergen

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/zip"

	"github.com/goliatone/go-bannergen/pkg/capture"
	"github.com/goliatone/go-bannergen/pkg/orchestrator"
)

func buildUpload(t *testing.T) []byte {
	t.Helper()

	entries := map[string]string{
		"tpl/banner.html": `
<div data-export-root>
  <h1 data-field="title" data-label="Title">Default</h1>
  <img data-field="product_main_src" src="img/p1.png">
</div>`,
		"tpl/banner.css":    `.banner { background: url("img/p1.png"); }`,
		"tpl/img/p1.png":    "p1-bytes",
		"data/records.json": `[{"id": "a", "title": "Hi", "product_main_src": "p1.png"}, {"id": "b", "title": "Yo"}]`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close upload: %v", err)
	}
	return buf.Bytes()
}

func TestOpenUploadAssemblesProject(t *testing.T) {
	project, err := OpenUpload(buildUpload(t))
	if err != nil {
		t.Fatalf("open upload: %v", err)
	}

	names := make([]string, 0, len(project.Descriptor.Fields))
	for _, f := range project.Descriptor.Fields {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"title", "product_main_src"}, names); diff != "" {
		t.Fatalf("descriptor (-want +got):\n%s", diff)
	}

	if project.Batch.Len() != 2 {
		t.Fatalf("batch = %d records, want 2", project.Batch.Len())
	}

	// The template lives in tpl/, so template-relative references resolve.
	for _, key := range []string{"tpl/img/p1.png", "img/p1.png", "p1.png"} {
		if _, ok := project.Bundle.Lookup(key); !ok {
			t.Fatalf("bundle missing key %q", key)
		}
	}
}

func TestOpenUploadRequiresMarkup(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("only.css")
	w.Write([]byte(".x{}"))
	zw.Close()

	if _, err := OpenUpload(buf.Bytes()); err == nil {
		t.Fatal("upload without markup must be rejected")
	}
}

func TestGenerateArchiveEndToEnd(t *testing.T) {
	project, err := OpenUpload(buildUpload(t))
	if err != nil {
		t.Fatalf("open upload: %v", err)
	}

	var captured [][]byte
	raster := capture.RasterizerFunc(func(_ context.Context, markup []byte, _ capture.Options) ([]byte, error) {
		captured = append(captured, markup)
		return []byte(fmt.Sprintf("raster-%d", len(captured))), nil
	})

	overlay := NewOverlay()
	overlay.Set(1, "title", "Edited")

	var out bytes.Buffer
	summary, err := GenerateArchive(context.Background(), project, overlay, &out,
		orchestrator.WithRasterizer(raster),
		orchestrator.WithSettleDelay(0),
		orchestrator.WithClock(func() time.Time {
			return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		}),
	)
	if err != nil {
		t.Fatalf("generate archive: %v", err)
	}
	if summary.Succeeded != 2 {
		t.Fatalf("summary = %+v", summary)
	}

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	if err != nil {
		t.Fatalf("reopen archive: %v", err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	want := []string{"a_20240102030405.png", "b_20240102030405.png"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("archive entries (-want +got):\n%s", diff)
	}

	first := string(captured[0])
	if !strings.Contains(first, "data:image/png;base64,") {
		t.Fatalf("record image not inlined:\n%s", first)
	}
	if !strings.Contains(first, "<style>") || !strings.Contains(first, "data:") {
		t.Fatalf("stylesheet not carried into capture markup:\n%s", first)
	}

	second := string(captured[1])
	if !strings.Contains(second, ">Edited<") {
		t.Fatalf("overlay edit lost:\n%s", second)
	}
}
