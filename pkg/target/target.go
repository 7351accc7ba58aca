// Package target realises a template document into an isolated, reusable
// render surface. The batch orchestrator owns one target exclusively for a
// whole run; preview flows may hold several side by side. Every mutation
// goes through an explicit *RenderTarget value, never through ambient
// globals, so binding stays pure with respect to its declared inputs.
package target

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/goliatone/go-bannergen/pkg/template"
)

// RenderTarget is one realised instance of a template: a traversable tree
// built from the markup plus the stylesheet carried alongside for capture.
type RenderTarget struct {
	doc        *goquery.Document
	stylesheet string
	source     template.Document
}

// New realises a template document into a fresh target.
func New(doc template.Document) (*RenderTarget, error) {
	parsed, err := parse(doc.Markup())
	if err != nil {
		return nil, err
	}
	return &RenderTarget{
		doc:        parsed,
		stylesheet: string(doc.Stylesheet()),
		source:     doc,
	}, nil
}

func parse(markup []byte) (*goquery.Document, error) {
	if len(bytes.TrimSpace(markup)) == 0 {
		return nil, errors.New("target: markup is empty")
	}
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("target: %w: %v", template.ErrParse, err)
	}
	return parsed, nil
}

// Document exposes the live tree for binding and resolution. Callers must
// not retain the pointer across a Reset.
func (t *RenderTarget) Document() *goquery.Document {
	return t.doc
}

// Stylesheet returns the stylesheet text currently carried by the target.
func (t *RenderTarget) Stylesheet() string {
	return t.stylesheet
}

// SetStylesheet replaces the carried stylesheet, typically after asset
// resolution inlined its url() references.
func (t *RenderTarget) SetStylesheet(stylesheet string) {
	t.stylesheet = stylesheet
}

// Reset re-realises the target from the pristine template markup,
// discarding every bound value.
func (t *RenderTarget) Reset() error {
	parsed, err := parse(t.source.Markup())
	if err != nil {
		return err
	}
	t.doc = parsed
	return nil
}

// ExportRoot returns the designated capture root: the first element marked
// data-export-root when present, else the document body.
func (t *RenderTarget) ExportRoot() *goquery.Selection {
	root := t.doc.Find("[" + template.AttrExportRoot + "]").First()
	if root.Length() > 0 {
		return root
	}
	return t.doc.Find("body").First()
}

// CaptureMarkup serialises the export root into a standalone document with
// the stylesheet inlined, ready for the rasterization collaborator.
func (t *RenderTarget) CaptureMarkup() ([]byte, error) {
	root := t.ExportRoot()
	if root.Length() == 0 {
		return nil, errors.New("target: no export root")
	}

	var rootHTML string
	var err error
	if goquery.NodeName(root) == "body" {
		rootHTML, err = root.Html()
	} else {
		rootHTML, err = goquery.OuterHtml(root)
	}
	if err != nil {
		return nil, fmt.Errorf("target: serialize export root: %w", err)
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
	if t.stylesheet != "" {
		b.WriteString("<style>")
		b.WriteString(t.stylesheet)
		b.WriteString("</style>")
	}
	b.WriteString("</head><body>")
	b.WriteString(rootHTML)
	b.WriteString("</body></html>")
	return []byte(b.String()), nil
}

// Snapshot serialises the whole live tree, mainly for preview and tests.
func (t *RenderTarget) Snapshot() (string, error) {
	html, err := t.doc.Html()
	if err != nil {
		return "", fmt.Errorf("target: serialize document: %w", err)
	}
	return html, nil
}
