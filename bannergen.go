// Package bannergen binds declaratively annotated banner templates to
// batches of structured records and renders one raster artifact per record.
// The root package is a thin facade; the pipeline lives under pkg/.
package bannergen

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-bannergen/internal/discover"
	"github.com/goliatone/go-bannergen/internal/record"
	"github.com/goliatone/go-bannergen/pkg/archive"
	"github.com/goliatone/go-bannergen/pkg/assets"
	"github.com/goliatone/go-bannergen/pkg/banner"
	"github.com/goliatone/go-bannergen/pkg/orchestrator"
	"github.com/goliatone/go-bannergen/pkg/template"
)

// Core model aliases exported via the root package for convenience.
type Record = banner.Record
type Overlay = banner.Overlay
type Batch = banner.Batch
type Descriptor = banner.Descriptor
type TemplateField = banner.TemplateField

// Request aliases the orchestrator request for callers using the facade.
type Request = orchestrator.Request

// Summary aliases the end-of-batch report.
type Summary = orchestrator.Summary

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewOverlay returns an empty edit layer ready for Set calls.
func NewOverlay() Overlay {
	return banner.NewOverlay()
}

// NewDiscoverer returns the built-in slot discoverer, the same one the
// orchestrator installs by default.
func NewDiscoverer() template.Discoverer {
	return discover.New()
}

// ParseRecords decodes an uploaded data file into its ordered batch.
func ParseRecords(data []byte) (banner.Batch, error) {
	return record.Parse(data)
}

// Project is a fully loaded upload: the template document, its discovered
// slots, the record batch, and the asset bundle, ready for RunBatch.
type Project struct {
	Document   template.Document
	Descriptor banner.Descriptor
	Batch      banner.Batch
	Bundle     *assets.Bundle
}

// OpenUpload reads a zip-like container holding markup, stylesheet, assets,
// and a data file, and assembles the project: the first markup entry is the
// template, the first stylesheet accompanies it, images and fonts become
// the bundle, the first record file becomes the batch.
func OpenUpload(data []byte) (*Project, error) {
	upload, err := archive.ReadBytes(data)
	if err != nil {
		return nil, err
	}
	if len(upload.Markup) == 0 {
		return nil, errors.New("bannergen: upload carries no template markup")
	}

	markup := upload.Markup[0]
	var stylesheet []byte
	if len(upload.Stylesheets) > 0 {
		stylesheet = upload.Stylesheets[0].Data
	}

	doc, err := template.NewDocument(template.SourceFromFS(markup.Path), markup.Data, stylesheet)
	if err != nil {
		return nil, fmt.Errorf("bannergen: assemble document: %w", err)
	}

	descriptor, err := NewDiscoverer().Discover(doc)
	if err != nil {
		return nil, err
	}

	bundle := assets.NewBundle(assets.WithTemplateDir(doc.Dir()))
	for _, entry := range upload.Assets() {
		bundle.Add(entry.Path, entry.Data, "")
	}

	var batch banner.Batch
	if len(upload.Records) > 0 {
		batch, err = record.Parse(upload.Records[0].Data)
		if err != nil {
			return nil, err
		}
	}

	return &Project{
		Document:   doc,
		Descriptor: descriptor,
		Batch:      batch,
		Bundle:     bundle,
	}, nil
}

// GenerateArchive runs the whole pipeline for a loaded project and writes
// the packaged rasters to out. It is the simplest entry point for callers
// that just want the archive.
func GenerateArchive(ctx context.Context, project *Project, overlay Overlay, out io.Writer, options ...orchestrator.Option) (Summary, error) {
	if project == nil {
		return Summary{}, errors.New("bannergen: project is required")
	}
	gen := orchestrator.New(options...)
	return gen.RunBatch(ctx, orchestrator.Request{
		Document:   project.Document,
		Descriptor: &project.Descriptor,
		Batch:      project.Batch,
		Overlay:    overlay,
		Bundle:     project.Bundle,
	}, out)
}
