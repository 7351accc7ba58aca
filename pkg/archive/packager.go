package archive

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// ErrEmpty reports a batch in which zero records survived to output. The
// orchestrator may have completed its loop, but there is nothing to
// download, so the run counts as a total failure.
var ErrEmpty = errors.New("archive: no rendered records to package")

// Item is one named raster output destined for the downloadable container.
type Item struct {
	Name string
	Data []byte
}

// Packager aggregates named raster outputs into a single zip. Pure
// aggregation: it applies no field logic and no renaming beyond what the
// caller supplies.
type Packager struct {
	logger *zap.Logger
}

// PackagerOption customises packager construction.
type PackagerOption func(*Packager)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) PackagerOption {
	return func(p *Packager) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPackager constructs a Packager.
func NewPackager(options ...PackagerOption) *Packager {
	p := &Packager{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// Package writes every item into a zip container on w. Zero items yield
// ErrEmpty; any write failure aborts packaging.
func (p *Packager) Package(w io.Writer, items []Item) error {
	if len(items) == 0 {
		return ErrEmpty
	}

	zw := zip.NewWriter(w)
	for _, item := range items {
		if item.Name == "" || len(item.Data) == 0 {
			continue
		}
		entry, err := zw.Create(item.Name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("archive: create entry %q: %w", item.Name, err)
		}
		if _, err := entry.Write(item.Data); err != nil {
			zw.Close()
			return fmt.Errorf("archive: write entry %q: %w", item.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("archive: finalize container: %w", err)
	}

	p.logger.Debug("archive: container packaged", zap.Int("entries", len(items)))
	return nil
}
