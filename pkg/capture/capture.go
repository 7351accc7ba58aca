// Package capture defines the seam to the low-level rasterization
// primitive. Turning markup into raster bytes is an external capability;
// the engine only owns the contract and the options it passes through.
package capture

import "context"

// DefaultScale is the fixed output scale used for batch export, independent
// of whatever zoom the preview applies.
const DefaultScale = 2.0

// Options carries the per-capture parameters forwarded to the rasterizer.
type Options struct {
	// Scale multiplies the layout size of the export root to fix the raster
	// resolution.
	Scale float64

	// Width and Height pin the viewport when the rasterizer needs one.
	// Zero values let the rasterizer derive them from the export root.
	Width  int
	Height int
}

// Rasterizer converts a standalone markup document into raster image bytes.
// Implementations typically drive a headless browser; tests use fakes.
type Rasterizer interface {
	Capture(ctx context.Context, markup []byte, opts Options) ([]byte, error)
}

// RasterizerFunc adapts a plain function to the Rasterizer interface.
type RasterizerFunc func(ctx context.Context, markup []byte, opts Options) ([]byte, error)

// Capture implements Rasterizer.
func (f RasterizerFunc) Capture(ctx context.Context, markup []byte, opts Options) ([]byte, error) {
	return f(ctx, markup, opts)
}
