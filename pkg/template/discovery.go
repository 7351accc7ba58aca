package template

import (
	"errors"

	"github.com/goliatone/go-bannergen/pkg/banner"
)

// ErrParse reports malformed template markup. Discovery surfaces it
// immediately; a batch cannot start from a template that fails to parse.
var ErrParse = errors.New("template: parse failure")

// Discoverer scans parsed template markup for bindable slot markers and
// produces the immutable descriptor the editing UI and the binder consume.
type Discoverer interface {
	Discover(doc Document) (banner.Descriptor, error)
}

// Marker attributes recognised inside template markup. The template stays
// opaque otherwise; only these attributes make an element a slot.
const (
	AttrField      = "data-field"
	AttrLabel      = "data-label"
	AttrPriceInt   = "data-price-int"
	AttrPriceDec   = "data-price-dec"
	AttrImageGroup = "data-image-group"
	AttrExportRoot = "data-export-root"
)
