package banner

import internalmodel "github.com/goliatone/go-bannergen/internal/model"

// FieldKind re-exports the internal FieldKind enumeration.
type FieldKind = internalmodel.FieldKind

const (
	FieldKindText       = internalmodel.FieldKindText
	FieldKindImage      = internalmodel.FieldKindImage
	FieldKindPriceInt   = internalmodel.FieldKindPriceInt
	FieldKindPriceDec   = internalmodel.FieldKindPriceDec
	FieldKindImageGroup = internalmodel.FieldKindImageGroup
)

type TemplateField = internalmodel.TemplateField
type Descriptor = internalmodel.Descriptor
type Record = internalmodel.Record
type Overlay = internalmodel.Overlay
type Batch = internalmodel.Batch

// NewOverlay returns an empty edit layer ready for Set calls.
func NewOverlay() Overlay {
	return make(Overlay)
}
