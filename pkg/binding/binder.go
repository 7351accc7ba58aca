// Package binding projects record values into a render target. Binding is
// best-effort per field: slots absent from the live template are skipped,
// never fatal. Repeated binds of the same record converge on the same tree,
// which the batch loop relies on when it reuses one target across records.
package binding

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/goliatone/go-bannergen/internal/model"
	"github.com/goliatone/go-bannergen/pkg/banner"
	"github.com/goliatone/go-bannergen/pkg/target"
	"github.com/goliatone/go-bannergen/pkg/template"
)

// DefaultSeparator is the decimal separator written between the integer and
// decimal parts of a composite price.
const DefaultSeparator = "."

// Option customises the binder configuration.
type Option func(*Binder)

// WithSeparator overrides the decimal separator used for composite price
// fields. Only the first rune is used.
func WithSeparator(sep string) Option {
	return func(b *Binder) {
		if sep != "" {
			b.separator = string([]rune(sep)[0])
		}
	}
}

// WithLogger attaches a structured logger for skipped-slot diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Binder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Binder computes final per-slot values for a record plus its edit layer
// and applies them to a render target. It never mutates the descriptor or
// the record.
type Binder struct {
	separator string
	logger    *zap.Logger
}

// New constructs a Binder applying any provided options.
func New(options ...Option) *Binder {
	b := &Binder{
		separator: DefaultSeparator,
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Bind resolves every descriptor field against the record and its edit
// layer and projects the results into the target. Resolution order per
// field: override if present, else record value, else the slot keeps its
// template default.
func (b *Binder) Bind(t *target.RenderTarget, desc banner.Descriptor, record banner.Record, edits map[string]any) error {
	if t == nil {
		return fmt.Errorf("binding: target is required")
	}

	for _, field := range desc.Fields {
		value, ok := resolveValue(field.Name, record, edits)
		if !ok {
			continue
		}
		if err := b.BindField(t, field, value); err != nil {
			return err
		}
	}
	return nil
}

// BindField projects one value into one slot. It is the entry point the
// live-edit preview uses for single-field updates.
func (b *Binder) BindField(t *target.RenderTarget, field banner.TemplateField, value any) error {
	if t == nil {
		return fmt.Errorf("binding: target is required")
	}

	doc := t.Document()
	switch field.Kind {
	case banner.FieldKindText:
		b.bindText(doc, field.Name, value)
	case banner.FieldKindImage:
		b.bindImage(doc, field.Name, value)
	case banner.FieldKindPriceInt:
		b.bindPriceInt(doc, field.Name, value)
	case banner.FieldKindPriceDec:
		b.bindPriceDec(doc, field.Name, value)
	case banner.FieldKindImageGroup:
		b.bindGroup(doc, field.Name, value)
	default:
		return fmt.Errorf("binding: unknown field kind %q", field.Kind)
	}
	return nil
}

func (b *Binder) bindText(doc *goquery.Document, name string, value any) {
	sel := findSlot(doc, template.AttrField, name)
	if sel == nil {
		b.skipped(name)
		return
	}
	sel.SetText(model.Stringify(value))
}

func (b *Binder) bindImage(doc *goquery.Document, name string, value any) {
	sel := findSlot(doc, template.AttrField, name)
	if sel == nil {
		b.skipped(name)
		return
	}
	sel.SetAttr("src", model.Stringify(value))
}

func (b *Binder) skipped(name string) {
	b.logger.Debug("binding: slot missing in live template, field skipped",
		zap.String("field", name))
}

// findSlot locates the first element carrying attr=name, nil when the live
// template has no such slot.
func findSlot(doc *goquery.Document, attr, name string) *goquery.Selection {
	sel := doc.Find(fmt.Sprintf("[%s=%q]", attr, name)).First()
	if sel.Length() == 0 {
		return nil
	}
	return sel
}

// resolveValue applies the precedence chain: override, then record value.
func resolveValue(name string, record banner.Record, edits map[string]any) (any, bool) {
	if edits != nil {
		if v, ok := edits[name]; ok {
			return v, true
		}
	}
	if record != nil {
		if v, ok := record[name]; ok {
			return v, true
		}
	}
	return nil, false
}
