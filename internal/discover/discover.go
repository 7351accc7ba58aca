// Package discover implements slot discovery over parsed template markup.
// It performs a read-only scan; the source document is never mutated.
package discover

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-bannergen/internal/model"
	"github.com/goliatone/go-bannergen/pkg/banner"
	"github.com/goliatone/go-bannergen/pkg/template"
)

// Discoverer walks a parsed template collecting typed slot descriptors in
// document order. Labels originate in untrusted uploaded markup, so they are
// sanitised before being surfaced to the editable-fields panel.
type Discoverer struct {
	labelPolicy *bluemonday.Policy
}

// New constructs a Discoverer with the strict label sanitisation policy.
func New() *Discoverer {
	return &Discoverer{labelPolicy: bluemonday.StrictPolicy()}
}

var _ template.Discoverer = (*Discoverer)(nil)

// slotSelector matches every marker form in one query; goquery returns
// matches in document order.
var slotSelector = strings.Join([]string{
	"[" + template.AttrField + "]",
	"[" + template.AttrPriceInt + "]",
	"[" + template.AttrPriceDec + "]",
	"[" + template.AttrImageGroup + "]",
}, ", ")

// Discover produces a TemplateDescriptor for the document. A malformed or
// empty document yields an empty descriptor carrying no slots; only a
// tokenizer-level failure surfaces as template.ErrParse.
func (d *Discoverer) Discover(doc template.Document) (banner.Descriptor, error) {
	markup := doc.Markup()
	if len(bytes.TrimSpace(markup)) == 0 {
		return banner.Descriptor{}, nil
	}

	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return banner.Descriptor{}, fmt.Errorf("discover: %w: %v", template.ErrParse, err)
	}

	var (
		fields []banner.TemplateField
		seen   = make(map[string]struct{})
	)

	add := func(name, label string, kind banner.FieldKind) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		// First occurrence wins; later duplicates are ignored, not merged.
		if _, exists := seen[name]; exists {
			return
		}
		seen[name] = struct{}{}
		fields = append(fields, banner.TemplateField{
			Name:  name,
			Label: d.sanitizeLabel(label),
			Kind:  kind,
		})
	}

	parsed.Find(slotSelector).Each(func(_ int, sel *goquery.Selection) {
		label := sel.AttrOr(template.AttrLabel, "")

		if group, ok := sel.Attr(template.AttrImageGroup); ok {
			add(group, label, banner.FieldKindImageGroup)
			return
		}

		intName, hasInt := sel.Attr(template.AttrPriceInt)
		decName, hasDec := sel.Attr(template.AttrPriceDec)
		if hasInt || hasDec {
			add(intName, model.LabelPriceInt, banner.FieldKindPriceInt)
			add(decName, model.LabelPriceDec, banner.FieldKindPriceDec)
			return
		}

		if name, ok := sel.Attr(template.AttrField); ok {
			kind := banner.FieldKindText
			if goquery.NodeName(sel) == "img" {
				kind = banner.FieldKindImage
			}
			add(name, label, kind)
		}
	})

	return banner.Descriptor{Fields: fields}, nil
}

func (d *Discoverer) sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	return strings.TrimSpace(d.labelPolicy.Sanitize(label))
}
