package binding

import (
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/goliatone/go-bannergen/internal/model"
	"github.com/goliatone/go-bannergen/pkg/template"
)

// bindGroup reconciles a repeated-image-group container against the
// effective image count driven by the record: qty when provided, else the
// number of supplied sources, else one. Existing placeholders are reused in
// document order so their styling survives; surplus placeholders are hidden
// rather than deleted so a later record with a higher quantity can reclaim
// them. Fresh elements are synthesized only when the container never had a
// placeholder.
func (b *Binder) bindGroup(doc *goquery.Document, name string, value any) {
	container := findSlot(doc, template.AttrImageGroup, name)
	if container == nil {
		b.skipped(name)
		return
	}

	srcs, qty := model.GroupValue(value)
	count := effectiveCount(srcs, qty)
	if count == 0 {
		return
	}
	images := expandSources(srcs, count)
	if len(images) > 0 && len(images) < count {
		// More placeholders requested than sources supplied: only the
		// sourced ones show.
		count = len(images)
	}

	placeholders := container.Find("img")
	existing := placeholders.Length()

	switch {
	case existing == 0:
		for i := 0; i < count; i++ {
			container.AppendHtml(`<img>`)
		}
	case existing < count:
		// Clone the last placeholder so its classes and inline style carry
		// over to the new instances.
		last := placeholders.Eq(existing - 1)
		for i := existing; i < count; i++ {
			container.AppendSelection(last.Clone())
		}
	}

	placeholders = container.Find("img")
	placeholders.Each(func(i int, img *goquery.Selection) {
		if i >= count {
			img.SetAttr("hidden", "hidden")
			return
		}
		img.RemoveAttr("hidden")
		if i < len(images) {
			img.SetAttr("src", images[i])
		}
	})

	b.logger.Debug("binding: image group reconciled",
		zap.String("field", name),
		zap.Int("count", count),
		zap.Int("placeholders", placeholders.Length()))
}

// effectiveCount applies the quantity rules: qty wins when present, else
// the source count, else a single image.
func effectiveCount(srcs []string, qty int) int {
	if qty > 0 {
		return qty
	}
	if len(srcs) > 0 {
		return len(srcs)
	}
	return 1
}

// expandSources shapes the source list for the effective count: a single
// source is replicated, a longer list is truncated to the first count
// entries.
func expandSources(srcs []string, count int) []string {
	switch {
	case len(srcs) == 0:
		return nil
	case len(srcs) == 1 && count > 1:
		out := make([]string, count)
		for i := range out {
			out[i] = srcs[0]
		}
		return out
	case len(srcs) > count:
		return srcs[:count]
	default:
		return srcs
	}
}
