package binding

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/goliatone/go-bannergen/internal/model"
	"github.com/goliatone/go-bannergen/pkg/template"
)

// Composite price sub-element classes. The digit-count class drives the
// width and kerning the stylesheet applies to the pair.
const (
	ClassPriceInt = "price-int"
	ClassPriceDec = "price-dec"

	ClassTwoDigit   = "digits-2"
	ClassThreeDigit = "digits-3"
)

// styleForInteger selects the digit-count class from the rendered integer
// text: two or fewer digits keep the compact style, three or more switch to
// the wide one.
func styleForInteger(text string) string {
	if digitCount(text) <= 2 {
		return ClassTwoDigit
	}
	return ClassThreeDigit
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func (b *Binder) bindPriceInt(doc *goquery.Document, name string, value any) {
	container := findSlot(doc, template.AttrPriceInt, name)
	if container == nil {
		b.skipped(name)
		return
	}

	text := strings.TrimSpace(model.Stringify(value))
	intSel, _ := b.reconcilePrice(container, styleForInteger(text))
	intSel.SetText(text)
}

func (b *Binder) bindPriceDec(doc *goquery.Document, name string, value any) {
	container := findSlot(doc, template.AttrPriceDec, name)
	if container == nil {
		b.skipped(name)
		return
	}

	// The decimal part alone does not pick the style; it follows whatever
	// integer text the container currently shows.
	style := styleForInteger(container.Children().Filter("." + ClassPriceInt).First().Text())
	_, decSel := b.reconcilePrice(container, style)
	decSel.SetText(b.separator + trimLeadingSeparators(model.Stringify(value)))
}

// trimLeadingSeparators accepts decimal input with or without a leading
// separator and strips every leading separator character so the caller can
// prepend exactly one.
func trimLeadingSeparators(s string) string {
	return strings.TrimLeft(strings.TrimSpace(s), ".,")
}

// reconcilePrice brings the price container to its canonical shape for the
// target style: exactly one integer sub-element and one decimal
// sub-element, stray text nodes and superseded elements removed. Calling it
// again with the same style is a no-op, which keeps rebinding idempotent.
func (b *Binder) reconcilePrice(container *goquery.Selection, style string) (intSel, decSel *goquery.Selection) {
	removeTextNodes(container)

	// Carry the texts of superseded sub-elements over to their
	// replacements so a style switch driven by one part does not blank the
	// other.
	prevInt := container.Children().Filter("." + ClassPriceInt).First().Text()
	prevDec := container.Children().Filter("." + ClassPriceDec).First().Text()

	intClass := fmt.Sprintf(".%s.%s", ClassPriceInt, style)
	decClass := fmt.Sprintf(".%s.%s", ClassPriceDec, style)

	// Drop every child that is not part of the retained pair: sub-elements
	// of the other style and any legacy markup the template carried.
	container.Children().Each(func(_ int, child *goquery.Selection) {
		if child.Is(intClass) || child.Is(decClass) {
			return
		}
		child.Remove()
	})

	intSel = b.ensureSub(container, ClassPriceInt, style)
	decSel = b.ensureSub(container, ClassPriceDec, style)

	if intSel.Text() == "" && prevInt != "" {
		intSel.SetText(prevInt)
	}
	if decSel.Text() == "" && prevDec != "" {
		decSel.SetText(prevDec)
	}
	return intSel, decSel
}

// ensureSub locates the single sub-element with the given part and style
// classes, creating it when missing and trimming duplicates beyond the
// first.
func (b *Binder) ensureSub(container *goquery.Selection, part, style string) *goquery.Selection {
	selector := fmt.Sprintf(".%s.%s", part, style)
	matches := container.Children().Filter(selector)
	if matches.Length() > 1 {
		matches.Slice(1, matches.Length()).Remove()
		matches = container.Children().Filter(selector)
	}
	if matches.Length() == 1 {
		return matches.First()
	}

	container.AppendHtml(fmt.Sprintf(`<span class="%s %s"></span>`, part, style))
	return container.Children().Filter(selector).First()
}

// removeTextNodes drops text nodes sitting directly under the container,
// left over from templates that carried a literal placeholder price.
func removeTextNodes(container *goquery.Selection) {
	container.Contents().FilterFunction(func(_ int, s *goquery.Selection) bool {
		return len(s.Nodes) > 0 && s.Nodes[0].Type == html.TextNode
	}).Remove()
}
