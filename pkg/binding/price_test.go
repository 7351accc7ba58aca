package binding

import (
	"strings"
	"testing"

	"github.com/goliatone/go-bannergen/pkg/banner"
	"github.com/goliatone/go-bannergen/pkg/target"
)

const priceMarkup = `
<div data-export-root>
  <div class="price" data-price-int="price_i" data-price-dec="price_d">
    199
    <span class="price-int digits-2">19</span>
    <span class="price-dec digits-2">.99</span>
  </div>
</div>`

var priceDescriptor = banner.Descriptor{Fields: []banner.TemplateField{
	{Name: "price_i", Kind: banner.FieldKindPriceInt},
	{Name: "price_d", Kind: banner.FieldKindPriceDec},
}}

func priceChildren(t *testing.T, tgt *target.RenderTarget) (intText, decText string, total int) {
	t.Helper()
	container := tgt.Document().Find(`[data-price-int="price_i"]`).First()
	if container.Length() == 0 {
		t.Fatal("price container missing")
	}

	children := container.Children()
	total = children.Length()

	ints := children.Filter(".price-int")
	decs := children.Filter(".price-dec")
	if ints.Length() != 1 || decs.Length() != 1 {
		t.Fatalf("want exactly one integer and one decimal sub-element, got %d/%d", ints.Length(), decs.Length())
	}
	return ints.Text(), decs.Text(), total
}

func TestBindPriceThreeDigitStyle(t *testing.T) {
	tgt := newTestTarget(t, priceMarkup)
	b := New()

	record := banner.Record{"price_i": "199", "price_d": "95"}
	if err := b.Bind(tgt, priceDescriptor, record, nil); err != nil {
		t.Fatalf("bind: %v", err)
	}

	intText, decText, total := priceChildren(t, tgt)
	if total != 2 {
		t.Fatalf("stray children survived, total = %d", total)
	}
	if intText != "199" {
		t.Fatalf("integer text = %q", intText)
	}
	if decText != ".95" {
		t.Fatalf("decimal text = %q", decText)
	}

	container := tgt.Document().Find(`[data-price-int="price_i"]`).First()
	if container.Children().Filter(".digits-3").Length() != 2 {
		t.Fatal("three-digit style not applied")
	}
	if container.Children().Filter(".digits-2").Length() != 0 {
		t.Fatal("superseded two-digit sub-elements survived")
	}

	// Literal placeholder text directly under the container must be gone.
	own := strings.TrimSpace(container.Contents().Not("*").Text())
	if own != "" {
		t.Fatalf("stray text nodes survived: %q", own)
	}
}

func TestBindPriceTwoDigitStyle(t *testing.T) {
	tgt := newTestTarget(t, priceMarkup)
	b := New()

	record := banner.Record{"price_i": "19", "price_d": ".99"}
	if err := b.Bind(tgt, priceDescriptor, record, nil); err != nil {
		t.Fatalf("bind: %v", err)
	}

	intText, decText, _ := priceChildren(t, tgt)
	if intText != "19" {
		t.Fatalf("integer text = %q", intText)
	}
	if decText != ".99" {
		t.Fatalf("decimal text = %q", decText)
	}
}

func TestBindPriceSeparatorNormalization(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"95", ".95"},
		{".95", ".95"},
		{"..95", ".95"},
		{",95", ".95"},
	}

	for _, tc := range tests {
		tgt := newTestTarget(t, priceMarkup)
		b := New()
		record := banner.Record{"price_i": "19", "price_d": tc.input}
		if err := b.Bind(tgt, priceDescriptor, record, nil); err != nil {
			t.Fatalf("bind: %v", err)
		}
		_, decText, _ := priceChildren(t, tgt)
		if decText != tc.want {
			t.Fatalf("decimal %q bound to %q, want %q", tc.input, decText, tc.want)
		}
	}
}

func TestBindPriceCustomSeparator(t *testing.T) {
	tgt := newTestTarget(t, priceMarkup)
	b := New(WithSeparator(","))

	record := banner.Record{"price_i": "19", "price_d": "99"}
	if err := b.Bind(tgt, priceDescriptor, record, nil); err != nil {
		t.Fatalf("bind: %v", err)
	}
	_, decText, _ := priceChildren(t, tgt)
	if decText != ",99" {
		t.Fatalf("decimal text = %q", decText)
	}
}

func TestBindPriceIdempotent(t *testing.T) {
	tgt := newTestTarget(t, priceMarkup)
	b := New()

	record := banner.Record{"price_i": "199", "price_d": "95"}
	for i := 0; i < 3; i++ {
		if err := b.Bind(tgt, priceDescriptor, record, nil); err != nil {
			t.Fatalf("bind %d: %v", i, err)
		}
	}

	intText, decText, total := priceChildren(t, tgt)
	if total != 2 || intText != "199" || decText != ".95" {
		t.Fatalf("rebinding degraded the container: %d children, %q %q", total, intText, decText)
	}
}

func TestBindPriceStyleSwitchPreservesOtherPart(t *testing.T) {
	tgt := newTestTarget(t, priceMarkup)
	b := New()

	if err := b.Bind(tgt, priceDescriptor, banner.Record{"price_i": "19", "price_d": "99"}, nil); err != nil {
		t.Fatalf("bind: %v", err)
	}

	// Editing only the integer part to three digits must not blank the
	// decimal part.
	field, _ := priceDescriptor.Lookup("price_i")
	if err := b.BindField(tgt, field, "249"); err != nil {
		t.Fatalf("bind field: %v", err)
	}

	intText, decText, _ := priceChildren(t, tgt)
	if intText != "249" {
		t.Fatalf("integer text = %q", intText)
	}
	if decText != ".99" {
		t.Fatalf("decimal part lost on style switch: %q", decText)
	}
}

func TestStyleForInteger(t *testing.T) {
	tests := map[string]string{
		"9":    ClassTwoDigit,
		"19":   ClassTwoDigit,
		"199":  ClassThreeDigit,
		"1099": ClassThreeDigit,
	}
	for text, want := range tests {
		if got := styleForInteger(text); got != want {
			t.Fatalf("styleForInteger(%q) = %q, want %q", text, got, want)
		}
	}
}
