package model

import (
	"sort"
	"strconv"
	"strings"
)

// FieldKind is the simplified enum for bindable slot kinds discovered in a
// template.
type FieldKind string

const (
	FieldKindText       FieldKind = "text"
	FieldKindImage      FieldKind = "image"
	FieldKindPriceInt   FieldKind = "price-int"
	FieldKindPriceDec   FieldKind = "price-dec"
	FieldKindImageGroup FieldKind = "image-group"
)

// Synthetic labels attached to composite price fields when the template does
// not carry its own.
const (
	LabelPriceInt = "integer part"
	LabelPriceDec = "decimal part"
)

// TemplateField describes one bindable slot. Struct fields are annotated so
// callers can serialise descriptors for an editing UI directly.
type TemplateField struct {
	Name  string    `json:"name"`
	Label string    `json:"label,omitempty"`
	Kind  FieldKind `json:"kind"`
}

// Descriptor is the ordered set of slots discovered in one template. Built
// once per template upload and immutable thereafter; duplicate names keep
// the first occurrence.
type Descriptor struct {
	Fields []TemplateField `json:"fields"`
}

// Lookup returns the field with the given name.
func (d Descriptor) Lookup(name string) (TemplateField, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return TemplateField{}, false
}

// Has reports whether a slot with the given name was discovered.
func (d Descriptor) Has(name string) bool {
	_, ok := d.Lookup(name)
	return ok
}

// Record maps field names to values supplied by one data row. Values are
// scalar strings, numbers, ordered string sequences, or a group object
// carrying "srcs" and "qty". Records are immutable once loaded.
type Record map[string]any

// recordIDKey names the optional identity field used for output naming.
const recordIDKey = "id"

// ID returns the record identity used in output filenames, empty when the
// record carries none.
func (r Record) ID() string {
	v, ok := r[recordIDKey]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// IsEmpty reports whether the record is a skeleton placeholder: it binds
// nothing, so the template renders with its built-in defaults.
func (r Record) IsEmpty() bool {
	return len(r) == 0
}

// Value returns the raw value for a field name.
func (r Record) Value(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// String returns the scalar string form of a field value.
func (r Record) String(name string) (string, bool) {
	v, ok := r[name]
	if !ok {
		return "", false
	}
	return Stringify(v), true
}

// Group extracts the ordered sources and optional quantity for a
// repeated-image-group field. qty is zero when the record does not drive it.
func (r Record) Group(name string) (srcs []string, qty int, ok bool) {
	v, exists := r[name]
	if !exists {
		return nil, 0, false
	}
	srcs, qty = GroupValue(v)
	return srcs, qty, true
}

// GroupValue normalises the three accepted shapes of a repeated-image-group
// value: scalar, sequence, or {"srcs": [...], "qty": n}.
func GroupValue(v any) (srcs []string, qty int) {
	switch value := v.(type) {
	case map[string]any:
		if raw, ok := value["srcs"]; ok {
			srcs = stringSlice(raw)
		}
		if raw, ok := value["qty"]; ok {
			qty = toInt(raw)
		}
	default:
		srcs = stringSlice(v)
	}
	return srcs, qty
}

// Overlay is the sparse per-batch edit layer: recordIndex → field → value.
// Overlay values always win over record values for the same pair. Not safe
// for concurrent use; edits happen between batch runs.
type Overlay map[int]map[string]any

// Set stores a manual override for one (index, field) pair.
func (o Overlay) Set(index int, field string, value any) {
	if o == nil {
		return
	}
	edits, ok := o[index]
	if !ok {
		edits = make(map[string]any)
		o[index] = edits
	}
	edits[field] = value
}

// Value returns the override for one (index, field) pair.
func (o Overlay) Value(index int, field string) (any, bool) {
	edits, ok := o[index]
	if !ok {
		return nil, false
	}
	v, ok := edits[field]
	return v, ok
}

// ForIndex returns the override map for one record index, nil when the
// record has no edits.
func (o Overlay) ForIndex(index int) map[string]any {
	return o[index]
}

// Indexes returns the sorted record indexes carrying at least one edit.
func (o Overlay) Indexes() []int {
	out := make([]int, 0, len(o))
	for idx := range o {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Batch is the ordered, index-addressed record sequence loaded atomically
// per upload event.
type Batch struct {
	Records []Record
}

// HasPlaceholder reports whether index 0 holds a skeleton placeholder
// record. Only index 0 is ever treated as a placeholder.
func (b Batch) HasPlaceholder() bool {
	return len(b.Records) > 0 && b.Records[0].IsEmpty()
}

// Len returns the number of records, placeholder included.
func (b Batch) Len() int {
	return len(b.Records)
}

// Stringify renders a record value as the text projected into a slot.
// JSON numbers arrive as float64; integral values must not grow a trailing
// ".0" because price fields compare digit counts on the rendered text.
func Stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	default:
		return ""
	}
}

func stringSlice(v any) []string {
	switch value := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, len(value))
		copy(out, value)
		return out
	case []any:
		out := make([]string, 0, len(value))
		for _, item := range value {
			if s := strings.TrimSpace(Stringify(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		s := strings.TrimSpace(Stringify(v))
		if s == "" {
			return nil
		}
		return []string{s}
	}
}

func toInt(v any) int {
	switch value := v.(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
