package assets

import (
	"encoding/base64"
	"mime"
	"path"
	"strings"
)

// Payload is a self-contained embeddable representation of an extracted
// resource. Replacing a path reference with its data URI removes the need
// for any external fetch during capture.
type Payload struct {
	Data []byte
	MIME string
}

// DataURI renders the payload as an inline data URI.
func (p Payload) DataURI() string {
	return "data:" + p.MIME + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Bundle maps normalised resource keys to inline payloads. It is built once
// from the images and fonts extracted from an upload and is read-only for
// the lifetime of a batch. Keys are registered in multiple equivalent forms
// so references expressed in any of them resolve to the same payload.
type Bundle struct {
	payloads    map[string]Payload
	templateDir string
}

// BundleOption customises bundle construction.
type BundleOption func(*Bundle)

// WithTemplateDir records the template's own directory inside the upload so
// entries also register under their template-relative path.
func WithTemplateDir(dir string) BundleOption {
	return func(b *Bundle) {
		b.templateDir = strings.Trim(strings.TrimSpace(dir), "/")
	}
}

// NewBundle creates an empty bundle.
func NewBundle(options ...BundleOption) *Bundle {
	b := &Bundle{payloads: make(map[string]Payload)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Add registers one extracted resource under every equivalent key form:
// the original relative path, the path without a leading "./", the path
// with "./" re-added, the path relative to the template directory, and the
// bare filename. Earlier entries win on key collisions.
func (b *Bundle) Add(relPath string, data []byte, mimeType string) {
	relPath = strings.TrimSpace(relPath)
	if relPath == "" || len(data) == 0 {
		return
	}
	if mimeType == "" {
		mimeType = MIMEForPath(relPath)
	}
	payload := Payload{Data: data, MIME: mimeType}

	for _, key := range b.keysFor(relPath) {
		if _, exists := b.payloads[key]; exists {
			continue
		}
		b.payloads[key] = payload
	}
}

// Lookup returns the payload registered under an exact key.
func (b *Bundle) Lookup(key string) (Payload, bool) {
	p, ok := b.payloads[key]
	return p, ok
}

// Len returns the number of registered keys, counting every form.
func (b *Bundle) Len() int {
	return len(b.payloads)
}

func (b *Bundle) keysFor(relPath string) []string {
	normalized := strings.TrimPrefix(relPath, "./")

	keys := []string{
		relPath,
		normalized,
		"./" + normalized,
		path.Base(normalized),
	}

	if b.templateDir != "" {
		if rel, ok := strings.CutPrefix(normalized, b.templateDir+"/"); ok {
			keys = append(keys, rel, "./"+rel)
		}
	}

	return keys
}

// fontMIMEs covers extensions the stdlib mime table misses on bare systems.
var fontMIMEs = map[string]string{
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".eot":   "application/vnd.ms-fontobject",
}

// MIMEForPath returns the media type for an extracted entry based on its
// extension, defaulting to application/octet-stream.
func MIMEForPath(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if m, ok := fontMIMEs[ext]; ok {
		return m
	}
	if m := mime.TypeByExtension(ext); m != "" {
		return m
	}
	return "application/octet-stream"
}
