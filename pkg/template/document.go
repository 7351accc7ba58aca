package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Source identifies where a template document originated so loaders can
// operate on files or fs.FS entries without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
)

type fileSource struct {
	path string
}

func (s fileSource) Kind() SourceKind  { return SourceKindFile }
func (s fileSource) Location() string { return s.path }

// SourceFromFile returns a Source pointing to an on-disk template.
func SourceFromFile(p string) Source {
	return fileSource{path: filepath.Clean(p)}
}

type fsSource struct {
	name string
}

func (s fsSource) Kind() SourceKind  { return SourceKindFS }
func (s fsSource) Location() string { return s.name }

// SourceFromFS returns a Source identifying a template inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// Document wraps the opaque markup and stylesheet of one uploaded template.
// The markup is never compiled; discovery and binding treat it as a
// traversable tree.
type Document struct {
	markup     []byte
	stylesheet []byte
	dir        string
	source     Source
}

// NewDocument constructs a Document wrapper while validating the inputs. The
// stylesheet may be empty; markup is required.
func NewDocument(src Source, markup, stylesheet []byte) (Document, error) {
	if len(markup) == 0 {
		return Document{}, errors.New("template: markup is empty")
	}

	dir := ""
	if src != nil {
		dir = path.Dir(filepath.ToSlash(src.Location()))
		if dir == "." || dir == "/" {
			dir = ""
		}
	}

	return Document{
		markup:     append([]byte(nil), markup...),
		stylesheet: append([]byte(nil), stylesheet...),
		dir:        dir,
		source:     src,
	}, nil
}

// MustNewDocument panics if the document cannot be created. Useful for tests.
func MustNewDocument(src Source, markup, stylesheet []byte) Document {
	doc, err := NewDocument(src, markup, stylesheet)
	if err != nil {
		panic(err)
	}
	return doc
}

// Markup returns a copy of the raw template markup.
func (d Document) Markup() []byte {
	return append([]byte(nil), d.markup...)
}

// Stylesheet returns a copy of the raw stylesheet text.
func (d Document) Stylesheet() []byte {
	return append([]byte(nil), d.stylesheet...)
}

// Dir returns the directory of the template inside its upload, used by asset
// resolution to generate template-relative candidate keys.
func (d Document) Dir() string {
	return d.dir
}

// Source returns the origin metadata, nil for in-memory documents.
func (d Document) Source() Source {
	return d.source
}

// Load reads a Document from a Source. FS sources require the fsys argument;
// file sources read from disk. The stylesheet, when present, is expected next
// to the markup with a .css extension.
func Load(src Source, fsys fs.FS) (Document, error) {
	if src == nil {
		return Document{}, errors.New("template: source is required")
	}

	read := func(name string) ([]byte, error) {
		if src.Kind() == SourceKindFS {
			if fsys == nil {
				return nil, errors.New("template: fs source requires an fs.FS")
			}
			return fs.ReadFile(fsys, name)
		}
		return os.ReadFile(name)
	}

	markup, err := read(src.Location())
	if err != nil {
		return Document{}, fmt.Errorf("template: read markup %q: %w", src.Location(), err)
	}

	cssPath := stylesheetPath(src.Location())
	stylesheet, err := read(cssPath)
	if err != nil {
		// The stylesheet is optional; templates may inline their styles.
		stylesheet = nil
	}

	return NewDocument(src, markup, stylesheet)
}

func stylesheetPath(markupPath string) string {
	ext := path.Ext(markupPath)
	if ext == "" {
		return markupPath + ".css"
	}
	return markupPath[:len(markupPath)-len(ext)] + ".css"
}
