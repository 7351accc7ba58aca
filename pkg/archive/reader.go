// Package archive handles the container boundary: reading uploaded
// template bundles into partitioned entries and packaging rendered rasters
// into a single downloadable zip.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Entry is one named file extracted from an upload.
type Entry struct {
	Path string
	Data []byte
}

// Upload partitions the entries of an uploaded container by extension into
// the sets the engine consumes.
type Upload struct {
	Markup      []Entry
	Stylesheets []Entry
	Images      []Entry
	Fonts       []Entry
	Records     []Entry
	Other       []Entry
}

var (
	markupExts = map[string]struct{}{".html": {}, ".htm": {}}
	styleExts  = map[string]struct{}{".css": {}}
	imageExts  = map[string]struct{}{
		".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".webp": {},
	}
	fontExts = map[string]struct{}{
		".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
	}
	recordExts = map[string]struct{}{".json": {}, ".jsonc": {}}
)

// ReadBytes reads a zip container held in memory.
func ReadBytes(data []byte) (Upload, error) {
	return Read(bytes.NewReader(data), int64(len(data)))
}

// Read extracts and partitions every regular file in a zip container.
// Directory entries and archiver junk are skipped.
func Read(r io.ReaderAt, size int64) (Upload, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Upload{}, fmt.Errorf("archive: open container: %w", err)
	}

	var upload Upload
	for _, file := range zr.File {
		if file.FileInfo().IsDir() || skipEntry(file.Name) {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return Upload{}, fmt.Errorf("archive: open entry %q: %w", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return Upload{}, fmt.Errorf("archive: read entry %q: %w", file.Name, err)
		}

		entry := Entry{Path: strings.TrimPrefix(file.Name, "/"), Data: data}
		switch ext := strings.ToLower(path.Ext(file.Name)); {
		case member(markupExts, ext):
			upload.Markup = append(upload.Markup, entry)
		case member(styleExts, ext):
			upload.Stylesheets = append(upload.Stylesheets, entry)
		case member(imageExts, ext):
			upload.Images = append(upload.Images, entry)
		case member(fontExts, ext):
			upload.Fonts = append(upload.Fonts, entry)
		case member(recordExts, ext):
			upload.Records = append(upload.Records, entry)
		default:
			upload.Other = append(upload.Other, entry)
		}
	}

	return upload, nil
}

// Assets returns the image and font entries in extraction order, the set an
// asset bundle is built from.
func (u Upload) Assets() []Entry {
	out := make([]Entry, 0, len(u.Images)+len(u.Fonts))
	out = append(out, u.Images...)
	out = append(out, u.Fonts...)
	return out
}

func member(set map[string]struct{}, ext string) bool {
	_, ok := set[ext]
	return ok
}

func skipEntry(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	base := path.Base(name)
	return strings.HasPrefix(base, ".")
}
