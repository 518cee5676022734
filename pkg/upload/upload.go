package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"anoa.com/eduainexus/pkg/apperror"
	"github.com/gabriel-vasile/mimetype"
)

// File is an uploaded file held in memory. Its type is sniffed from the content,
// never taken from the client's Content-Type header.
type File struct {
	Name string
	Data []byte
	mime *mimetype.MIME
}

// Read loads fh when it is at most max bytes.
func Read(fh *multipart.FileHeader, max int64) (*File, error) {
	if fh.Size > max {
		return nil, fmt.Errorf("%s is larger than %d bytes: %w", fh.Filename, max, apperror.ErrPayloadTooLarge)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	return ReadFrom(f, fh.Filename, max)
}

// ReadFrom is Read for a plain reader.
func ReadFrom(r io.Reader, name string, max int64) (*File, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%s is larger than %d bytes: %w", name, max, apperror.ErrPayloadTooLarge)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty: %w", name, apperror.ErrBadRequest)
	}
	return &File{Name: name, Data: data, mime: mimetype.Detect(data)}, nil
}

// MIMEType is the sniffed type without parameters, e.g. "text/plain".
func (f *File) MIMEType() string {
	t, _, _ := strings.Cut(f.mime.String(), ";")
	return strings.TrimSpace(t)
}

// Is reports whether the content is one of types. An entry like "image/*" matches
// the whole family. Parents count, so "text/plain" also accepts csv.
func (f *File) Is(types ...string) bool {
	for m := f.mime; m != nil; m = m.Parent() {
		for _, t := range types {
			if family, ok := strings.CutSuffix(t, "/*"); ok {
				if strings.HasPrefix(m.String(), family+"/") {
					return true
				}
				continue
			}
			if m.Is(t) {
				return true
			}
		}
	}
	return false
}

// Require returns ErrUnsupportedMedia unless the content is one of types.
func (f *File) Require(types ...string) error {
	if f.Is(types...) {
		return nil
	}
	return fmt.Errorf("%s has unsupported type %s: %w", f.Name, f.MIMEType(), apperror.ErrUnsupportedMedia)
}

// Title is the file name without directory or extension.
func (f *File) Title() string {
	base := filepath.Base(f.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
