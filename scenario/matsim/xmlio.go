package matsim

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// IsGzip reports whether path names a gzip-compressed file.
func IsGzip(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens path for reading, transparently decompressing .gz files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !IsGzip(path) {
		return f, nil
	}
	zr, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
	}
	return &multiCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
	buf     *bufio.Writer
}

func (w *writeCloser) Close() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	for _, c := range w.closers {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Create creates path (and missing parent directories) for writing,
// compressing when the name ends in .gz.
func Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !IsGzip(path) {
		buf := bufio.NewWriter(f)
		return &writeCloser{Writer: buf, buf: buf, closers: []io.Closer{f}}, nil
	}
	zw := gzip.NewWriter(f)
	buf := bufio.NewWriter(zw)
	return &writeCloser{Writer: buf, buf: buf, closers: []io.Closer{zw, f}}, nil
}

// ReadXML decodes the document at path into v.
func ReadXML(path string, v any) error {
	r, err := Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = r.Close() }()
	if err := xml.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// WriteXML encodes v to path with an XML declaration and an optional DOCTYPE line.
func WriteXML(path, doctype string, v any) error {
	w, err := Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := EncodeXML(w, doctype, v); err != nil {
		_ = w.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// EncodeXML writes an indented document to w.
func EncodeXML(w io.Writer, doctype string, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if doctype != "" {
		if _, err := io.WriteString(w, doctype+"\n"); err != nil {
			return err
		}
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(v); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// TrimExtensions strips a trailing .gz and then a trailing .xml from path.
func TrimExtensions(path string) string {
	path = strings.TrimSuffix(path, ".gz")
	return strings.TrimSuffix(path, ".xml")
}
