package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/observability"
)

// Format identifies an on-disk format.
type Format string

const (
	FormatBIN Format = "bin"
	FormatXML Format = "xml"
)

// ErrUnknownFormat is returned for a format name other than bin or xml.
var ErrUnknownFormat = errors.New(errors.ErrCodeInvalidFormat, "unknown archive format")

// Formats lists the supported formats.
func Formats() []Format { return []Format{FormatBIN, FormatXML} }

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatBIN, FormatXML:
		return f, nil
	}
	return "", errors.Wrap(errors.ErrCodeInvalidFormat, ErrUnknownFormat, "%q", s)
}

// FormatFromPath picks the format by file extension: .xml is XML, anything
// else is BIN.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return FormatXML
	}
	return FormatBIN
}

// Ext returns the conventional file extension, with the dot.
func (f Format) Ext() string {
	if f == FormatXML {
		return ".xml"
	}
	return ".ecad"
}

func (f Format) String() string { return string(f) }

// Encode writes doc to w in format f. XML cannot carry control characters
// or invalid UTF-8, so encoding a document holding them as XML fails with
// INVALID_INPUT instead of altering the text.
func Encode(ctx context.Context, w io.Writer, doc *Document, f Format) (err error) {
	start := time.Now()
	cw := &countingWriter{w: w}
	defer func() {
		observability.Archive().OnEncode(ctx, string(f), cw.n, time.Since(start), err)
	}()

	switch f {
	case FormatBIN:
		err = encodeBIN(cw, doc)
	case FormatXML:
		if err = checkXMLStrings(doc); err != nil {
			return err
		}
		err = encodeXML(cw, doc)
	default:
		return errors.Wrap(errors.ErrCodeInvalidFormat, ErrUnknownFormat, "%q", string(f))
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode %s", f)
	}
	return nil
}

// Decode reads a document in format f from r.
func Decode(ctx context.Context, r io.Reader, f Format) (doc *Document, err error) {
	start := time.Now()
	cr := &countingReader{r: r}
	defer func() {
		observability.Archive().OnDecode(ctx, string(f), cr.n, time.Since(start), err)
	}()

	switch f {
	case FormatBIN:
		doc, err = decodeBIN(cr)
	case FormatXML:
		doc, err = decodeXML(cr)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, ErrUnknownFormat, "%q", string(f))
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", f)
	}
	if doc.Version > Version {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "document version %d is newer than supported version %d", doc.Version, Version)
	}
	return doc, nil
}

// Marshal returns doc encoded in format f.
func Marshal(ctx context.Context, doc *Document, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(ctx, &buf, doc, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data in format f.
func Unmarshal(ctx context.Context, data []byte, f Format) (*Document, error) {
	return Decode(ctx, bytes.NewReader(data), f)
}

// Sniff guesses the format of data from its first bytes.
func Sniff(data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, binMagic[:]):
		return FormatBIN, nil
	case bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("<")):
		return FormatXML, nil
	}
	return "", fmt.Errorf("%w: unrecognized header", ErrUnknownFormat)
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
