package archive

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"go.mongodb.org/mongo-driver/bson"
)

// binMagic opens every BIN archive; the byte after it is the version.
var binMagic = [4]byte{'E', 'C', 'D', 'B'}

// maxBINSize bounds the decompressed payload.
const maxBINSize = 1 << 30

func encodeBIN(w io.Writer, doc *Document) error {
	payload, err := bson.Marshal(withVersion(doc))
	if err != nil {
		return fmt.Errorf("bson: %w", err)
	}
	if _, err := w.Write(append(binMagic[:], byte(Version))); err != nil {
		return err
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("zstd: %w", err)
	}
	if _, err := zw.Write(payload); err != nil {
		zw.Close()
		return fmt.Errorf("zstd: %w", err)
	}
	return zw.Close()
}

func decodeBIN(r io.Reader) (*Document, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if [4]byte(header[:4]) != binMagic {
		return nil, fmt.Errorf("bad magic %q", header[:4])
	}
	if int(header[4]) > Version {
		return nil, fmt.Errorf("unsupported version %d", header[4])
	}

	zr, err := zstd.NewReader(r, zstd.WithDecoderMaxMemory(maxBINSize))
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	defer zr.Close()
	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}

	var doc Document
	if err := bson.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("bson: %w", err)
	}
	return &doc, nil
}

func withVersion(doc *Document) *Document {
	if doc.Version != 0 {
		return doc
	}
	d := *doc
	d.Version = Version
	return &d
}
