package cachefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// File extensions for supported codecs.
const (
	JSONExtension = ".json"
	LZ4Extension  = ".lz4"
)

// Codec defines how a document is serialized and deserialized.
type Codec interface {
	// Encode writes the document to the writer.
	Encode(w io.Writer, doc *Document) error
	// Decode reads and validates a document from the reader.
	Decode(r io.Reader) (*Document, error)
	// Extension returns the file extension for this codec.
	Extension() string
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a compact JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, doc *Document) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(doc)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *JSONCodec) Decode(r io.Reader) (*Document, error) {
	return Decode(r)
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return JSONExtension
}

// LZ4Codec wraps another codec in an LZ4 frame.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec creates an LZ4-framed JSON codec.
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{Inner: NewJSONCodec()}
}

// Encode implements Codec.Encode.
func (c *LZ4Codec) Encode(w io.Writer, doc *Document) error {
	zw := lz4.NewWriter(w)

	err := c.Inner.Encode(zw, doc)
	if err != nil {
		return err
	}

	closeErr := zw.Close()
	if closeErr != nil {
		return fmt.Errorf("lz4 close: %w", closeErr)
	}

	return nil
}

// Decode implements Codec.Decode. A stream that is not a valid LZ4 frame
// fails with *CacheParseError.
func (c *LZ4Codec) Decode(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(lz4.NewReader(r))
	if err != nil {
		return nil, parseError("lz4 decompress", err)
	}

	return c.Inner.Decode(bytes.NewReader(raw))
}

// Extension implements Codec.Extension for LZ4 files.
func (c *LZ4Codec) Extension() string {
	return LZ4Extension
}

// CodecFor selects the codec by file name: a .lz4 suffix selects LZ4 framing,
// anything else plain JSON.
func CodecFor(path string) Codec {
	if strings.HasSuffix(strings.ToLower(path), LZ4Extension) {
		return NewLZ4Codec()
	}

	return NewJSONCodec()
}
