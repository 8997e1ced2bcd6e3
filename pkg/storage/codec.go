package storage

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// File extensions for supported codecs.
const (
	jsonExtension = ".json"
	gobExtension  = ".gob"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// Codec defines how the key-value document is serialized on disk.
type Codec interface {
	// Encode writes the document.
	Encode(w io.Writer, doc map[string]string) error
	// Decode reads the document.
	Decode(r io.Reader) (map[string]string, error)
	// Extension returns the file extension for this codec.
	Extension() string
}

// JSONCodec stores the document as a JSON object.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with 2-space indentation.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.
func (c *JSONCodec) Encode(w io.Writer, doc map[string]string) error {
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

// Decode implements Codec.
func (c *JSONCodec) Decode(r io.Reader) (map[string]string, error) {
	doc := make(map[string]string)

	err := json.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	return doc, nil
}

// Extension implements Codec.
func (c *JSONCodec) Extension() string { return jsonExtension }

// GobCodec stores the document with encoding/gob.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec { return &GobCodec{} }

// Encode implements Codec.
func (c *GobCodec) Encode(w io.Writer, doc map[string]string) error {
	err := gob.NewEncoder(w).Encode(doc)
	if err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (c *GobCodec) Decode(r io.Reader) (map[string]string, error) {
	doc := make(map[string]string)

	err := gob.NewDecoder(r).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}

	return doc, nil
}

// Extension implements Codec.
func (c *GobCodec) Extension() string { return gobExtension }

// CodecFor picks a codec from the file extension. Anything other than .gob
// is treated as JSON.
func CodecFor(path string) Codec {
	if strings.EqualFold(filepath.Ext(path), gobExtension) {
		return NewGobCodec()
	}

	return NewJSONCodec()
}
