// Package persist provides codec-based file persistence for tree snapshots and
// other state types.
package persist

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// ErrUnknownCodec is returned by CodecFor for an unsupported codec name.
var ErrUnknownCodec = errors.New("unknown codec")

// Codec names accepted by CodecFor.
const (
	CodecJSON = "json"
	CodecGob  = "gob"
)

// File extensions for supported codecs.
const (
	jsonExtension = ".json"
	gobExtension  = ".gob"
	lz4Extension  = ".lz4"
)

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// Codec defines how state is serialized and deserialized.
type Codec interface {
	// Name identifies the codec stack, e.g. "json" or "gob+lz4".
	Name() string
	// Encode writes the state to the writer.
	Encode(w io.Writer, state any) error
	// Decode reads the state from the reader.
	Decode(r io.Reader, state any) error
	// Extension returns the file extension for this codec (e.g., ".json", ".gob.lz4").
	Extension() string
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(state)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	err := json.NewDecoder(r).Decode(state)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Name implements Codec.Name.
func (c *JSONCodec) Name() string {
	return CodecJSON
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// GobCodec implements Codec using gob encoding.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec {
	return &GobCodec{}
}

// Encode implements Codec.Encode using gob encoding.
func (c *GobCodec) Encode(w io.Writer, state any) error {
	err := gob.NewEncoder(w).Encode(state)
	if err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using gob decoding.
func (c *GobCodec) Decode(r io.Reader, state any) error {
	err := gob.NewDecoder(r).Decode(state)
	if err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}

	return nil
}

// Name implements Codec.Name.
func (c *GobCodec) Name() string {
	return CodecGob
}

// Extension implements Codec.Extension for gob files.
func (c *GobCodec) Extension() string {
	return gobExtension
}

// LZ4Codec wraps another codec in an lz4 frame.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec creates an lz4-framed codec around inner.
func NewLZ4Codec(inner Codec) *LZ4Codec {
	return &LZ4Codec{Inner: inner}
}

// Encode implements Codec.Encode. The frame is closed before returning.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	zw := lz4.NewWriter(w)

	err := c.Inner.Encode(zw, state)
	if err != nil {
		return errors.Join(err, zw.Close())
	}

	err = zw.Close()
	if err != nil {
		return fmt.Errorf("lz4 close: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	return c.Inner.Decode(lz4.NewReader(r), state)
}

// Name implements Codec.Name.
func (c *LZ4Codec) Name() string {
	return c.Inner.Name() + "+lz4"
}

// Extension implements Codec.Extension by appending ".lz4" to the inner one.
func (c *LZ4Codec) Extension() string {
	return c.Inner.Extension() + lz4Extension
}

// SchemaCodec validates JSON documents against a JSON schema on both encode
// and decode. Inner must produce JSON.
type SchemaCodec struct {
	Inner  Codec
	Schema string
}

// NewSchemaCodec creates a validating codec around inner.
func NewSchemaCodec(inner Codec, schema string) *SchemaCodec {
	return &SchemaCodec{Inner: inner, Schema: schema}
}

// Encode implements Codec.Encode. Nothing is written when validation fails.
func (c *SchemaCodec) Encode(w io.Writer, state any) error {
	var buf bytes.Buffer

	err := c.Inner.Encode(&buf, state)
	if err != nil {
		return err
	}

	err = ValidateJSON(c.Schema, buf.Bytes())
	if err != nil {
		return err
	}

	_, err = w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode.
func (c *SchemaCodec) Decode(r io.Reader, state any) error {
	doc, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	err = ValidateJSON(c.Schema, doc)
	if err != nil {
		return err
	}

	return c.Inner.Decode(bytes.NewReader(doc), state)
}

// Name implements Codec.Name. Validation does not change the wire format.
func (c *SchemaCodec) Name() string {
	return c.Inner.Name()
}

// Extension implements Codec.Extension.
func (c *SchemaCodec) Extension() string {
	return c.Inner.Extension()
}

// CodecFor builds the codec named by name ("json" or "gob"), optionally lz4
// compressed. A non-empty schema validates JSON documents; gob ignores it.
func CodecFor(name string, compress bool, schema string) (Codec, error) {
	var codec Codec

	switch strings.ToLower(name) {
	case CodecJSON:
		codec = NewJSONCodec()
		if schema != "" {
			codec = NewSchemaCodec(codec, schema)
		}
	case CodecGob:
		codec = NewGobCodec()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	if compress {
		codec = NewLZ4Codec(codec)
	}

	return codec, nil
}
