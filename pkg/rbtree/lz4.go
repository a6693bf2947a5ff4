// Package rbtree provides an arena-backed red-black tree with lz4 hibernation
// of its node columns and structure-preserving snapshots.
package rbtree

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// ErrCorruptBlock is returned when a compressed column cannot be restored.
var ErrCorruptBlock = errors.New("corrupt compressed block")

// uint32ByteSize is the number of bytes in a uint32.
const uint32ByteSize = 4

// Block modes, stored in the first byte of every compressed column.
const (
	blockRaw byte = 0
	blockLZ4 byte = 1
)

// CompressUInt32Slice compresses a slice of uint32-s with LZ4. Incompressible
// input is stored raw behind the mode byte so the round trip never loses data.
func CompressUInt32Slice(data []uint32) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(blockRaw)

	writeErr := binary.Write(buf, binary.LittleEndian, data)
	if writeErr != nil {
		return nil
	}

	raw := buf.Bytes()[1:]
	compressed := make([]byte, 1+lz4.CompressBlockBound(len(raw)))

	written, err := lz4.CompressBlock(raw, compressed[1:], nil)
	if err != nil || written == 0 {
		return buf.Bytes()
	}

	compressed[0] = blockLZ4

	return compressed[:1+written]
}

// DecompressUInt32Slice decompresses a slice of uint32-s previously compressed
// with CompressUInt32Slice. `result` must be preallocated to the original length.
func DecompressUInt32Slice(data []byte, result []uint32) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty block", ErrCorruptBlock)
	}

	var raw []byte

	switch data[0] {
	case blockRaw:
		raw = data[1:]
	case blockLZ4:
		raw = make([]byte, len(result)*uint32ByteSize)

		read, err := lz4.UncompressBlock(data[1:], raw)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptBlock, err)
		}

		raw = raw[:read]
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrCorruptBlock, data[0])
	}

	if len(raw) != len(result)*uint32ByteSize {
		return fmt.Errorf("%w: %d bytes for %d values", ErrCorruptBlock, len(raw), len(result))
	}

	err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, result)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptBlock, err)
	}

	return nil
}
