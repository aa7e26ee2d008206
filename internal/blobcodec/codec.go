// Package blobcodec encodes the opaque resource blobs stored on graph
// nodes: values are serialized with MessagePack and compressed with zstd.
package blobcodec

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrEmpty is returned when decoding a zero-length blob.
var ErrEmpty = errors.New("empty blob")

// Encode serializes v and compresses the result.
func Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("msgpack encoding failed: %w", err)
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, nil), nil
}

// Decode decompresses data and deserializes it into v, which must be a
// pointer.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmpty
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer decoder.Close()

	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}
	if err := msgpack.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("msgpack decoding failed: %w", err)
	}
	return nil
}
