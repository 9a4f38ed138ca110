package record

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the whole-buffer codec applied after serialization.
type Compression uint8

const (
	// CompressionNone stores the serialized form as-is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression. The default: raw image
	// bytes are hot-path data and decode speed matters more than ratio.
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression for a better ratio on
	// cold datasets.
	CompressionZSTD Compression = 2
)

// ParseCompression maps a user-facing name to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// Blob layout: [codec u8][uncompressedSize u32][compressedSize u32][data].
// compressedSize == 0 means the data is stored uncompressed, which happens
// for CompressionNone and for incompressible payloads (already-compressed
// image formats are common).
const blobHeaderSize = 9

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func compress(data []byte, c Compression) ([]byte, error) {
	var compressed []byte

	switch c {
	case CompressionNone:
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(data))
		buf := make([]byte, bound)
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n] // n == 0: incompressible
	case CompressionZSTD:
		enc := getZstdEncoder()
		defer zstdEncoderPool.Put(enc)
		compressed = enc.EncodeAll(data, nil)
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}

	// Store uncompressed when compression does not pay for itself.
	if len(compressed) == 0 || len(compressed) >= len(data) {
		out := make([]byte, blobHeaderSize+len(data))
		out[0] = byte(c)
		binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
		binary.LittleEndian.PutUint32(out[5:], 0)
		copy(out[blobHeaderSize:], data)
		return out, nil
	}

	out := make([]byte, blobHeaderSize+len(compressed))
	out[0] = byte(c)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[5:], uint32(len(compressed)))
	copy(out[blobHeaderSize:], compressed)
	return out, nil
}

func decompress(blob []byte) ([]byte, error) {
	if len(blob) < blobHeaderSize {
		return nil, fmt.Errorf("%w: blob too small for header", ErrCorrupt)
	}

	codec := Compression(blob[0])
	// The size fields come off disk: widen them to int before any bounds
	// math so oversized values fail the checks instead of wrapping.
	uncompressedSize := int(binary.LittleEndian.Uint32(blob[1:]))
	compressedSize := int(binary.LittleEndian.Uint32(blob[5:]))

	if compressedSize == 0 {
		if len(blob) < blobHeaderSize+uncompressedSize {
			return nil, fmt.Errorf("%w: truncated blob", ErrCorrupt)
		}
		return blob[blobHeaderSize : blobHeaderSize+uncompressedSize], nil
	}

	if len(blob) < blobHeaderSize+compressedSize {
		return nil, fmt.Errorf("%w: truncated blob", ErrCorrupt)
	}
	data := blob[blobHeaderSize : blobHeaderSize+compressedSize]

	switch codec {
	case CompressionLZ4:
		out := make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if n != uncompressedSize {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(data, make([]byte, 0, uncompressedSize))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if len(out) != uncompressedSize {
			return nil, fmt.Errorf("%w: size mismatch", ErrCorrupt)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown codec %d", ErrCorrupt, codec)
	}
}
