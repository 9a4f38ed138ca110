// Package record implements the on-disk record encoding.
//
// A record is a (imageBytes, label[, maskBytes]) tuple serialized with
// msgpack and then block-compressed as a whole. The serialized form is a
// msgpack array whose first element is an explicit format tag, so the
// two-argument and three-argument shapes are distinguishable on the wire.
//
// Record selection is a compatibility boundary: bytes written by one codec
// configuration decode with any configuration, because the compression
// codec is tagged in the blob header.
package record

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Format tags for the serialized tuple. The tag is the first element of the
// msgpack array.
const (
	formatImage     = 1 // (image, label)
	formatImageMask = 2 // (image, label, mask)
)

// ErrCorrupt is returned when a blob cannot be decoded.
var ErrCorrupt = errors.New("record: corrupt data")

// EncodingError indicates a serialization or compression failure.
//
// The original underlying error can be accessed via errors.Unwrap.
type EncodingError struct {
	cause error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("record: encode: %v", e.cause)
}

func (e *EncodingError) Unwrap() error { return e.cause }

// Record is one decoded sample.
type Record struct {
	Image []byte
	Label int64
	Mask  []byte // nil when the sample has no mask
}

// HasMask reports whether the record carries mask bytes.
func (r Record) HasMask() bool { return r.Mask != nil }

// Encode serializes and compresses a record into an opaque blob.
//
// Encode is a pure function and safe to call from many goroutines.
func Encode(r Record, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)

	format, arity := formatImage, 3
	if r.HasMask() {
		format, arity = formatImageMask, 4
	}

	if err := enc.EncodeArrayLen(arity); err != nil {
		return nil, &EncodingError{cause: err}
	}
	if err := enc.EncodeInt(int64(format)); err != nil {
		return nil, &EncodingError{cause: err}
	}
	if err := enc.EncodeBytes(r.Image); err != nil {
		return nil, &EncodingError{cause: err}
	}
	if err := enc.EncodeInt(r.Label); err != nil {
		return nil, &EncodingError{cause: err}
	}
	if r.HasMask() {
		if err := enc.EncodeBytes(r.Mask); err != nil {
			return nil, &EncodingError{cause: err}
		}
	}

	out, err := compress(buf.Bytes(), c)
	if err != nil {
		return nil, &EncodingError{cause: err}
	}
	return out, nil
}

// Decode reverses Encode.
func Decode(blob []byte) (Record, error) {
	payload, err := decompress(blob)
	if err != nil {
		return Record{}, err
	}

	dec := msgpack.NewDecoder(bytes.NewReader(payload))

	arity, err := dec.DecodeArrayLen()
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	format, err := dec.DecodeInt64()
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	switch {
	case format == formatImage && arity == 3:
	case format == formatImageMask && arity == 4:
	default:
		return Record{}, fmt.Errorf("%w: format %d with arity %d", ErrCorrupt, format, arity)
	}

	var r Record
	if r.Image, err = dec.DecodeBytes(); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if r.Label, err = dec.DecodeInt64(); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if format == formatImageMask {
		if r.Mask, err = dec.DecodeBytes(); err != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if r.Mask == nil {
			// keep HasMask true for a present-but-empty mask
			r.Mask = []byte{}
		}
	}
	return r, nil
}

// EncodeValue serializes and compresses an arbitrary value with the same
// encoding family as records. Used for the reserved metadata keys.
func EncodeValue(v any, c Compression) ([]byte, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return nil, &EncodingError{cause: err}
	}
	out, err := compress(payload, c)
	if err != nil {
		return nil, &EncodingError{cause: err}
	}
	return out, nil
}

// DecodeValue reverses EncodeValue.
func DecodeValue(blob []byte, v any) error {
	payload, err := decompress(blob)
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}
