// Package errs defines the sentinel errors returned by irstream packages.
//
// Errors are wrapped at the call site with additional context, so callers should
// compare with errors.Is rather than equality:
//
//	if errors.Is(err, errs.ErrIncompleteStream) {
//	    // the input was truncated
//	}
package errs

import (
	"errors"
	"fmt"
)

// Stream buffer errors.
var (
	ErrInvalidCapacity = errors.New("invalid buffer capacity")
	ErrOutOfMemory     = errors.New("buffer allocation exceeds capacity limit")
	ErrOverflow        = errors.New("consumed bytes exceed the unconsumed buffer length")
)

// Decoding errors.
var (
	// ErrIncompleteStream reports that the byte source was exhausted before a complete
	// unit or the end-of-stream tag was observed.
	ErrIncompleteStream = errors.New("incomplete IR stream")

	// ErrIncompleteIR is returned by the unit decoder when the given bytes end in the middle
	// of a unit. Nothing is consumed; the caller is expected to supply more bytes and retry.
	ErrIncompleteIR = errors.New("incomplete IR unit")

	// ErrEndOfIR is returned by the unit decoder when it reads the end-of-stream tag.
	ErrEndOfIR = errors.New("end of IR stream")

	// ErrDecode is the parent of every *DecodeError.
	ErrDecode = errors.New("malformed IR")

	ErrInvalidMagicNumber     = errors.New("invalid IR magic number")
	ErrUnsupportedEncoding    = errors.New("unsupported IR encoding")
	ErrUnsupportedVersion     = errors.New("unsupported IR protocol version")
	ErrMetadataCorrupted      = errors.New("corrupted IR metadata")
	ErrMetadataAlreadyDecoded = errors.New("IR metadata has already been decoded")
	ErrMetadataNotDecoded     = errors.New("IR metadata has not been decoded")
)

// Query errors.
var (
	ErrInvalidQuery = errors.New("invalid query")
)

// Encoding and writer errors.
var (
	ErrEncode                 = errors.New("cannot encode value")
	ErrWriterClosed           = errors.New("writer is closed")
	ErrUnsupportedCompression = errors.New("unsupported compression type")
)

// DecodeErrorCode classifies a malformed unit.
type DecodeErrorCode uint8

const (
	CodeUnknownTag DecodeErrorCode = iota + 1
	CodeUnexpectedTag
	CodeInvalidLength
	CodeMissingVariable
	CodeCorruptedLogtype
)

func (c DecodeErrorCode) String() string {
	switch c {
	case CodeUnknownTag:
		return "UnknownTag"
	case CodeUnexpectedTag:
		return "UnexpectedTag"
	case CodeInvalidLength:
		return "InvalidLength"
	case CodeMissingVariable:
		return "MissingVariable"
	case CodeCorruptedLogtype:
		return "CorruptedLogtype"
	default:
		return "Unknown"
	}
}

// DecodeError is returned when the unit decoder finds bytes it cannot interpret.
// Offset is relative to the start of the unit being decoded.
type DecodeError struct {
	Code   DecodeErrorCode
	Offset int
	Tag    byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s (tag 0x%02x at offset %d)", ErrDecode, e.Code, e.Tag, e.Offset)
}

// Unwrap makes errors.Is(err, ErrDecode) hold for every DecodeError.
func (e *DecodeError) Unwrap() error {
	return ErrDecode
}
