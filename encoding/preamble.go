package encoding

import (
	"bytes"
	"fmt"
	"math"

	"github.com/arloliu/irstream/endian"
	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/format"
)

// MaxMetadataLength is the largest metadata block the preamble can carry.
const MaxMetadataLength = math.MaxUint16

// Preamble is the undecoded stream header.
type Preamble struct {
	// Encoding is the variable encoding announced by the magic number.
	Encoding format.EncodingType
	// Metadata is the raw JSON metadata block.
	Metadata []byte
	// Size is the number of bytes the preamble occupies in the stream.
	Size int
}

// DetectEncoding maps a magic number to its variable encoding.
// Returns errs.ErrIncompleteIR when magic is shorter than format.MagicNumberLength.
func DetectEncoding(magic []byte) (format.EncodingType, error) {
	if len(magic) < format.MagicNumberLength {
		return 0, errs.ErrIncompleteIR
	}

	switch {
	case bytes.Equal(magic[:format.MagicNumberLength], format.FourByteMagicNumber[:]):
		return format.TypeFourByte, nil
	case bytes.Equal(magic[:format.MagicNumberLength], format.EightByteMagicNumber[:]):
		return format.TypeEightByte, nil
	default:
		return 0, fmt.Errorf("%w: % x", errs.ErrInvalidMagicNumber, magic[:format.MagicNumberLength])
	}
}

// DecodePreamble decodes the magic number and the metadata block at the start of buf.
//
// Like DecodeUnit it returns errs.ErrIncompleteIR when buf is too short, in which case the
// caller should supply more bytes and retry. An eight-byte stream is reported as
// errs.ErrUnsupportedEncoding after the full preamble is available, so that the returned
// Preamble still describes it.
func DecodePreamble(buf []byte) (Preamble, error) {
	enc, err := DetectEncoding(buf)
	if err != nil {
		return Preamble{}, err
	}

	r := unitReader{buf: buf, pos: format.MagicNumberLength, engine: endian.GetIREngine()}
	tag, ok := r.readByte()
	if !ok {
		return Preamble{}, errs.ErrIncompleteIR
	}
	if tag != format.MetadataEncodingJSON {
		return Preamble{}, fmt.Errorf("%w: unsupported metadata encoding 0x%02x", errs.ErrMetadataCorrupted, tag)
	}

	lengthTag, ok := r.readByte()
	if !ok {
		return Preamble{}, errs.ErrIncompleteIR
	}

	var length int
	switch lengthTag {
	case format.MetadataLengthUByte:
		b, ok := r.readByte()
		if !ok {
			return Preamble{}, errs.ErrIncompleteIR
		}
		length = int(b)
	case format.MetadataLengthUShort:
		b, ok := r.read(2)
		if !ok {
			return Preamble{}, errs.ErrIncompleteIR
		}
		length = int(r.engine.Uint16(b))
	default:
		return Preamble{}, fmt.Errorf("%w: invalid metadata length tag 0x%02x", errs.ErrMetadataCorrupted, lengthTag)
	}

	metadata, ok := r.read(length)
	if !ok {
		return Preamble{}, errs.ErrIncompleteIR
	}

	p := Preamble{Encoding: enc, Metadata: bytes.Clone(metadata), Size: r.pos}
	if enc != format.TypeFourByte {
		return p, fmt.Errorf("%w: %s", errs.ErrUnsupportedEncoding, enc)
	}

	return p, nil
}

// AppendPreamble appends the four-byte magic number and the JSON metadata block to dst.
func AppendPreamble(dst []byte, metadata []byte) ([]byte, error) {
	if len(metadata) > MaxMetadataLength {
		return dst, fmt.Errorf("%w: metadata length %d exceeds %d", errs.ErrEncode, len(metadata), MaxMetadataLength)
	}

	engine := endian.GetIREngine()
	dst = append(dst, format.FourByteMagicNumber[:]...)
	dst = append(dst, format.MetadataEncodingJSON)
	if len(metadata) <= math.MaxUint8 {
		dst = append(dst, format.MetadataLengthUByte, byte(len(metadata)))
	} else {
		dst = append(dst, format.MetadataLengthUShort)
		dst = engine.AppendUint16(dst, uint16(len(metadata))) //nolint:gosec
	}

	return append(dst, metadata...), nil
}
