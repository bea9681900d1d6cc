package encoding

import (
	"fmt"

	"github.com/arloliu/irstream/endian"
	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/format"
	"github.com/arloliu/irstream/internal/pool"
)

// Unit is one decoded log event unit.
type Unit struct {
	// Logtype is the message with every variable replaced by its placeholder.
	Logtype string
	// Message is the reconstructed log message.
	Message string
	// TimestampDelta is the signed offset from the previous event's timestamp, in milliseconds.
	TimestampDelta int64
	// Size is the number of bytes the unit occupies in the stream.
	Size int
}

// FourByteDecoder decodes units of four-byte encoded IR streams.
//
// It is stateless and safe for concurrent use.
type FourByteDecoder struct{}

// DecodeUnit implements the unit decoder used by the decode loop. See DecodeUnit.
func (FourByteDecoder) DecodeUnit(buf []byte) (Unit, error) {
	return DecodeUnit(buf)
}

// DecodeUnit decodes the log event unit at the start of buf.
//
// DecodeUnit is a pure function of buf and has four outcomes:
//   - a complete unit with a nil error; Unit.Size bytes of buf were used
//   - errs.ErrIncompleteIR when buf ends inside the unit; nothing is consumed and the same
//     bytes, extended, can be decoded again
//   - errs.ErrEndOfIR when buf starts with the end-of-stream tag
//   - a *errs.DecodeError when the bytes cannot be interpreted
func DecodeUnit(buf []byte) (Unit, error) {
	r := unitReader{buf: buf, engine: endian.GetIREngine()}

	tag, ok := r.readByte()
	if !ok {
		return Unit{}, errs.ErrIncompleteIR
	}
	if tag == format.TagEOF {
		return Unit{}, errs.ErrEndOfIR
	}

	var (
		dictVars    []string
		encodedVars []uint32
		logtype     string
		logtypeOff  int
	)

variables:
	for {
		tagOffset := r.pos - 1
		switch tag {
		case format.TagVarStrLenUByte, format.TagVarStrLenUShort, format.TagVarStrLenInt:
			s, err := r.readString(tag, tagOffset)
			if err != nil {
				return Unit{}, err
			}
			dictVars = append(dictVars, s)

		case format.TagVarFourByteEncoding:
			b, ok := r.read(4)
			if !ok {
				return Unit{}, errs.ErrIncompleteIR
			}
			encodedVars = append(encodedVars, r.engine.Uint32(b))

		case format.TagLogtypeStrLenUByte, format.TagLogtypeStrLenUShort, format.TagLogtypeStrLenInt:
			s, err := r.readString(tag, tagOffset)
			if err != nil {
				return Unit{}, err
			}
			logtype = s
			logtypeOff = r.pos - len(s)

			break variables

		case format.TagEOF, format.TagVarEightByteEncoding, format.TagTimestampVal,
			format.TagTimestampDeltaByte, format.TagTimestampDeltaShort,
			format.TagTimestampDeltaInt, format.TagTimestampDeltaLong:
			return Unit{}, &errs.DecodeError{Code: errs.CodeUnexpectedTag, Offset: tagOffset, Tag: tag}

		default:
			return Unit{}, &errs.DecodeError{Code: errs.CodeUnknownTag, Offset: tagOffset, Tag: tag}
		}

		if tag, ok = r.readByte(); !ok {
			return Unit{}, errs.ErrIncompleteIR
		}
	}

	delta, err := r.readTimestampDelta()
	if err != nil {
		return Unit{}, err
	}

	bb := pool.GetUnitBuffer()
	defer pool.PutUnitBuffer(bb)
	if err := buildMessage(bb, logtype, dictVars, encodedVars, logtypeOff); err != nil {
		return Unit{}, err
	}

	return Unit{
		Logtype:        logtype,
		Message:        bb.String(),
		TimestampDelta: delta,
		Size:           r.pos,
	}, nil
}

type unitReader struct {
	buf    []byte
	pos    int
	engine endian.EndianEngine
}

func (r *unitReader) readByte() (byte, bool) {
	if r.pos >= len(r.buf) {
		return 0, false
	}
	b := r.buf[r.pos]
	r.pos++

	return b, true
}

func (r *unitReader) read(n int) ([]byte, bool) {
	if n > len(r.buf)-r.pos {
		return nil, false
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n

	return b, true
}

// readString reads a length-prefixed string whose length width is selected by tag.
func (r *unitReader) readString(tag byte, tagOffset int) (string, error) {
	var length int
	switch tag {
	case format.TagVarStrLenUByte, format.TagLogtypeStrLenUByte:
		b, ok := r.readByte()
		if !ok {
			return "", errs.ErrIncompleteIR
		}
		length = int(b)
	case format.TagVarStrLenUShort, format.TagLogtypeStrLenUShort:
		b, ok := r.read(2)
		if !ok {
			return "", errs.ErrIncompleteIR
		}
		length = int(r.engine.Uint16(b))
	default:
		b, ok := r.read(4)
		if !ok {
			return "", errs.ErrIncompleteIR
		}
		length = int(endian.Int32(r.engine, b))
		if length < 0 {
			return "", &errs.DecodeError{Code: errs.CodeInvalidLength, Offset: tagOffset, Tag: tag}
		}
	}

	b, ok := r.read(length)
	if !ok {
		return "", errs.ErrIncompleteIR
	}

	return string(b), nil
}

func (r *unitReader) readTimestampDelta() (int64, error) {
	tag, ok := r.readByte()
	if !ok {
		return 0, errs.ErrIncompleteIR
	}
	tagOffset := r.pos - 1

	var width int
	switch tag {
	case format.TagTimestampDeltaByte:
		width = 1
	case format.TagTimestampDeltaShort:
		width = 2
	case format.TagTimestampDeltaInt:
		width = 4
	case format.TagTimestampDeltaLong:
		width = 8
	case format.TagTimestampVal:
		return 0, &errs.DecodeError{Code: errs.CodeUnexpectedTag, Offset: tagOffset, Tag: tag}
	default:
		if isKnownTag(tag) {
			return 0, &errs.DecodeError{Code: errs.CodeUnexpectedTag, Offset: tagOffset, Tag: tag}
		}

		return 0, &errs.DecodeError{Code: errs.CodeUnknownTag, Offset: tagOffset, Tag: tag}
	}

	b, ok := r.read(width)
	if !ok {
		return 0, errs.ErrIncompleteIR
	}

	switch width {
	case 1:
		return int64(endian.Int8(b)), nil
	case 2:
		return int64(endian.Int16(r.engine, b)), nil
	case 4:
		return int64(endian.Int32(r.engine, b)), nil
	default:
		return endian.Int64(r.engine, b), nil
	}
}

func isKnownTag(tag byte) bool {
	switch tag {
	case format.TagEOF,
		format.TagVarStrLenUByte, format.TagVarStrLenUShort, format.TagVarStrLenInt,
		format.TagVarFourByteEncoding, format.TagVarEightByteEncoding,
		format.TagLogtypeStrLenUByte, format.TagLogtypeStrLenUShort, format.TagLogtypeStrLenInt,
		format.TagTimestampVal:
		return true
	default:
		return false
	}
}

// String renders the unit for debugging.
func (u Unit) String() string {
	return fmt.Sprintf("Unit{delta=%d, size=%d, message=%q}", u.TimestampDelta, u.Size, u.Message)
}
