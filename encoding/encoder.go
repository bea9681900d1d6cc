package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/irstream/endian"
	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/format"
	"github.com/arloliu/irstream/internal/pool"
)

// Encoder serializes log events into four-byte encoded IR units.
//
// An Encoder keeps scratch space between calls and is NOT thread-safe. Call Release when done
// to return the scratch space to the pool.
type Encoder struct {
	engine  endian.EndianEngine
	logtype *pool.ByteBuffer
	dst     []byte
}

var _ variableSink = (*Encoder)(nil)

// NewEncoder creates an Encoder.
func NewEncoder() *Encoder {
	return &Encoder{
		engine:  endian.GetIREngine(),
		logtype: pool.GetUnitBuffer(),
	}
}

// AppendLogEvent appends the unit for message, preceded by its variables and followed by
// timestampDelta, to dst.
//
// On error dst is returned unchanged.
func (e *Encoder) AppendLogEvent(dst []byte, timestampDelta int64, message string) ([]byte, error) {
	start := len(dst)
	e.dst = dst
	e.logtype.Reset()
	defer func() { e.dst = nil }()

	if err := splitMessage(e.logtype, message, e); err != nil {
		return dst[:start], err
	}

	var err error
	e.dst, err = appendLengthPrefixed(e.dst, e.engine, e.logtype.Bytes(),
		format.TagLogtypeStrLenUByte, format.TagLogtypeStrLenUShort, format.TagLogtypeStrLenInt)
	if err != nil {
		return e.dst[:start], err
	}

	return AppendTimestampDelta(e.dst, timestampDelta), nil
}

// Logtype returns the logtype produced by the last AppendLogEvent call.
// The returned slice is only valid until the next call.
func (e *Encoder) Logtype() []byte {
	return e.logtype.Bytes()
}

// Release returns the encoder's scratch space to the pool. The encoder must not be used afterwards.
func (e *Encoder) Release() {
	pool.PutUnitBuffer(e.logtype)
	e.logtype = nil
}

func (e *Encoder) dictionaryVariable(v string) error {
	var err error
	e.dst, err = appendLengthPrefixed(e.dst, e.engine, []byte(v),
		format.TagVarStrLenUByte, format.TagVarStrLenUShort, format.TagVarStrLenInt)

	return err
}

func (e *Encoder) encodedVariable(v uint32) {
	e.dst = append(e.dst, format.TagVarFourByteEncoding)
	e.dst = e.engine.AppendUint32(e.dst, v)
}

// AppendTimestampDelta appends delta using the narrowest tag that can hold it.
func AppendTimestampDelta(dst []byte, delta int64) []byte {
	engine := endian.GetIREngine()

	switch {
	case delta >= math.MinInt8 && delta <= math.MaxInt8:
		return append(dst, format.TagTimestampDeltaByte, byte(int8(delta)))
	case delta >= math.MinInt16 && delta <= math.MaxInt16:
		dst = append(dst, format.TagTimestampDeltaShort)
		return endian.AppendInt16(engine, dst, int16(delta))
	case delta >= math.MinInt32 && delta <= math.MaxInt32:
		dst = append(dst, format.TagTimestampDeltaInt)
		return endian.AppendInt32(engine, dst, int32(delta))
	default:
		dst = append(dst, format.TagTimestampDeltaLong)
		return endian.AppendInt64(engine, dst, delta)
	}
}

// AppendEOF appends the end-of-stream tag.
func AppendEOF(dst []byte) []byte {
	return append(dst, format.TagEOF)
}

func appendLengthPrefixed(dst []byte, engine endian.EndianEngine, data []byte, tagU8, tagU16, tagI32 byte) ([]byte, error) {
	switch n := len(data); {
	case n <= math.MaxUint8:
		dst = append(dst, tagU8, byte(n))
	case n <= math.MaxUint16:
		dst = append(dst, tagU16)
		dst = engine.AppendUint16(dst, uint16(n)) //nolint:gosec
	case n <= math.MaxInt32:
		dst = append(dst, tagI32)
		dst = endian.AppendInt32(engine, dst, int32(n)) //nolint:gosec
	default:
		return dst, fmt.Errorf("%w: %d byte string exceeds the length limit", errs.ErrEncode, n)
	}

	return append(dst, data...), nil
}
