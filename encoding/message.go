package encoding

import (
	"github.com/arloliu/irstream/errs"
	"github.com/arloliu/irstream/format"
	"github.com/arloliu/irstream/internal/pool"
)

// variableSink receives the variables found while splitting a message, in message order.
type variableSink interface {
	dictionaryVariable(v string) error
	encodedVariable(v uint32)
}

// splitMessage separates message into its logtype, appended to logtype, and its variables,
// which are handed to sink in the order they appear.
//
// Integer and float tokens that fit the four-byte encoding are replaced by their placeholders
// and passed as encoded variables; every other variable token becomes a dictionary variable.
// Static text that collides with a placeholder or the escape byte is escaped.
func splitMessage(logtype *pool.ByteBuffer, message string, sink variableSink) error {
	pos := 0
	for {
		begin, end, ok := nextVariable(message, pos)
		if !ok {
			break
		}
		appendEscaped(logtype, message[pos:begin])

		token := message[begin:end]
		if v, ok := EncodeInt(token); ok {
			_ = logtype.WriteByte(format.PlaceholderInteger)
			sink.encodedVariable(uint32(v)) //nolint:gosec
		} else if v, ok := EncodeFloat(token); ok {
			_ = logtype.WriteByte(format.PlaceholderFloat)
			sink.encodedVariable(v)
		} else {
			_ = logtype.WriteByte(format.PlaceholderDictionary)
			if err := sink.dictionaryVariable(token); err != nil {
				return err
			}
		}
		pos = end
	}
	appendEscaped(logtype, message[pos:])

	return nil
}

func appendEscaped(dst *pool.ByteBuffer, static string) {
	dst.Grow(len(static))
	for i := range len(static) {
		c := static[i]
		if c == format.PlaceholderEscape || format.IsPlaceholder(c) {
			_ = dst.WriteByte(format.PlaceholderEscape)
		}
		_ = dst.WriteByte(c)
	}
}

// buildMessage reconstructs a message from its logtype and variables.
// logtypeOffset is the offset of the logtype within the unit and is only used in errors.
func buildMessage(dst *pool.ByteBuffer, logtype string, dictVars []string, encodedVars []uint32, logtypeOffset int) error {
	dictIdx, encodedIdx := 0, 0
	dst.Grow(len(logtype))

	for i := 0; i < len(logtype); i++ {
		c := logtype[i]
		switch {
		case c == format.PlaceholderEscape:
			i++
			if i == len(logtype) {
				return &errs.DecodeError{Code: errs.CodeCorruptedLogtype, Offset: logtypeOffset + i - 1, Tag: c}
			}
			_ = dst.WriteByte(logtype[i])

		case c == format.PlaceholderDictionary:
			if dictIdx >= len(dictVars) {
				return &errs.DecodeError{Code: errs.CodeMissingVariable, Offset: logtypeOffset + i, Tag: c}
			}
			_, _ = dst.WriteString(dictVars[dictIdx])
			dictIdx++

		case c == format.PlaceholderInteger, c == format.PlaceholderFloat:
			if encodedIdx >= len(encodedVars) {
				return &errs.DecodeError{Code: errs.CodeMissingVariable, Offset: logtypeOffset + i, Tag: c}
			}
			v := encodedVars[encodedIdx]
			encodedIdx++
			if c == format.PlaceholderInteger {
				_, _ = dst.WriteString(DecodeInt(int32(v))) //nolint:gosec
				continue
			}
			s, ok := DecodeFloat(v)
			if !ok {
				return &errs.DecodeError{Code: errs.CodeCorruptedLogtype, Offset: logtypeOffset + i, Tag: c}
			}
			_, _ = dst.WriteString(s)

		default:
			_ = dst.WriteByte(c)
		}
	}

	return nil
}
