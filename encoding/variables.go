package encoding

import (
	"strconv"
	"strings"
)

// Four-byte float layout, from the most significant bit:
//
//	sign (1) | digits (25) | number of digits - 1 (3) | decimal point position - 1 (3)
//
// The decimal point position is counted from the right of the digits.
const (
	floatDigitsBits       = 25
	floatNumDigitsBits    = 3
	floatDecimalPosBits   = 3
	maxFloatDigits        = 8
	maxFloatDigitsValue   = 1<<floatDigitsBits - 1
	floatNumDigitsMask    = 1<<floatNumDigitsBits - 1
	floatDecimalPosMask   = 1<<floatDecimalPosBits - 1
	floatDigitsMask       = maxFloatDigitsValue
	floatNumDigitsShift   = floatDecimalPosBits
	floatDigitsShift      = floatNumDigitsBits + floatDecimalPosBits
	floatSignShift        = floatDigitsBits + floatNumDigitsBits + floatDecimalPosBits
	maxInt32DecimalDigits = 10
)

// EncodeInt tries to represent a decimal token as a four-byte integer.
//
// Only canonical decimal strings are accepted: an optional '-', no '+', no leading zeros and
// no "-0", so that decoding reproduces the token byte for byte.
func EncodeInt(token string) (int32, bool) {
	digits := strings.TrimPrefix(token, "-")
	if len(digits) == 0 || len(digits) > maxInt32DecimalDigits {
		return 0, false
	}
	if digits[0] == '0' && (len(digits) > 1 || len(digits) != len(token)) {
		return 0, false
	}
	for i := range len(digits) {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}

	v, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return 0, false
	}

	return int32(v), true
}

// DecodeInt formats an encoded integer variable.
func DecodeInt(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

// EncodeFloat tries to represent a decimal token as a four-byte float.
//
// The token must be an optional '-', at least one digit, a '.', and at least one digit, with
// at most eight digits in total. Leading and trailing zeros are preserved.
func EncodeFloat(token string) (uint32, bool) {
	var sign uint32
	body := token
	if strings.HasPrefix(body, "-") {
		sign = 1
		body = body[1:]
	}

	dot := strings.IndexByte(body, '.')
	if dot <= 0 || dot == len(body)-1 {
		return 0, false
	}
	numDigits := len(body) - 1
	if numDigits > maxFloatDigits {
		return 0, false
	}

	var digits uint32
	for i := range len(body) {
		if i == dot {
			continue
		}
		c := body[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		digits = digits*10 + uint32(c-'0')
	}
	if digits > maxFloatDigitsValue {
		return 0, false
	}
	decimalPos := len(body) - 1 - dot

	encoded := sign<<floatSignShift |
		digits<<floatDigitsShift |
		uint32(numDigits-1)<<floatNumDigitsShift | //nolint:gosec
		uint32(decimalPos-1) //nolint:gosec

	return encoded, true
}

// DecodeFloat formats an encoded float variable.
//
// Returns false if the encoded properties are inconsistent, e.g. the decimal point lies
// outside the digits.
func DecodeFloat(v uint32) (string, bool) {
	decimalPos := int(v&floatDecimalPosMask) + 1
	numDigits := int(v>>floatNumDigitsShift&floatNumDigitsMask) + 1
	digits := v >> floatDigitsShift & floatDigitsMask
	negative := v>>floatSignShift == 1

	if decimalPos >= numDigits {
		return "", false
	}

	s := strconv.FormatUint(uint64(digits), 10)
	if len(s) > numDigits {
		return "", false
	}

	var b strings.Builder
	b.Grow(numDigits + 2)
	if negative {
		b.WriteByte('-')
	}
	padded := strings.Repeat("0", numDigits-len(s)) + s
	b.WriteString(padded[:numDigits-decimalPos])
	b.WriteByte('.')
	b.WriteString(padded[numDigits-decimalPos:])

	return b.String(), true
}

// isDelimiter reports whether c separates tokens in a message.
func isDelimiter(c byte) bool {
	return !(c == '+' ||
		('-' <= c && c <= '9') ||
		('A' <= c && c <= 'Z') ||
		c == '\\' ||
		c == '_' ||
		('a' <= c && c <= 'z'))
}

func isDecimalDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlphabet(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// isVariable reports whether the token message[begin:end] holds a variable: it contains a
// digit, or it directly follows '=' and contains a letter.
func isVariable(message string, begin, end int) bool {
	hasAlphabet := false
	for i := begin; i < end; i++ {
		if isDecimalDigit(message[i]) {
			return true
		}
		if isAlphabet(message[i]) {
			hasAlphabet = true
		}
	}

	return hasAlphabet && begin > 0 && message[begin-1] == '='
}

// nextVariable finds the next variable token at or after pos.
// It returns the token bounds, or ok == false when no variable remains.
func nextVariable(message string, pos int) (begin, end int, ok bool) {
	n := len(message)
	for pos < n {
		for pos < n && isDelimiter(message[pos]) {
			pos++
		}
		if pos >= n {
			return 0, 0, false
		}
		begin = pos
		for pos < n && !isDelimiter(message[pos]) {
			pos++
		}
		end = pos
		if isVariable(message, begin, end) {
			return begin, end, true
		}
	}

	return 0, 0, false
}
