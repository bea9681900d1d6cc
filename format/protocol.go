// Package format holds the IR protocol constants shared by the encoder and decoder.
//
// An IR stream is laid out as:
//
//	magic number (4 bytes)
//	metadata encoding tag (1 byte) | length tag + length | JSON metadata
//	log event units ...
//	end-of-stream tag (0x00)
//
// A log event unit is a run of variable units, a logtype unit and a timestamp delta unit, each
// prefixed by a one-byte tag. All multi-byte integers are big-endian.
package format

// Magic numbers identifying the variable encoding of a stream.
var (
	FourByteMagicNumber  = [4]byte{0xFD, 0x2F, 0xB5, 0x29}
	EightByteMagicNumber = [4]byte{0xFD, 0x2F, 0xB5, 0x30}
)

// MagicNumberLength is the size of the stream magic number.
const MagicNumberLength = 4

// Metadata block tags.
const (
	MetadataEncodingJSON byte = 0x01
	MetadataLengthUByte  byte = 0x11
	MetadataLengthUShort byte = 0x12
)

// Metadata JSON keys and values.
const (
	MetadataVersionKey                   = "VERSION"
	MetadataReferenceTimestampKey        = "REFERENCE_TIMESTAMP"
	MetadataTimestampPatternKey          = "TIMESTAMP_PATTERN"
	MetadataTimestampPatternSyntaxKey    = "TIMESTAMP_PATTERN_SYNTAX"
	MetadataTimezoneIDKey                = "TZ_ID"
	MetadataVariablesSchemaIDKey         = "VARIABLES_SCHEMA_ID"
	MetadataVariableEncodingMethodsIDKey = "VARIABLE_ENCODING_METHODS_ID"

	// CurrentVersion is the protocol version written by the encoder.
	CurrentVersion = "0.0.1"
	// MinimumVersion is the oldest protocol version the decoder accepts.
	MinimumVersion = "0.0.1"

	VariablesSchemaID         = "com.yscope.clp.VariablesSchemaV2"
	VariableEncodingMethodsID = "com.yscope.clp.VariableEncodingMethodsV1"
	TimestampPatternSyntax    = "java.text.SimpleDateFormat"
)

// Payload tags.
const (
	TagEOF byte = 0x00

	TagVarStrLenUByte  byte = 0x11
	TagVarStrLenUShort byte = 0x12
	TagVarStrLenInt    byte = 0x13

	TagVarFourByteEncoding  byte = 0x18
	TagVarEightByteEncoding byte = 0x19

	TagLogtypeStrLenUByte  byte = 0x21
	TagLogtypeStrLenUShort byte = 0x22
	TagLogtypeStrLenInt    byte = 0x23

	TagTimestampVal        byte = 0x30
	TagTimestampDeltaByte  byte = 0x31
	TagTimestampDeltaShort byte = 0x32
	TagTimestampDeltaInt   byte = 0x33
	TagTimestampDeltaLong  byte = 0x34
)

// Placeholders stored in a logtype in place of each variable.
const (
	PlaceholderInteger    byte = 0x11
	PlaceholderDictionary byte = 0x12
	PlaceholderFloat      byte = 0x13

	// PlaceholderEscape precedes static text bytes that collide with a placeholder
	// or with the escape byte itself.
	PlaceholderEscape byte = '\\'
)

// IsPlaceholder reports whether b is one of the variable placeholders.
func IsPlaceholder(b byte) bool {
	return b == PlaceholderInteger || b == PlaceholderDictionary || b == PlaceholderFloat
}
