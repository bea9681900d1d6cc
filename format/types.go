package format

type (
	EncodingType    uint8
	CompressionType uint8
)

const (
	TypeFourByte  EncodingType = 0x1 // TypeFourByte represents the four-byte variable encoding.
	TypeEightByte EncodingType = 0x2 // TypeEightByte represents the eight-byte variable encoding.

	CompressionAuto CompressionType = 0x0 // CompressionAuto detects the compression from the stream magic.
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 frame compression.
)

func (e EncodingType) String() string {
	switch e {
	case TypeFourByte:
		return "FourByte"
	case TypeEightByte:
		return "EightByte"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionAuto:
		return "Auto"
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompressionType maps a lower-case name ("auto", "none", "zstd", "s2", "lz4")
// to its CompressionType.
func ParseCompressionType(name string) (CompressionType, bool) {
	switch name {
	case "auto", "":
		return CompressionAuto, true
	case "none":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
