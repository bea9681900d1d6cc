package compress

import "github.com/arloliu/irstream/format"

// zstdCodec reads and writes Zstandard frames, the usual compression of IR files.
//
// The pure Go implementation from klauspost/compress is used by default. Building with
// cgo and the gozstd tag switches to the libzstd bindings from valyala/gozstd.
type zstdCodec struct{}

var _ Codec = zstdCodec{}

func (zstdCodec) Type() format.CompressionType { return format.CompressionZstd }
