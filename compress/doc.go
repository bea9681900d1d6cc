// Package compress provides streaming compression for IR files.
//
// IR streams are usually stored Zstandard-compressed. This package wraps the byte source of
// a decoder (or the sink of a writer) in the matching streaming codec:
//
//	rc, detected, err := compress.NewReader(file, format.CompressionAuto)
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
//
// With format.CompressionAuto the format is detected from the frame magic number. Supported
// formats are Zstandard (klauspost/compress, or valyala/gozstd when built with cgo and the
// gozstd tag), S2 and Snappy framed streams, LZ4 frames, and no compression.
package compress
