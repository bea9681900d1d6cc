// Package endian provides byte order utilities for the IR codec.
//
// IR streams store every multi-byte integer in big-endian order. This package combines the
// standard library's ByteOrder and AppendByteOrder interfaces into EndianEngine, and adds
// signed helpers for the fixed-width timestamp deltas and encoded variables.
//
// # Basic Usage
//
//	engine := endian.GetIREngine()
//	buf = engine.AppendUint16(buf, uint16(len(logtype)))
//	delta := endian.Int32(engine, payload)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetIREngine returns the engine matching the IR wire byte order.
func GetIREngine() EndianEngine {
	return binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Int8 reads a two's complement signed byte.
func Int8(b []byte) int8 {
	return int8(b[0]) //nolint:gosec
}

// Int16 reads a signed 16-bit integer using the engine's byte order.
func Int16(e EndianEngine, b []byte) int16 {
	return int16(e.Uint16(b)) //nolint:gosec
}

// Int32 reads a signed 32-bit integer using the engine's byte order.
func Int32(e EndianEngine, b []byte) int32 {
	return int32(e.Uint32(b)) //nolint:gosec
}

// Int64 reads a signed 64-bit integer using the engine's byte order.
func Int64(e EndianEngine, b []byte) int64 {
	return int64(e.Uint64(b)) //nolint:gosec
}

// AppendInt16 appends v in the engine's byte order.
func AppendInt16(e EndianEngine, dst []byte, v int16) []byte {
	return e.AppendUint16(dst, uint16(v)) //nolint:gosec
}

// AppendInt32 appends v in the engine's byte order.
func AppendInt32(e EndianEngine, dst []byte, v int32) []byte {
	return e.AppendUint32(dst, uint32(v)) //nolint:gosec
}

// AppendInt64 appends v in the engine's byte order.
func AppendInt64(e EndianEngine, dst []byte, v int64) []byte {
	return e.AppendUint64(dst, uint64(v)) //nolint:gosec
}
