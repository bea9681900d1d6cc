// Package encoding implements the unit codec of four-byte encoded IR streams.
//
// A log message is split into a logtype, the static text with a placeholder byte in place of
// each variable, and its variables. Variables that are canonical decimal integers fitting in
// an int32, or decimal floats with at most eight digits, are stored in four bytes. Any other
// token that looks like a variable is stored as a length-prefixed dictionary string.
//
// Each log event is serialized as one unit:
//
//	variable units (tag 0x11-0x13 + string, or tag 0x18 + 4 bytes) ...
//	logtype unit (tag 0x21-0x23 + string)
//	timestamp delta unit (tag 0x31-0x34 + 1, 2, 4 or 8 bytes)
//
// The stream ends with the 0x00 tag.
//
// # Decoding
//
// DecodeUnit is a pure function over a byte slice. It never consumes a partial unit: when the
// slice ends early it returns errs.ErrIncompleteIR and the caller retries with more bytes.
//
//	unit, err := encoding.DecodeUnit(buf.Unconsumed())
//	switch {
//	case err == nil:
//	    _ = buf.CommitConsumed(unit.Size)
//	case errors.Is(err, errs.ErrIncompleteIR):
//	    _, err = buf.Refill()
//	case errors.Is(err, errs.ErrEndOfIR):
//	    // done
//	}
//
// # Encoding
//
//	enc := encoding.NewEncoder()
//	defer enc.Release()
//
//	out, _ := encoding.AppendPreamble(nil, metadataJSON)
//	out, _ = enc.AppendLogEvent(out, 50, "Connected to 10.0.0.1 in 2.5 ms")
//	out = encoding.AppendEOF(out)
package encoding
