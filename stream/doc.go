// Package stream provides the growable read buffer that sits between a byte source and the
// IR unit decoder.
//
// A Buffer pulls bytes lazily from an io.Reader and exposes the bytes that have not been
// consumed yet as one contiguous slice. When the decoder needs more input, Refill compacts the
// unconsumed bytes to the front of the buffer and reads into the free tail. If the unconsumed
// bytes already take up more than half of the buffer, the buffer is doubled first, which keeps
// growth amortized O(1) per byte while avoiding reallocation when compaction alone suffices.
//
// # Basic Usage
//
//	buf, err := stream.New(file, stream.WithInitialCapacity(64*1024))
//	if err != nil {
//	    return err
//	}
//	for {
//	    unit, err := decode(buf.Unconsumed())
//	    if errors.Is(err, errs.ErrIncompleteIR) {
//	        n, err := buf.Refill()
//	        if err != nil {
//	            return err
//	        }
//	        if n == 0 {
//	            return errs.ErrIncompleteStream
//	        }
//	        continue
//	    }
//	    ...
//	    if err := buf.CommitConsumed(unit.Size); err != nil {
//	        return err
//	    }
//	}
//
// # Thread Safety
//
// Buffer is not safe for concurrent use. Use one buffer per stream.
package stream
