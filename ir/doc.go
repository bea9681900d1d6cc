// Package ir decodes and encodes IR log streams.
//
// Decoding is incremental: a DecoderBuffer pulls bytes from a source on demand, and each call
// to DecodeNextLogEvent returns the next event (or the next event matching a query). The
// delta-encoded timestamps are accumulated in the DecoderBuffer, so decoding can stop and
// resume at any event boundary.
//
//	db, err := ir.NewDecoderBuffer(src)
//	if err != nil {
//	    return err
//	}
//	if _, err := ir.DecodePreamble(db); err != nil {
//	    return err
//	}
//	for {
//	    ev, err := ir.DecodeNextLogEvent(db, nil, false)
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(ev)
//	}
//
// Reader wraps the same loop with lazy preamble decoding, decompression and iterators, and
// Writer produces streams that Reader can consume.
//
// # Searching
//
// With a query.Query, DecodeNextLogEvent skips events outside the time range or not matching
// the wildcard queries. Since timestamps are only roughly ordered, the search stops (io.EOF)
// only at the first event later than the query's termination timestamp. That stop does not
// end the stream: a later call resumes after that event.
package ir
