// Package reorder restores timestamp order to a record stream whose
// timestamps may be off by a bounded amount.
//
// Buffer holds each record in a min-heap keyed by (timestamp, arrival) until
// the newest timestamp seen is more than 2 x max_timestamp_error seconds past
// it, then moves it to a FIFO ready queue. Records with equal timestamps keep
// their arrival order. At the end of the source every held record is released
// in order.
//
//	buf, err := reorder.New(decoder, cfg, reorder.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	for {
//	    rec, err := buf.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err // errors.ErrChronology under the abort policy
//	    }
//	    // rec.Timestamp is non-decreasing
//	}
//
// With max_timestamp_error = 0 any decrease in timestamp is late.
package reorder
