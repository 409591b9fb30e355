// Package parser decodes CSV access logs into records.
//
// # Overview
//
// Decoder wraps encoding/csv and implements record.Source, so the reorder
// buffer can pull records from it directly:
//
//	dec := parser.NewDecoder(os.Stdin, parser.WithLogger(logger))
//	for {
//	    rec, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // use rec
//	}
//
// # Input Format
//
// The first row must be exactly:
//
//	remotehost,rfc931,authuser,date,request,status,bytes
//
// An empty input or any other header fails before a record is produced, with
// an error matching errors.ErrHeaderMismatch. Every following row needs seven
// fields; date, status and bytes must be unsigned integers. A malformed row
// fails with errors.ErrParsingFailed and names the input line.
//
// # Error Handling
//
// Errors are classified invalid and are sticky: once Next fails, later calls
// return the same error.
package parser
