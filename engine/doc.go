// Package engine drives a single monitoring pass over an access-log stream.
//
// The pipeline is pull based and runs on the caller's goroutine:
//
//	io.Reader → parser.Decoder → reorder.Buffer → Engine → stats.Aggregator → LineWriter
//	                                                      → alert.Monitor   ↗
//
// Each ordered record is pushed to the stats aggregator and then to the alert
// monitor, and the lines each returns are written before the next record is
// read. At end of input the aggregator's open chunk is flushed. Output order
// is therefore a pure function of the input and the configuration: running
// the same input twice yields identical output.
//
// Errors stop the run. Lines written before the error are kept, so a
// chronology violation still leaves every chunk that closed before it in the
// output.
//
// # Usage
//
//	err := engine.MonitorStream(ctx, os.Stdin, os.Stdout, config.DefaultConfig())
//
// Callers that need control over input and output compose the stages
// themselves:
//
//	eng, err := engine.New(cfg, engine.WithLogger(logger), engine.WithMetrics(registry))
//	if err != nil {
//	    return err
//	}
//	result, err := eng.Run(ctx, parser.NewDecoder(in), sink)
package engine
