// Package file provides the line sink that receives summary and alert output.
//
// A Sink writes each line followed by a newline, in the order given, to
// stdout or to a file. File sinks truncate by default; Config.Append keeps
// existing content. Output is buffered, and a line-buffered sink flushes after
// every line so that alerts reach a terminal or pipe as soon as they fire.
//
//	sink, err := file.Open(file.Config{Path: "out.log", Append: true})
//	if err != nil {
//	    return err
//	}
//	defer sink.Close()
//
//	if err := sink.WriteLine(summary.String()); err != nil {
//	    return err
//	}
//
// Writes after Close fail with errors.ErrSinkClosed. I/O failures wrap
// errors.ErrWriteFailed and are classified fatal.
package file
