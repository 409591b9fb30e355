// Package errors provides standardized error handling patterns for accessmon components.
//
// # Overview
//
// Errors fall into three classes: Transient (temporary I/O conditions), Invalid
// (bad input or configuration) and Fatal (unrecoverable states that must stop the
// run). The pipeline is a single pass over a log stream and never retries, so the
// class mostly decides how the failure is reported and which exit path is taken.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Sink", "WriteLine", "flush")       // temporary I/O
//	errors.WrapInvalid(err, "Decoder", "Next", "decode row 12")   // bad input
//	errors.WrapFatal(err, "Buffer", "Next", "order record")       // stop the run
//
// The generic Wrap() function adds context without classifying:
//
//	errors.Wrap(err, "Engine", "Run", "read ordered record")
//
// # Standard Error Variables
//
//   - Input: ErrHeaderMismatch, ErrParsingFailed, ErrInvalidData
//   - Ordering: ErrChronology
//   - Configuration: ErrInvalidConfig, ErrMissingConfig, ErrConfigNotFound
//   - Output: ErrSinkClosed, ErrWriteFailed
//
// Sentinels survive classification, so callers match on them with the standard
// library:
//
//	if stderrors.Is(err, errors.ErrChronology) {
//	    // a record arrived later than the reorder window allows
//	}
//
// # Classification
//
// Classify() prefers an explicit ClassifiedError in the chain, then the known
// sentinels, then message patterns. Anything it cannot place is Fatal.
package errors
