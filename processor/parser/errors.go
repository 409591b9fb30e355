package parser

import "errors"

// Decoder-local conditions. Both are reported wrapped in the classified
// errors.ErrHeaderMismatch or errors.ErrParsingFailed.
var (
	ErrEmptyInput = errors.New("empty input")
	ErrFieldCount = errors.New("wrong number of fields")
)
