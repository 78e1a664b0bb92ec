package sheet

import "errors"

// Errors reported by the coordinate codec and the formula engine. They are
// wrapped with cell context before leaving the package; match with errors.Is.
var (
	// ErrMalformedCoordinate reports a string that does not match the
	// <letters><digits> coordinate grammar.
	ErrMalformedCoordinate = errors.New("malformed coordinate")

	// ErrMalformedRange reports a range literal without exactly one ":" or
	// with an endpoint that is not a valid coordinate.
	ErrMalformedRange = errors.New("malformed range")

	// ErrCircularReference reports a cell whose evaluation depends,
	// directly or transitively, on itself.
	ErrCircularReference = errors.New("circular reference")

	// ErrFormulaSyntax reports formula text that cannot be parsed as an
	// arithmetic expression.
	ErrFormulaSyntax = errors.New("formula syntax error")

	// ErrUnknownCell reports a formula lookup for a coordinate that was
	// never set. Evaluation does not produce this: an unset cell has
	// value zero.
	ErrUnknownCell = errors.New("unknown cell")

	// ErrEvalDepth reports a reference chain deeper than the sheet's
	// MaxDepth bound.
	ErrEvalDepth = errors.New("evaluation depth exceeded")
)
