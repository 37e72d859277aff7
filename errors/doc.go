// Package errors provides structured error types for the scriptc middle-end.
//
// Errors are categorized by Phase (which stage of the pipeline raised them)
// and Kind (error category). The Error type carries the offending block
// ordinal and variable name when they are known, plus a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConstruct, errors.KindMissingDefinition).
//		Block(3).
//		Name("y").
//		Detail("no reaching definition at end of predecessor").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.DuplicateDefinition(errors.PhaseGraph, "y.2", 2)
//	err := errors.ParseFailed(line, "expected block label", nil)
//
// Internal contract violations are raised with Contract, which panics with an
// *Error. Failures at the boundary of the middle-end (text parsing, config
// loading, graph verification, interpretation) are returned as *Error values.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
