// Package errors provides error handling for twinegen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Sentinel errors for generation failures
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with declaration context
//	if err := gen.writeStruct(s); err != nil {
//	    return errors.Wrapf(err, "struct %s", s.Name)
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrInvalidKeyType) {
//	    // handle bad map key
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for generation failures. A broken declaration aborts the
// run; there is no partial output for it. Wrap these with errors.Wrapf to
// name the offending declaration while preserving the type.
var (
	// ErrInvalidKeyType indicates a list, set, or map was used as a map key
	// or set element, which has no hashable representation in emitted code.
	ErrInvalidKeyType = New("invalid map key type")

	// ErrNoLiteralForType indicates a constant value could not be rendered
	// as a literal for its resolved type.
	ErrNoLiteralForType = New("no literal syntax for type")

	// ErrVoidField indicates a void type appeared where a value type is
	// required (a field, container element, or constant).
	ErrVoidField = New("void type in value position")

	// ErrUnknownType indicates a type node with an unrecognized kind,
	// which means the IR decoder and the generator disagree.
	ErrUnknownType = New("unknown type kind")
)

// IsGenerationError reports whether err is one of the generation sentinels.
func IsGenerationError(err error) bool {
	return err != nil && IsAny(err, ErrInvalidKeyType, ErrNoLiteralForType, ErrVoidField, ErrUnknownType)
}
