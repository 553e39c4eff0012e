// Copyright © 2024 The ELPS authors

package subtype

import "errors"

// Fatal conditions.  Errors returned by this package wrap one of these and
// usually carry a *token.LocationError giving the offending position.
var (
	// ErrMalformedAnnotation is returned when a Subtyping annotation has no
	// string literal value.
	ErrMalformedAnnotation = errors.New("malformed subtyping annotation")

	// ErrUnsupportedOperand is returned in strict mode when an assignment
	// operand is not a plain name.
	ErrUnsupportedOperand = errors.New("unsupported assignment operand")

	// ErrNoEnclosingClass is returned for a field declaration outside of any
	// class.
	ErrNoEnclosingClass = errors.New("field has no enclosing class")
)
