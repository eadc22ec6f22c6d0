// Package compileerr implements the CORE's error taxonomy (spec.md §7).
// Every error the pipeline returns is fatal: there is no partial output,
// so a CompileError is meant to be printed and the process aborted.
package compileerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the four error categories spec.md §7 defines.
type Kind string

const (
	Structural Kind = "StructuralError"
	Semantic   Kind = "SemanticError"
	Arithmetic Kind = "ArithmeticError"
	Invariant  Kind = "InvariantError"
)

// Location pins an error to a BASIC source line. The dialect has no
// column-granularity diagnostics, only line numbers.
type Location struct {
	Line int
}

// CompileError is the single error type the CORE ever constructs. Line2 is
// only set for edge-citing diagnostics (irreducible flow, spec.md §7 "must
// cite the source lines of both endpoints of the offending edge").
type CompileError struct {
	Kind     Kind
	Msg      string
	Line     int
	Line2    int
	hasLine2 bool
	cause    error
}

func (e *CompileError) Error() string {
	if e.hasLine2 {
		return fmt.Sprintf("%s: %s (lines %d, %d)", e.Kind, e.Msg, e.Line, e.Line2)
	}
	if e.Line != 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Msg, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *CompileError) Unwrap() error { return e.cause }

// Cause returns the wrapped error this CompileError was constructed from,
// if any -- mirrors the teacher's call-stack capture but via pkg/errors
// instead of a hand-rolled []StackFrame.
func (e *CompileError) Cause() error { return e.cause }

func newErr(k Kind, line int, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: k, Msg: fmt.Sprintf(format, args...), Line: line}
}

// Structuralf builds a StructuralError at the given line (dead code,
// missing END, unmatched NEXT/GOSUB, irreducible flow single-site).
func Structuralf(line int, format string, args ...interface{}) *CompileError {
	return newErr(Structural, line, format, args...)
}

// StructuralEdge builds a StructuralError citing both endpoints of an
// offending edge, as spec.md §7 requires for irreducible-flow diagnostics.
func StructuralEdge(lineA, lineB int, format string, args ...interface{}) *CompileError {
	e := newErr(Structural, lineA, format, args...)
	e.Line2 = lineB
	e.hasLine2 = true
	return e
}

// Semanticf builds a SemanticError (array-before-DIM, bad dimension,
// undefined variable, READ underrun, bad relational operator).
func Semanticf(line int, format string, args ...interface{}) *CompileError {
	return newErr(Semantic, line, format, args...)
}

// Arithmeticf builds an ArithmeticError (negative literal reaching constant synthesis).
func Arithmeticf(line int, format string, args ...interface{}) *CompileError {
	return newErr(Arithmetic, line, format, args...)
}

// Invariantf builds an InvariantError: an allocator/quad/serializer defect
// that should never be reachable from valid input -- these indicate a bug
// in the CORE itself, not in the BASIC source.
func Invariantf(format string, args ...interface{}) *CompileError {
	return newErr(Invariant, 0, format, args...)
}

// Wrap attaches additional context to err while preserving it as the cause,
// the way the teacher's SentraError.WithStack threads call-site context
// onto an error as it propagates up the pipeline.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// As reports whether err (or any error it wraps) is a *CompileError, and
// returns it.
func As(err error) (*CompileError, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
