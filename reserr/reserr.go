// Package reserr defines the error kinds reported by the resource engine.
package reserr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a resource engine failure.
type Kind string

const (
	// NotFound indicates an unknown resource id, name, package or type.
	NotFound Kind = "not-found"
	// Unresolvable indicates a reference chain ending in a dangling id or
	// exceeding the configured depth.
	Unresolvable Kind = "unresolvable"
	// CircularReference indicates a reference, attribute or style chain that
	// revisits one of its own links.
	CircularReference Kind = "circular-reference"
	// TypeMismatch indicates a literal that fits none of the candidate formats.
	TypeMismatch Kind = "type-mismatch"
	// InvalidHandle indicates a released, unknown or foreign handle.
	InvalidHandle Kind = "invalid-handle"
	// MalformedTable indicates a corrupt or truncated binary chunk.
	MalformedTable Kind = "malformed-table"
)

// Error is the concrete error carried (possibly wrapped) by every failure.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Msg
}

// New returns an error of kind k with a stack trace attached.
func New(k Kind, msg string) error {
	return errors.WithStack(&Error{Kind: k, Msg: msg})
}

// Errorf formats according to a format specifier and returns an error of kind k.
func Errorf(k Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: k, Msg: fmt.Sprintf(format, args...)})
}

// KindOf returns the kind of err, or "" when err was not produced by this package.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Kind
	}
	return ""
}

// Is reports whether err is of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Soft reports whether the kind is one a caller may degrade to an absent
// value instead of failing.
func (k Kind) Soft() bool {
	switch k {
	case NotFound, Unresolvable, TypeMismatch:
		return true
	}
	return false
}
