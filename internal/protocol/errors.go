package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrTruncated           = errors.New("protocol: truncated data")
	ErrInvalidLength       = errors.New("protocol: invalid length")
	ErrProtocolViolation   = errors.New("protocol: violation")
	ErrStructuralInvariant = errors.New("protocol: structural invariant violated")
	ErrUnresolvedReference = errors.New("protocol: unresolved reference")
)

// ViolationKind classifies a decode failure.
type ViolationKind int

const (
	ProtocolViolation ViolationKind = iota
	StructuralInvariantViolation
	UnresolvedReference
)

func (k ViolationKind) String() string {
	switch k {
	case ProtocolViolation:
		return "protocol violation"
	case StructuralInvariantViolation:
		return "structural invariant violation"
	case UnresolvedReference:
		return "unresolved reference"
	default:
		return "unknown violation"
	}
}

// ViolationError describes where a decode failed. Index is -1 when the failure is
// not tied to a single record.
type ViolationError struct {
	Kind   ViolationKind
	Index  int
	Tag    Tag
	Reason string
	Err    error
}

func (e *ViolationError) Error() string {
	msg := "protocol: " + e.Kind.String()
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at record %d (%s)", e.Index, e.Tag)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel for the error's kind.
func (e *ViolationError) Is(target error) bool {
	switch e.Kind {
	case ProtocolViolation:
		return target == ErrProtocolViolation
	case StructuralInvariantViolation:
		return target == ErrStructuralInvariant
	case UnresolvedReference:
		return target == ErrUnresolvedReference
	}
	return false
}

func (e *ViolationError) Unwrap() error {
	return e.Err
}

func violation(index int, tag Tag, format string, args ...any) error {
	return &ViolationError{Kind: ProtocolViolation, Index: index, Tag: tag, Reason: fmt.Sprintf(format, args...)}
}

// Structural reports a structural invariant violation outside a record stream.
func Structural(format string, args ...any) error {
	return &ViolationError{Kind: StructuralInvariantViolation, Index: -1, Reason: fmt.Sprintf(format, args...)}
}

func unresolved(ref uint32, err error) error {
	return &ViolationError{Kind: UnresolvedReference, Index: -1, Reason: fmt.Sprintf("ref 0x%08x", ref), Err: err}
}
