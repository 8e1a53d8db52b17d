/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error values returned by schema generation. Every failure is terminal for the call
and carries a kind, a human-readable message and, for syntax errors, the offending fragment.
*/

package inference

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a generation failure
type ErrorKind string

const (
	KindEmptyInput          ErrorKind = "empty_input"
	KindInvalidJSON         ErrorKind = "invalid_json"
	KindNoDocumentsFound    ErrorKind = "no_documents_found"
	KindUnsupportedRootType ErrorKind = "unsupported_root_type"
	KindNestingTooDeep      ErrorKind = "nesting_too_deep"
)

// Sentinel errors for use with errors.Is
var (
	ErrEmptyInput          = &Error{Kind: KindEmptyInput}
	ErrInvalidJSON         = &Error{Kind: KindInvalidJSON}
	ErrNoDocumentsFound    = &Error{Kind: KindNoDocumentsFound}
	ErrUnsupportedRootType = &Error{Kind: KindUnsupportedRootType}
	ErrNestingTooDeep      = &Error{Kind: KindNestingTooDeep}
)

// maxFragmentLen bounds the fragment quoted in error messages
const maxFragmentLen = 80

// Error is returned by Generate when no schema can be produced
type Error struct {
	Kind     ErrorKind
	Message  string
	Fragment string // Offending document text for KindInvalidJSON
	Err      error  // Underlying decoder error, if any
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Fragment != "" {
		msg = fmt.Sprintf("%s in %q", msg, truncate(e.Fragment, maxFragmentLen))
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying decoder error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
