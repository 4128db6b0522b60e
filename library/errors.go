package library

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by LibraryError.
var (
	ErrNoSequence         = errors.New("no sequence")
	ErrMissingAnnotation  = errors.New("missing annotation")
	ErrInvalidAnnotation  = errors.New("invalid annotation")
	ErrIncompleteVariable = errors.New("incomplete threshold pair")
	ErrNoVariables        = errors.New("no response function variables")
	ErrNoCDS              = errors.New("no CDS sub-component")
	ErrNotExactlyOne      = errors.New("expected exactly one candidate")
	ErrAttachment         = errors.New("attachment")
	ErrMissingDefinition  = errors.New("definition not in document")
)

// LibraryError reports a problem that prevents building a well-formed
// library entity. Component is the URI of the SBOL entity being built and
// Op the construction step that failed.
type LibraryError struct {
	Component string
	Op        string
	Err       error
}

func (e *LibraryError) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("library: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("library: %s %s: %v", e.Op, e.Component, e.Err)
}

func (e *LibraryError) Unwrap() error {
	return e.Err
}

// IsLibraryError returns true if err is or wraps a *LibraryError.
func IsLibraryError(err error) bool {
	var le *LibraryError
	return errors.As(err, &le)
}

func newError(component, op string, err error) error {
	var le *LibraryError
	if errors.As(err, &le) {
		return err
	}
	return &LibraryError{Component: component, Op: op, Err: err}
}

func exactlyOne(what string, n int) error {
	return fmt.Errorf("%w: found %d %s", ErrNotExactlyOne, n, what)
}
