// Package apperr holds the caller-facing error kinds shared by the services
// and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("wrong credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAuthorValidation   = errors.New("saving author failed")
	ErrBookValidation     = errors.New("saving book failed")
	ErrUserValidation     = errors.New("creating the user failed")
	ErrAuthorNotFound     = errors.New("author not found")
	ErrAuthorSave         = errors.New("saving born year failed")
)

// ArgError ties an error kind to the argument that caused it. Err is the
// underlying cause, if any.
type ArgError struct {
	Kind error
	Arg  string
	Err  error
}

// WithArg wraps cause under kind, recording the offending argument.
func WithArg(kind error, arg string, cause error) *ArgError {
	return &ArgError{Kind: kind, Arg: arg, Err: cause}
}

func (e *ArgError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %q", e.Kind, e.Arg)
	}
	return fmt.Sprintf("%s: %q: %v", e.Kind, e.Arg, e.Err)
}

func (e *ArgError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// InvalidArg returns the offending argument carried by err, if any.
func InvalidArg(err error) (string, bool) {
	var ae *ArgError
	if errors.As(err, &ae) {
		return ae.Arg, true
	}
	return "", false
}

// Code maps an error to the stable code surfaced to clients.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "NOT_AUTHENTICATED"
	case errors.Is(err, ErrInvalidToken):
		return "INVALID_TOKEN"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, ErrAuthorValidation):
		return "BAD_AUTHOR_INPUT"
	case errors.Is(err, ErrBookValidation):
		return "BAD_BOOK_INPUT"
	case errors.Is(err, ErrUserValidation), errors.Is(err, ErrAuthorSave):
		return "BAD_USER_INPUT"
	case errors.Is(err, ErrAuthorNotFound):
		return "AUTHOR_NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}
