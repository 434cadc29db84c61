package usecase

import "errors"

// Kind classifies a service failure so the transport layer can map it to a
// status code without inspecting error text.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindInternal     Kind = "internal"
)

// Error is the service-level error type. Message is safe to show to callers;
// Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf extracts the Kind from err, defaulting to KindInternal for
// unclassified failures.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func conflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func unauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func notFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
