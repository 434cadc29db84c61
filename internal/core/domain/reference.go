package domain

import (
	"errors"
	"strings"

	uuid "github.com/google/uuid"
)

// RefKind tags how a caller-supplied identity reference is resolved.
type RefKind int

const (
	// RefByID resolves against the store-assigned identifier.
	RefByID RefKind = iota
	// RefByHandle resolves against the unique handle.
	RefByHandle
)

// ErrEmptyReference indicates the caller supplied a blank reference.
var ErrEmptyReference = errors.New("identity reference is empty")

// Reference is a caller-supplied pointer to an identity, tagged with the
// lookup mode it requires. Graph endpoints accept ids and handles
// interchangeably; tagging the kind once at the boundary keeps the
// ambiguity out of the core.
type Reference struct {
	Kind  RefKind
	Value string
}

// ParseReference classifies a raw reference string. A value that parses as
// a UUID is treated as an id, anything else as a handle.
func ParseReference(raw string) (Reference, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Reference{}, ErrEmptyReference
	}

	if _, err := uuid.Parse(value); err == nil {
		return Reference{Kind: RefByID, Value: value}, nil
	}

	return Reference{Kind: RefByHandle, Value: value}, nil
}
