package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies operation failures for the boundary layer.
type ErrorKind string

const (
	// ErrorKindNotFound means a referenced entity id does not resolve.
	ErrorKindNotFound ErrorKind = "NOT_FOUND"
	// ErrorKindInvalidState means the operation is not permitted given
	// the entity's current status.
	ErrorKindInvalidState ErrorKind = "INVALID_STATE"
	// ErrorKindConflict means an invariant violation was detected
	// defensively, e.g. an open assignment already exists.
	ErrorKindConflict ErrorKind = "CONFLICT"
	// ErrorKindValidation means the input was malformed.
	ErrorKindValidation ErrorKind = "VALIDATION_FAILED"
	// ErrorKindIntegrity means state that should be impossible was
	// observed, e.g. an asset whose model reference does not resolve.
	// This indicates corrupted data, not a bad caller request.
	ErrorKindIntegrity ErrorKind = "INTEGRITY_FAULT"
)

// Error carries the failure kind plus the entity kind and identity so
// callers can render a useful message.
type Error struct {
	Kind     ErrorKind
	Entity   string
	EntityID string
	Message  string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s %s", e.Kind, e.Entity, e.EntityID)
}

// NotFoundError reports an unresolved entity reference.
func NotFoundError(entity, id string) *Error {
	return &Error{
		Kind:     ErrorKindNotFound,
		Entity:   entity,
		EntityID: id,
		Message:  fmt.Sprintf("%s %s not found", entity, id),
	}
}

// InvalidStateError reports an operation rejected by the current status.
func InvalidStateError(entity, id, message string) *Error {
	return &Error{Kind: ErrorKindInvalidState, Entity: entity, EntityID: id, Message: message}
}

// ConflictError reports a defensively detected invariant violation.
func ConflictError(entity, id, message string) *Error {
	return &Error{Kind: ErrorKindConflict, Entity: entity, EntityID: id, Message: message}
}

// ValidationError reports malformed input.
func ValidationError(message string) *Error {
	return &Error{Kind: ErrorKindValidation, Message: message}
}

// IntegrityError reports observed state that the invariants forbid.
func IntegrityError(entity, id, message string) *Error {
	return &Error{Kind: ErrorKindIntegrity, Entity: entity, EntityID: id, Message: message}
}

// KindOf extracts the error kind from err, if it carries one.
func KindOf(err error) (ErrorKind, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsNotFound reports whether err is a NotFound domain error.
func IsNotFound(err error) bool {
	return IsKind(err, ErrorKindNotFound)
}
