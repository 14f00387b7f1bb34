package roles

import "errors"

// The engine raises four distinguishable failure classes. Callers match with
// errors.Is and translate to user-facing responses; none of these leave
// partial state behind.
var (
	// ErrNotAuthorized: the actor's role does not permit the operation.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrValidation: the request is malformed or breaks a business rule.
	ErrValidation = errors.New("invalid request")

	// ErrLastAdmin: the operation would leave the household without an
	// active admin.
	ErrLastAdmin = errors.New("cannot remove the last admin")

	// ErrNotFound: a referenced role, member, or household does not exist.
	ErrNotFound = errors.New("not found")
)
