package projector

import "errors"

var (
	// ErrMalformedChange is returned when a change payload cannot be decoded
	// into the fields of its entity type.
	ErrMalformedChange = errors.New("malformed change")

	// ErrMissingParent is returned when a child change is absorbed without a
	// parent document.
	ErrMissingParent = errors.New("parent collection is missing")

	// ErrUnknownOperation is returned for operations other than PUT, PATCH
	// and DELETE.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrUnknownEntityType is returned for entity types other than parent
	// and child, or when a change is given to the wrong absorb function.
	ErrUnknownEntityType = errors.New("unknown entity type")
)
