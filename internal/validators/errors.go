package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidOperation  = errors.New("invalid operation")
	ErrInvalidEntityType = errors.New("invalid entity type")
	ErrInvalidID         = errors.New("entity id must be a UUID")
	ErrInvalidParentID   = errors.New("parent id must be a UUID")
	ErrUnexpectedParent  = errors.New("parent id is only allowed on child changes")
	ErrEmptyTitle        = errors.New("title is required")
	ErrEmptyFront        = errors.New("front is required")
	ErrEmptyBack         = errors.New("back is required")
	ErrInvalidOrder      = errors.New("order must be a non-negative integer")
	ErrInvalidFieldType  = errors.New("field has wrong type")
	ErrEmptyChanges      = errors.New("changes list cannot be empty")
	ErrTooManyChanges    = errors.New("too many changes")
)
