package service

import "errors"

var (
	ErrInvalidOwnerID    = errors.New("invalid owner id")
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")

	ErrTokenIsExpired          = errors.New("token is expired")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")

	ErrVersionIsNotSpecified = errors.New("version is not specified")
)

// Client-side errors.
var (
	// ErrNotSynced is returned by a sync pass that left work behind: a
	// retryable failure, or a queue that still holds entries.
	ErrNotSynced = errors.New("sync pass did not complete")

	// ErrPushFailed marks a push request that got no per-item results back.
	ErrPushFailed = errors.New("push request failed")

	// ErrAuthRejected is returned when the server refuses the client's token.
	ErrAuthRejected = errors.New("server rejected credentials")

	ErrEmptyTitle = errors.New("collection title is empty")
	ErrEmptyCard  = errors.New("card front and back are required")
	ErrNoChanges  = errors.New("nothing to change")
)
