// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used by the sync
// server handlers and the client that parses their responses.
//
// Msg* constants are the plain-text bodies written for top-level failures.
// Reason* constants are the per-change rejection reasons carried inside a
// push response. Both sides compare against these values, so they must not
// change between releases.
package app

const (
	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgStoreUnavailable is returned when the authoritative store cannot be
	// reached. The client treats it as retryable.
	MsgStoreUnavailable = "store unavailable"

	// MsgTokenIsExpired is returned when a bearer token is syntactically
	// valid but its expiry time has passed.
	MsgTokenIsExpired = "token is expired"

	// MsgTokenIsExpiredOrInvalid is returned when a bearer token is either
	// expired or cannot be verified.
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgNoOwnerIDProvided is returned when a handler requires the owner id
	// from the token but none is present in the request context.
	MsgNoOwnerIDProvided = "no owner ID provided"

	// MsgInvalidCheckpoint is returned by pull for checkpoint tokens the
	// server did not issue.
	MsgInvalidCheckpoint = "invalid checkpoint"

	// MsgNoChangesProvided is returned when a push body carries an empty
	// change list.
	MsgNoChangesProvided = "no changes provided"

	// MsgTooManyChanges is returned when a push exceeds the batch limit.
	MsgTooManyChanges = "too many changes in one push"

	// MsgIntegrityCheckFailed is returned when the push hash does not match
	// the HMAC of its changes.
	MsgIntegrityCheckFailed = "integrity check failed"

	// MsgRouteNotFound is returned for a known path called with a method it
	// does not serve.
	MsgRouteNotFound = "route not found"
)

// Rejection reasons reported per change in a push response.
const (
	// ReasonForbidden: the target collection belongs to another owner.
	ReasonForbidden = "forbidden"

	// ReasonParentNotFound: a card change names a collection the server does
	// not have. Retryable while the collection's own change is still queued
	// on the client.
	ReasonParentNotFound = "parent-not-found"

	// ReasonParentDeleted: a card change targets a soft-deleted collection.
	ReasonParentDeleted = "parent-deleted"

	// ReasonMalformed: the change failed validation or could not be decoded.
	ReasonMalformed = "malformed"
)

// Local eviction reasons recorded by the client when it gives up on a
// queued change without a server verdict.
const (
	// ReasonRetriesExhausted: the change hit the retry ceiling.
	ReasonRetriesExhausted = "retries-exhausted"
)
