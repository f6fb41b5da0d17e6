// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, HTTP client initialization, JWT token generation
// and validation, and identifier generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
func (c contextKey) String() string {
	return string(c)
}

// OwnerIDCtxKey is the key under which the auth middleware stores the
// authenticated owner identifier.
//
//	ctx := context.WithValue(ctx, utils.OwnerIDCtxKey, int64(42))
var OwnerIDCtxKey = contextKey("ownerID")

// GetOwnerIDFromContext retrieves the owner identifier from the context.
// ok is false when the value is missing or is not an int64.
func GetOwnerIDFromContext(ctx context.Context) (int64, bool) {
	ownerID, ok := ctx.Value(OwnerIDCtxKey).(int64)
	return ownerID, ok
}
