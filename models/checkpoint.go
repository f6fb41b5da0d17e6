package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCheckpoint is returned by ParseCheckpoint for tokens that were not
// produced by [NewCheckpoint].
var ErrInvalidCheckpoint = errors.New("invalid checkpoint")

// Checkpoint is an opaque pull cursor. The zero value means "from the
// beginning" and yields a full snapshot.
type Checkpoint struct {
	at time.Time
}

// NewCheckpoint wraps t (converted to UTC).
func NewCheckpoint(t time.Time) Checkpoint {
	return Checkpoint{at: t.UTC()}
}

// ParseCheckpoint decodes a token previously returned by [Checkpoint.String].
// An empty token is the zero checkpoint.
func ParseCheckpoint(token string) (Checkpoint, error) {
	if token == "" {
		return Checkpoint{}, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("%w: %w", ErrInvalidCheckpoint, err)
	}

	at, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return Checkpoint{}, fmt.Errorf("%w: %w", ErrInvalidCheckpoint, err)
	}

	return Checkpoint{at: at.UTC()}, nil
}

// Time returns the wrapped instant; zero for the initial checkpoint.
func (c Checkpoint) Time() time.Time {
	return c.at
}

// IsZero reports whether this is the initial checkpoint.
func (c Checkpoint) IsZero() bool {
	return c.at.IsZero()
}

// String encodes the checkpoint as an opaque URL-safe token.
func (c Checkpoint) String() string {
	if c.at.IsZero() {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(c.at.Format(time.RFC3339Nano)))
}
