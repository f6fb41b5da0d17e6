// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-deck-sync/internal/adapter"
	"github.com/MKhiriev/go-deck-sync/internal/app"
)

// mapAdapterError translates the adapter's transport error into a service business error
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	msg := extractBody(err)

	switch {
	case adapter.IsAuthFailure(err):
		switch msg {
		case app.MsgTokenIsExpired:
			return fmt.Errorf("%w: %w", ErrAuthRejected, ErrTokenIsExpired)
		case app.MsgTokenIsExpiredOrInvalid:
			return fmt.Errorf("%w: %w", ErrAuthRejected, ErrTokenIsExpiredOrInvalid)
		}
		return fmt.Errorf("%w: %w", ErrAuthRejected, err)

	case errors.Is(err, adapter.ErrBadRequest):
		switch msg {
		case app.MsgInvalidCheckpoint:
			return fmt.Errorf("%w: %w", ErrInvalidCheckpoint, err)
		case app.MsgNoOwnerIDProvided:
			return fmt.Errorf("%w: %w", ErrInvalidOwnerID, err)
		}
	}

	return err
}

// extractBody extracts the body from a message of the form "bad request: <body>"
func extractBody(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx != -1 {
		return msg[idx+2:]
	}
	return msg
}

// describeSyncError renders err as the one-line text shown in the status
// view.
func describeSyncError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTokenIsExpired):
		return "session expired, sign in again"
	case errors.Is(err, ErrAuthRejected):
		return "server rejected credentials"
	case errors.Is(err, context.DeadlineExceeded):
		return "server did not answer in time"
	case errors.Is(err, adapter.ErrTransport):
		return "server unreachable"
	case errors.Is(err, adapter.ErrTooManyRequests):
		return "server is throttling requests"
	case adapter.IsRetryable(err):
		return "server error, will retry"
	case errors.Is(err, ErrInvalidCheckpoint):
		return "sync position reset, downloading everything"
	case errors.Is(err, ErrPushFailed):
		return "upload failed, will retry"
	case errors.Is(err, ErrNotSynced):
		return "some changes are waiting for their collection"
	default:
		return "sync failed"
	}
}
