// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client's transport to the sync server.
//
// [ServerAdapter] decouples the sync coordinator from the protocol. The
// package ships an HTTP/REST implementation ([NewHTTPServerAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling, and [IsRetryable] to decide whether a failed call is worth
// another attempt.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-deck-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines transport-agnostic communication with the sync
// server. Implementations handle serialisation, the bearer token and the
// mapping of transport failures to the sentinel values of this package.
type ServerAdapter interface {
	// Pull fetches every change after checkpoint. An empty checkpoint asks
	// for a full snapshot.
	Pull(ctx context.Context, checkpoint string) (models.PullResponse, error)

	// Push sends changes in order and returns one result per change, aligned
	// with the input. A non-nil error means no per-item results are
	// available: the whole batch failed.
	Push(ctx context.Context, changes []models.Change) ([]models.ChangeResult, error)

	// Health probes the server's unauthenticated health endpoint.
	Health(ctx context.Context) error
}
