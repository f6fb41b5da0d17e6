// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks the shape of sync changes before they reach the
// projector.
//
// The server validates every pushed change and reports failures as
// "malformed" rejections. The client runs the same checks before enqueueing a
// local edit, so a change the server would reject for its shape never enters
// the durable queue.
package validators

import "context"

// Validator validates an arbitrary input value. When fields are given, only
// those checks run.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
