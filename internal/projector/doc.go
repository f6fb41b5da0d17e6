// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package projector converts between the nested [models.Collection] document
// and the flat [models.Change] rows that travel over the wire.
//
// Flatten turns one document into a parent change followed by one change per
// card, in list order. Absorb applies a single change to a document. Both are
// pure: no I/O, no clocks (callers pass "now"), no shared state. The server
// pusher and the client's local cache use the same functions, so an edit made
// offline produces exactly the document the server will later build from it.
package projector
