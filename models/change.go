// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Operation is the kind of mutation a [Change] carries.
type Operation string

const (
	// OpPut creates or fully replaces the entity.
	OpPut Operation = "PUT"
	// OpPatch merges the payload fields into the existing entity.
	OpPatch Operation = "PATCH"
	// OpDelete soft-deletes the entity.
	OpDelete Operation = "DELETE"
)

// EntityType tells whether a [Change] targets a collection or one of its cards.
type EntityType string

const (
	EntityParent EntityType = "parent"
	EntityChild  EntityType = "child"
)

// Change is the flat, wire-level unit of replication. Nested documents are
// projected into a sequence of Changes on pull and rebuilt from them on push.
type Change struct {
	Op   Operation  `json:"op"`
	Type EntityType `json:"type"`
	ID   string     `json:"id"`

	// ParentID is set only for child changes.
	ParentID string `json:"parentId,omitempty"`

	// Data holds the entity's scalar fields. For children it also carries
	// "order", the card's position in the parent list.
	Data map[string]any `json:"data"`
}

// IsChild reports whether the change targets a card.
func (c Change) IsChild() bool {
	return c.Type == EntityChild
}

// Payload keys shared by the projector, the validators and the client UI.
const (
	FieldTitle     = "title"
	FieldIsPublic  = "isPublic"
	FieldSource    = "source"
	FieldCardCount = "cardCount"
	FieldFront     = "front"
	FieldBack      = "back"
	FieldHint      = "hint"
	FieldOrder     = "order"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldDeleted   = "deleted"
)

// ResultStatus is the per-item outcome of a push.
type ResultStatus string

const (
	StatusApplied  ResultStatus = "applied"
	StatusRejected ResultStatus = "rejected"
)

// ChangeResult reports what the server did with one pushed change.
type ChangeResult struct {
	EntityID string       `json:"entityId"`
	Status   ResultStatus `json:"status"`
	Reason   string       `json:"reason,omitempty"`
}

// Applied reports whether the change was accepted.
func (r ChangeResult) Applied() bool {
	return r.Status == StatusApplied
}
