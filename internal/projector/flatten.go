// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package projector

import (
	"time"

	"github.com/MKhiriev/go-deck-sync/models"
)

// Flatten projects doc into flat changes: the parent first, then one change
// per card in list order with "order" set to the card's index.
//
// Live entities become PUT. A deleted collection becomes a single DELETE
// tombstone (its cards go with it); a deleted card becomes a child DELETE.
// Data maps are JSON-encoded with sorted keys, so the same document always
// serialises to the same bytes.
func Flatten(doc models.Collection) []models.Change {
	if doc.Deleted {
		return []models.Change{{
			Op:   models.OpDelete,
			Type: models.EntityParent,
			ID:   doc.ID,
			Data: tombstoneData(doc.UpdatedAt),
		}}
	}

	changes := make([]models.Change, 0, len(doc.Cards)+1)
	changes = append(changes, models.Change{
		Op:   models.OpPut,
		Type: models.EntityParent,
		ID:   doc.ID,
		Data: parentData(doc),
	})

	for i, card := range doc.Cards {
		change := models.Change{
			Op:       models.OpPut,
			Type:     models.EntityChild,
			ID:       card.ID,
			ParentID: doc.ID,
		}
		if card.Deleted {
			change.Op = models.OpDelete
			change.Data = tombstoneData(card.UpdatedAt)
			change.Data[models.FieldOrder] = i
		} else {
			change.Data = childData(card, i)
		}
		changes = append(changes, change)
	}

	return changes
}

// FlattenAll flattens every document, keeping document order.
func FlattenAll(docs []models.Collection) []models.Change {
	changes := make([]models.Change, 0, len(docs))
	for _, doc := range docs {
		changes = append(changes, Flatten(doc)...)
	}
	return changes
}

func parentData(doc models.Collection) map[string]any {
	live := 0
	for _, card := range doc.Cards {
		if !card.Deleted {
			live++
		}
	}

	data := map[string]any{
		models.FieldTitle:     doc.Title,
		models.FieldIsPublic:  doc.IsPublic,
		models.FieldCardCount: live,
		models.FieldDeleted:   false,
	}
	if doc.Source != "" {
		data[models.FieldSource] = doc.Source
	}
	putTime(data, models.FieldCreatedAt, doc.CreatedAt)
	putTime(data, models.FieldUpdatedAt, doc.UpdatedAt)

	return data
}

func childData(card models.Card, order int) map[string]any {
	data := map[string]any{
		models.FieldFront:   card.Front,
		models.FieldBack:    card.Back,
		models.FieldOrder:   order,
		models.FieldDeleted: false,
	}
	if card.Hint != "" {
		data[models.FieldHint] = card.Hint
	}
	putTime(data, models.FieldCreatedAt, card.CreatedAt)
	putTime(data, models.FieldUpdatedAt, card.UpdatedAt)

	return data
}

func tombstoneData(updatedAt *time.Time) map[string]any {
	data := map[string]any{models.FieldDeleted: true}
	putTime(data, models.FieldUpdatedAt, updatedAt)
	return data
}

func putTime(data map[string]any, key string, t *time.Time) {
	if t == nil || t.IsZero() {
		return
	}
	data[key] = formatTime(*t)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
