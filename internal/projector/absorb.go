// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package projector

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-deck-sync/models"
)

// Absorb applies change to a copy of doc and returns the copy.
//
// For parent changes doc may be nil (create). A nil result with a nil error
// means there is nothing to persist: a DELETE of a collection that does not
// exist. Child changes require doc.
func Absorb(doc *models.Collection, change models.Change, ownerID int64, now time.Time) (*models.Collection, error) {
	switch change.Type {
	case models.EntityParent:
		return AbsorbParent(doc, change, ownerID, now)
	case models.EntityChild:
		if doc == nil {
			return nil, ErrMissingParent
		}
		out := doc.Clone()
		if err := AbsorbChild(&out, change, now); err != nil {
			return nil, err
		}
		return &out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntityType, change.Type)
	}
}

// AbsorbParent merges a parent change into existing and returns the result
// as a new document. existing is never modified.
//
// PUT replaces the scalar fields, PATCH overwrites only the fields present in
// the payload; both create the collection when existing is nil and revive a
// soft-deleted one. DELETE marks the collection deleted. The card list is
// left alone: cards change only through child changes.
func AbsorbParent(existing *models.Collection, change models.Change, ownerID int64, now time.Time) (*models.Collection, error) {
	if change.Type != models.EntityParent {
		return nil, fmt.Errorf("%w: expected parent, got %q", ErrUnknownEntityType, change.Type)
	}

	now = now.UTC()

	switch change.Op {
	case models.OpDelete:
		if existing == nil {
			return nil, nil
		}
		doc := existing.Clone()
		doc.Deleted = true
		doc.UpdatedAt = &now
		return &doc, nil

	case models.OpPut, models.OpPatch:
		var fields parentFields
		if err := decodePayload(change.Data, &fields); err != nil {
			return nil, err
		}

		var doc models.Collection
		if existing != nil {
			doc = existing.Clone()
		} else {
			doc = models.Collection{ID: change.ID, OwnerID: ownerID, Cards: []models.Card{}}
			doc.CreatedAt = pickTime(fields.CreatedAt, now)
		}

		if change.Op == models.OpPut {
			doc.Title = deref(fields.Title)
			doc.IsPublic = fields.IsPublic != nil && *fields.IsPublic
			doc.Source = deref(fields.Source)
		} else {
			if fields.Title != nil {
				doc.Title = *fields.Title
			}
			if fields.IsPublic != nil {
				doc.IsPublic = *fields.IsPublic
			}
			if fields.Source != nil {
				doc.Source = *fields.Source
			}
		}

		doc.Deleted = false
		doc.UpdatedAt = &now
		doc.RecountCards()
		return &doc, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, change.Op)
	}
}

// AbsorbChild applies a card change to parent in place.
//
// PUT and PATCH remove any card with the same id and insert the new version
// at "order", clamped to the list bounds. Without "order" the card keeps its
// old position, or is appended if it is new. DELETE tombstones the card and
// is a no-op for unknown ids. The parent's card count and UpdatedAt are
// refreshed on every successful call.
func AbsorbChild(parent *models.Collection, change models.Change, now time.Time) error {
	if parent == nil {
		return ErrMissingParent
	}
	if change.Type != models.EntityChild {
		return fmt.Errorf("%w: expected child, got %q", ErrUnknownEntityType, change.Type)
	}

	now = now.UTC()
	idx := parent.CardIndex(change.ID)

	switch change.Op {
	case models.OpDelete:
		if idx < 0 {
			return nil
		}
		parent.Cards[idx].Deleted = true
		parent.Cards[idx].UpdatedAt = &now

	case models.OpPut, models.OpPatch:
		var fields childFields
		if err := decodePayload(change.Data, &fields); err != nil {
			return err
		}

		card := models.Card{ID: change.ID}
		if idx >= 0 {
			card = parent.Cards[idx]
		}
		if card.CreatedAt == nil {
			card.CreatedAt = pickTime(fields.CreatedAt, now)
		}

		if change.Op == models.OpPut {
			card.Front = deref(fields.Front)
			card.Back = deref(fields.Back)
			card.Hint = deref(fields.Hint)
		} else {
			if fields.Front != nil {
				card.Front = *fields.Front
			}
			if fields.Back != nil {
				card.Back = *fields.Back
			}
			if fields.Hint != nil {
				card.Hint = *fields.Hint
			}
		}
		card.Deleted = false
		card.UpdatedAt = &now

		target := len(parent.Cards)
		if idx >= 0 {
			target = idx
			parent.Cards = append(parent.Cards[:idx], parent.Cards[idx+1:]...)
		}
		if fields.Order != nil {
			target = *fields.Order
		}
		parent.Cards = insertAt(parent.Cards, card, target)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperation, change.Op)
	}

	parent.RecountCards()
	parent.UpdatedAt = &now

	return nil
}

func insertAt(cards []models.Card, card models.Card, pos int) []models.Card {
	if pos < 0 {
		pos = 0
	}
	if pos > len(cards) {
		pos = len(cards)
	}

	cards = append(cards, models.Card{})
	copy(cards[pos+1:], cards[pos:])
	cards[pos] = card
	return cards
}

func pickTime(t *time.Time, fallback time.Time) *time.Time {
	if t != nil && !t.IsZero() {
		v := t.UTC()
		return &v
	}
	return &fallback
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
