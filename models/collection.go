// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Collection is the authoritative nested document: a titled, owned list of
// cards. The server stores it as one record; the wire never carries it whole,
// only its flat projection into [Change] rows.
type Collection struct {
	// ID is the client-generated UUID of the collection.
	ID string `json:"id"`

	// OwnerID is the user the collection belongs to. Taken from the bearer
	// token on the server, never from the payload.
	OwnerID int64 `json:"owner_id"`

	Title    string `json:"title"`
	IsPublic bool   `json:"is_public"`

	// Source is a free-form provenance tag (e.g. "manual", "import").
	Source string `json:"source,omitempty"`

	// CardCount equals the number of non-deleted entries in Cards.
	// It is recomputed by RecountCards and never trusted from storage.
	CardCount int `json:"card_count"`

	// Cards is ordered; position is the card's order.
	Cards []Card `json:"cards"`

	Deleted   bool       `json:"deleted"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Card is a child entity of a [Collection]. It has no owner of its own:
// ownership is membership in the parent's Cards list.
type Card struct {
	ID        string     `json:"id"`
	Front     string     `json:"front"`
	Back      string     `json:"back"`
	Hint      string     `json:"hint,omitempty"`
	Deleted   bool       `json:"deleted"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// RecountCards sets CardCount to the number of live cards.
func (c *Collection) RecountCards() {
	count := 0
	for _, card := range c.Cards {
		if !card.Deleted {
			count++
		}
	}
	c.CardCount = count
}

// CardIndex returns the position of the card with the given id, or -1.
func (c *Collection) CardIndex(cardID string) int {
	for i := range c.Cards {
		if c.Cards[i].ID == cardID {
			return i
		}
	}
	return -1
}

// LiveCards returns the non-deleted cards in list order.
func (c *Collection) LiveCards() []Card {
	live := make([]Card, 0, len(c.Cards))
	for _, card := range c.Cards {
		if !card.Deleted {
			live = append(live, card)
		}
	}
	return live
}

// Clone returns a deep copy so callers can mutate the result without
// touching the original's card slice.
func (c Collection) Clone() Collection {
	out := c
	if c.Cards != nil {
		out.Cards = make([]Card, len(c.Cards))
		copy(out.Cards, c.Cards)
	}
	return out
}
