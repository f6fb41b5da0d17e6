package projector

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/MKhiriev/go-deck-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrTime(t time.Time) *time.Time {
	return &t
}

func biologyDeck(at time.Time) models.Collection {
	return models.Collection{
		ID:        "0190a4c2-0000-7000-8000-000000000001",
		OwnerID:   7,
		Title:     "Biology",
		IsPublic:  true,
		Source:    "manual",
		CreatedAt: ptrTime(at),
		UpdatedAt: ptrTime(at),
		Cards: []models.Card{
			{ID: "card-1", Front: "Cell", Back: "Basic unit of life", CreatedAt: ptrTime(at), UpdatedAt: ptrTime(at)},
			{ID: "card-2", Front: "DNA", Back: "Deoxyribonucleic acid", CreatedAt: ptrTime(at), UpdatedAt: ptrTime(at)},
			{ID: "card-3", Front: "ATP", Back: "Energy currency", Hint: "mitochondria", CreatedAt: ptrTime(at), UpdatedAt: ptrTime(at)},
		},
	}
}

func TestFlatten_ParentThenChildrenInOrder(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := biologyDeck(at)

	changes := Flatten(doc)

	require.Len(t, changes, 4)

	parent := changes[0]
	assert.Equal(t, models.OpPut, parent.Op)
	assert.Equal(t, models.EntityParent, parent.Type)
	assert.Equal(t, doc.ID, parent.ID)
	assert.Empty(t, parent.ParentID)
	assert.Equal(t, "Biology", parent.Data[models.FieldTitle])
	assert.Equal(t, true, parent.Data[models.FieldIsPublic])
	assert.Equal(t, 3, parent.Data[models.FieldCardCount])
	assert.Equal(t, "2026-03-01T10:00:00Z", parent.Data[models.FieldUpdatedAt])

	for i, change := range changes[1:] {
		assert.Equal(t, models.OpPut, change.Op)
		assert.Equal(t, models.EntityChild, change.Type)
		assert.Equal(t, doc.Cards[i].ID, change.ID)
		assert.Equal(t, doc.ID, change.ParentID)
		assert.Equal(t, i, change.Data[models.FieldOrder])
		assert.Equal(t, doc.Cards[i].Front, change.Data[models.FieldFront])
	}
	assert.Equal(t, "mitochondria", changes[3].Data[models.FieldHint])
}

func TestFlatten_DeletedCardBecomesTombstone(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := biologyDeck(at)
	doc.Cards[1].Deleted = true

	changes := Flatten(doc)

	require.Len(t, changes, 4)
	assert.Equal(t, 2, changes[0].Data[models.FieldCardCount])

	tomb := changes[2]
	assert.Equal(t, models.OpDelete, tomb.Op)
	assert.Equal(t, "card-2", tomb.ID)
	assert.Equal(t, true, tomb.Data[models.FieldDeleted])
	assert.Equal(t, 1, tomb.Data[models.FieldOrder])
	assert.NotContains(t, tomb.Data, models.FieldFront)
}

func TestFlatten_DeletedCollectionIsSingleTombstone(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := biologyDeck(at)
	doc.Deleted = true

	changes := Flatten(doc)

	require.Len(t, changes, 1)
	assert.Equal(t, models.OpDelete, changes[0].Op)
	assert.Equal(t, models.EntityParent, changes[0].Type)
	assert.Equal(t, true, changes[0].Data[models.FieldDeleted])
}

func TestFlatten_EmptyCollection(t *testing.T) {
	doc := models.Collection{ID: "empty", Title: "Nothing yet"}

	changes := Flatten(doc)

	require.Len(t, changes, 1)
	assert.Equal(t, 0, changes[0].Data[models.FieldCardCount])
	assert.NotContains(t, changes[0].Data, models.FieldCreatedAt)
	assert.NotContains(t, changes[0].Data, models.FieldSource)
}

func TestFlatten_IsDeterministic(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.FixedZone("UTC+3", 3*3600))
	doc := biologyDeck(at)

	first, err := json.Marshal(Flatten(doc))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := json.Marshal(Flatten(doc))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}

	assert.Contains(t, string(first), `"updatedAt":"2026-03-01T07:00:00.123456789Z"`)
}

func TestFlattenAll_KeepsDocumentOrder(t *testing.T) {
	a := models.Collection{ID: "a", Title: "A", Cards: []models.Card{{ID: "a1"}}}
	b := models.Collection{ID: "b", Title: "B"}

	changes := FlattenAll([]models.Collection{a, b})

	require.Len(t, changes, 3)
	assert.Equal(t, []string{"a", "a1", "b"}, []string{changes[0].ID, changes[1].ID, changes[2].ID})
}
