package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-deck-sync/models"
)

const collectionsTable = "collections"

var collectionColumns = []string{
	"id",
	"owner_id",
	"title",
	"is_public",
	"source",
	"card_count",
	"cards",
	"deleted",
	"created_at",
	"updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildFindCollectionsByOwnerQuery selects the collections of ownerID changed
// strictly after since, oldest first. A zero since drops the time filter.
func buildFindCollectionsByOwnerQuery(_ context.Context, ownerID int64, since time.Time) (string, []any, error) {
	builder := psql.
		Select(collectionColumns...).
		From(collectionsTable).
		Where(sq.Eq{"owner_id": ownerID})

	if !since.IsZero() {
		builder = builder.Where(sq.Gt{"updated_at": since.UTC()})
	}

	query, args, err := builder.OrderBy("updated_at ASC", "id ASC").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildFindCollectionByIDQuery(_ context.Context, id string) (string, []any, error) {
	query, args, err := psql.
		Select(collectionColumns...).
		From(collectionsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildUpsertCollectionQuery writes the whole document. The owner of an
// existing row is never changed.
func buildUpsertCollectionQuery(_ context.Context, c models.Collection) (string, []any, error) {
	cards := c.Cards
	if cards == nil {
		cards = []models.Card{}
	}
	cardsJSON, err := json.Marshal(cards)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrEncodingDocument, err)
	}

	query, args, err := psql.
		Insert(collectionsTable).
		Columns(collectionColumns...).
		Values(
			c.ID,
			c.OwnerID,
			c.Title,
			c.IsPublic,
			c.Source,
			c.CardCount,
			string(cardsJSON),
			c.Deleted,
			timeOrNow(c.CreatedAt),
			timeOrNow(c.UpdatedAt),
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			is_public = EXCLUDED.is_public,
			source = EXCLUDED.source,
			card_count = EXCLUDED.card_count,
			cards = EXCLUDED.cards,
			deleted = EXCLUDED.deleted,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func buildSoftDeleteCollectionQuery(_ context.Context, id string, at time.Time) (string, []any, error) {
	query, args, err := psql.
		Update(collectionsTable).
		Set("deleted", true).
		Set("updated_at", at.UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

func timeOrNow(t *time.Time) time.Time {
	if t == nil {
		return time.Now().UTC()
	}
	return t.UTC()
}
