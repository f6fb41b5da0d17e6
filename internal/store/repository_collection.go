package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/models"
)

// collectionRepository is the PostgreSQL-backed [CollectionStore]. A
// collection is one row; its cards live in a JSONB column in list order.
type collectionRepository struct {
	*DB
	logger *logger.Logger
}

// NewCollectionRepository constructs a [CollectionStore] backed by db.
func NewCollectionRepository(db *DB, logger *logger.Logger) CollectionStore {
	return &collectionRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *collectionRepository) FindByOwner(ctx context.Context, ownerID int64, since time.Time) ([]models.Collection, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindCollectionsByOwnerQuery(ctx, ownerID, since)
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.FindByOwner").
			Int64("owner_id", ownerID).
			Msg("failed to create query")
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "collectionRepository.FindByOwner").
			Int64("owner_id", ownerID).
			Time("since", since).
			Msg("failed to execute query for owner collections")
		return nil, r.wrapError(ErrExecutingQuery, err)
	}
	defer rows.Close()

	collections := make([]models.Collection, 0, 16)
	for rows.Next() {
		collection, scanErr := scanCollection(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "collectionRepository.FindByOwner").
				Int64("owner_id", ownerID).
				Msg("failed to scan collection row")
			return nil, scanErr
		}
		collections = append(collections, collection)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "collectionRepository.FindByOwner").
			Int64("owner_id", ownerID).
			Msg("error occurred during rows iteration")
		return nil, r.wrapError(ErrScanningRows, rowsErr)
	}

	return collections, nil
}

func (r *collectionRepository) FindByID(ctx context.Context, id string) (models.Collection, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildFindCollectionByIDQuery(ctx, id)
	if err != nil {
		log.Err(err).Str("func", "collectionRepository.FindByID").Str("id", id).Msg("failed to create query")
		return models.Collection{}, err
	}

	collection, err := scanCollection(r.DB.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Collection{}, ErrCollectionNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "collectionRepository.FindByID").Str("id", id).Msg("failed to get collection")
		if errors.Is(err, ErrDecodingDocument) {
			return models.Collection{}, err
		}
		return models.Collection{}, r.wrapError(ErrExecutingQuery, err)
	}

	return collection, nil
}

func (r *collectionRepository) Upsert(ctx context.Context, collection models.Collection) error {
	log := logger.FromContext(ctx)

	query, args, err := buildUpsertCollectionQuery(ctx, collection)
	if err != nil {
		log.Err(err).Str("func", "collectionRepository.Upsert").Str("id", collection.ID).Msg("failed to create query")
		return err
	}

	if _, err = r.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "collectionRepository.Upsert").
			Str("id", collection.ID).
			Int64("owner_id", collection.OwnerID).
			Msg("failed to upsert collection")
		return r.wrapError(ErrExecutingStatement, err)
	}

	return nil
}

func (r *collectionRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	log := logger.FromContext(ctx)

	query, args, err := buildSoftDeleteCollectionQuery(ctx, id, at)
	if err != nil {
		log.Err(err).Str("func", "collectionRepository.SoftDelete").Str("id", id).Msg("failed to create query")
		return err
	}

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "collectionRepository.SoftDelete").Str("id", id).Msg("failed to soft delete collection")
		return r.wrapError(ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return r.wrapError(ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrCollectionNotFound
	}

	return nil
}

func (r *collectionRepository) Ping(ctx context.Context) error {
	if err := r.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (models.Collection, error) {
	var (
		c         models.Collection
		cardsJSON []byte
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Title,
		&c.IsPublic,
		&c.Source,
		&c.CardCount,
		&cardsJSON,
		&c.Deleted,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Collection{}, err
		}
		return models.Collection{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	c.Cards = []models.Card{}
	if len(cardsJSON) > 0 {
		if err = json.Unmarshal(cardsJSON, &c.Cards); err != nil {
			return models.Collection{}, fmt.Errorf("%w: %w", ErrDecodingDocument, err)
		}
	}

	createdAt, updatedAt = createdAt.UTC(), updatedAt.UTC()
	c.CreatedAt = &createdAt
	c.UpdatedAt = &updatedAt
	c.RecountCards()

	return c, nil
}
