// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/projector"
	"github.com/MKhiriev/go-deck-sync/internal/store"
	"github.com/MKhiriev/go-deck-sync/models"
)

type pullService struct {
	collections store.CollectionStore
	now         func() time.Time

	logger *logger.Logger
}

// NewPullService constructs the checkpoint puller over collections.
func NewPullService(collections store.CollectionStore, logger *logger.Logger) PullService {
	return &pullService{
		collections: collections,
		now:         time.Now,
		logger:      logger,
	}
}

// Pull implements [PullService].
//
// The next checkpoint is taken before the store is queried, so a write that
// races with the query is delivered again by the following pull instead of
// being skipped. Parents always precede their own cards in the result.
func (s *pullService) Pull(ctx context.Context, ownerID int64, checkpoint string) (models.PullResponse, error) {
	log := logger.FromContext(ctx)

	if ownerID <= 0 {
		return models.PullResponse{}, ErrInvalidOwnerID
	}

	since, err := models.ParseCheckpoint(checkpoint)
	if err != nil {
		log.Warn().Err(err).Int64("owner_id", ownerID).Str("checkpoint", checkpoint).Msg("invalid checkpoint")
		return models.PullResponse{}, fmt.Errorf("%w: %w", ErrInvalidCheckpoint, err)
	}

	next := models.NewCheckpoint(s.now())

	collections, err := s.collections.FindByOwner(ctx, ownerID, since.Time())
	if err != nil {
		log.Err(err).
			Str("func", "pullService.Pull").
			Int64("owner_id", ownerID).
			Time("since", since.Time()).
			Msg("failed to load collections for pull")
		return models.PullResponse{}, fmt.Errorf("pull failed: %w", err)
	}

	changes := projector.FlattenAll(collections)

	log.Debug().
		Int64("owner_id", ownerID).
		Int("collections", len(collections)).
		Int("changes", len(changes)).
		Msg("pull served")

	return models.PullResponse{
		Checkpoint: next.String(),
		Changes:    changes,
	}, nil
}
