// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/app"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/projector"
	"github.com/MKhiriev/go-deck-sync/internal/store"
	"github.com/MKhiriev/go-deck-sync/internal/validators"
	"github.com/MKhiriev/go-deck-sync/models"
)

const documentLockStripes = 64

type pushService struct {
	collections store.CollectionStore
	validator   validators.Validator
	now         func() time.Time

	// locks serializes read-modify-write cycles per collection.
	locks [documentLockStripes]sync.Mutex

	logger *logger.Logger
}

// NewPushService constructs the change pusher over collections. validator
// checks each change on its own; the request envelope is checked by
// [NewPushValidationService].
func NewPushService(collections store.CollectionStore, validator validators.Validator, logger *logger.Logger) PushService {
	return &pushService{
		collections: collections,
		validator:   validator,
		now:         time.Now,
		logger:      logger,
	}
}

// Push implements [PushService].
//
// Changes are applied one by one in request order, so a card change may
// follow the PUT of its own collection within the same push. A rejected
// change never affects its siblings. Only a store failure aborts the call;
// changes applied before it stay applied, which is safe because every
// change is idempotent.
func (s *pushService) Push(ctx context.Context, ownerID int64, changes []models.Change) ([]models.ChangeResult, error) {
	log := logger.FromContext(ctx)

	if ownerID <= 0 {
		return nil, ErrInvalidOwnerID
	}

	results := make([]models.ChangeResult, 0, len(changes))
	for i, change := range changes {
		result, err := s.apply(ctx, ownerID, change)
		if err != nil {
			log.Err(err).
				Str("func", "pushService.Push").
				Int64("owner_id", ownerID).
				Int("index", i).
				Str("entity_id", change.ID).
				Msg("push aborted")
			return nil, fmt.Errorf("push aborted at change %d: %w", i, err)
		}

		if !result.Applied() {
			log.Info().
				Int64("owner_id", ownerID).
				Str("entity_id", change.ID).
				Str("type", string(change.Type)).
				Str("op", string(change.Op)).
				Str("reason", result.Reason).
				Msg("change rejected")
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *pushService) apply(ctx context.Context, ownerID int64, change models.Change) (models.ChangeResult, error) {
	if err := s.validator.Validate(ctx, change); err != nil {
		return rejected(change, app.ReasonMalformed), nil
	}

	docID := change.ID
	if change.IsChild() {
		docID = change.ParentID
	}

	mu := s.lockFor(docID)
	mu.Lock()
	defer mu.Unlock()

	if change.IsChild() {
		return s.applyChild(ctx, ownerID, change)
	}
	return s.applyParent(ctx, ownerID, change)
}

func (s *pushService) applyParent(ctx context.Context, ownerID int64, change models.Change) (models.ChangeResult, error) {
	var existing *models.Collection

	found, err := s.collections.FindByID(ctx, change.ID)
	switch {
	case errors.Is(err, store.ErrCollectionNotFound):
	case err != nil:
		return models.ChangeResult{}, err
	default:
		if found.OwnerID != ownerID {
			return rejected(change, app.ReasonForbidden), nil
		}
		existing = &found
	}

	now := s.now().UTC()

	if change.Op == models.OpDelete {
		// deleting what is absent or already deleted succeeds without a write
		if existing == nil || existing.Deleted {
			return applied(change), nil
		}
		if err = s.collections.SoftDelete(ctx, change.ID, now); err != nil {
			return models.ChangeResult{}, err
		}
		return applied(change), nil
	}

	doc, err := projector.AbsorbParent(existing, change, ownerID, now)
	if err != nil {
		return rejected(change, app.ReasonMalformed), nil
	}

	if err = s.collections.Upsert(ctx, *doc); err != nil {
		return models.ChangeResult{}, err
	}

	return applied(change), nil
}

func (s *pushService) applyChild(ctx context.Context, ownerID int64, change models.Change) (models.ChangeResult, error) {
	parent, err := s.collections.FindByID(ctx, change.ParentID)
	if errors.Is(err, store.ErrCollectionNotFound) {
		return rejected(change, app.ReasonParentNotFound), nil
	}
	if err != nil {
		return models.ChangeResult{}, err
	}

	switch {
	case parent.OwnerID != ownerID:
		return rejected(change, app.ReasonForbidden), nil
	case parent.Deleted:
		return rejected(change, app.ReasonParentDeleted), nil
	}

	if err = projector.AbsorbChild(&parent, change, s.now()); err != nil {
		return rejected(change, app.ReasonMalformed), nil
	}

	if err = s.collections.Upsert(ctx, parent); err != nil {
		return models.ChangeResult{}, err
	}

	return applied(change), nil
}

func (s *pushService) lockFor(docID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(docID))
	return &s.locks[h.Sum32()%documentLockStripes]
}

func applied(change models.Change) models.ChangeResult {
	return models.ChangeResult{EntityID: change.ID, Status: models.StatusApplied}
}

func rejected(change models.Change, reason string) models.ChangeResult {
	return models.ChangeResult{EntityID: change.ID, Status: models.StatusRejected, Reason: reason}
}
