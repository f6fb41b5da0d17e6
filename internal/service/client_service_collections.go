package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/store"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
	"github.com/MKhiriev/go-deck-sync/models"
)

type clientCollectionService struct {
	cache    store.LocalCache
	queue    store.LocalQueue
	notifier SyncNotifier
	ids      *utils.UUIDGenerator
	logger   *logger.Logger
}

// NewClientCollectionService returns the mutation service. notifier may be
// nil when no coordinator runs.
func NewClientCollectionService(cache store.LocalCache, queue store.LocalQueue, notifier SyncNotifier, logger *logger.Logger) ClientCollectionService {
	return &clientCollectionService{
		cache:    cache,
		queue:    queue,
		notifier: notifier,
		ids:      utils.NewUUIDGenerator(),
		logger:   logger,
	}
}

func (s *clientCollectionService) CreateCollection(ctx context.Context, title, source string, isPublic bool) (models.CachedCollection, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.CachedCollection{}, ErrEmptyTitle
	}

	change := models.Change{
		Op:   models.OpPut,
		Type: models.EntityParent,
		ID:   s.ids.Generate(),
		Data: map[string]any{
			models.FieldTitle:    title,
			models.FieldIsPublic: isPublic,
			models.FieldSource:   source,
		},
	}

	if err := s.apply(ctx, change, "clientCollectionService.CreateCollection"); err != nil {
		return models.CachedCollection{}, err
	}

	return s.cache.GetCollection(ctx, change.ID)
}

func (s *clientCollectionService) UpdateCollection(ctx context.Context, id string, patch CollectionPatch) error {
	data := make(map[string]any, 3)
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		data[models.FieldTitle] = title
	}
	if patch.IsPublic != nil {
		data[models.FieldIsPublic] = *patch.IsPublic
	}
	if patch.Source != nil {
		data[models.FieldSource] = *patch.Source
	}
	if len(data) == 0 {
		return ErrNoChanges
	}

	if _, err := s.cache.GetCollection(ctx, id); err != nil {
		return err
	}

	return s.apply(ctx, models.Change{
		Op:   models.OpPatch,
		Type: models.EntityParent,
		ID:   id,
		Data: data,
	}, "clientCollectionService.UpdateCollection")
}

func (s *clientCollectionService) DeleteCollection(ctx context.Context, id string) error {
	if _, err := s.cache.GetCollection(ctx, id); err != nil {
		return err
	}

	return s.apply(ctx, models.Change{
		Op:   models.OpDelete,
		Type: models.EntityParent,
		ID:   id,
	}, "clientCollectionService.DeleteCollection")
}

func (s *clientCollectionService) AddCard(ctx context.Context, collectionID, front, back, hint string) (models.Card, error) {
	front, back = strings.TrimSpace(front), strings.TrimSpace(back)
	if front == "" || back == "" {
		return models.Card{}, ErrEmptyCard
	}

	collection, err := s.cache.GetCollection(ctx, collectionID)
	if err != nil {
		return models.Card{}, err
	}

	change := models.Change{
		Op:       models.OpPut,
		Type:     models.EntityChild,
		ID:       s.ids.Generate(),
		ParentID: collectionID,
		Data: map[string]any{
			models.FieldFront: front,
			models.FieldBack:  back,
			models.FieldHint:  hint,
			models.FieldOrder: len(collection.Cards),
		},
	}

	if err = s.apply(ctx, change, "clientCollectionService.AddCard"); err != nil {
		return models.Card{}, err
	}

	updated, err := s.cache.GetCollection(ctx, collectionID)
	if err != nil {
		return models.Card{}, err
	}
	idx := updated.CardIndex(change.ID)
	if idx < 0 {
		return models.Card{}, fmt.Errorf("card %s missing after insert", change.ID)
	}

	return updated.Cards[idx], nil
}

func (s *clientCollectionService) UpdateCard(ctx context.Context, collectionID, cardID string, patch CardPatch) error {
	data := make(map[string]any, 4)
	if patch.Front != nil {
		if strings.TrimSpace(*patch.Front) == "" {
			return ErrEmptyCard
		}
		data[models.FieldFront] = strings.TrimSpace(*patch.Front)
	}
	if patch.Back != nil {
		if strings.TrimSpace(*patch.Back) == "" {
			return ErrEmptyCard
		}
		data[models.FieldBack] = strings.TrimSpace(*patch.Back)
	}
	if patch.Hint != nil {
		data[models.FieldHint] = *patch.Hint
	}
	if patch.Order != nil {
		data[models.FieldOrder] = max(*patch.Order, 0)
	}
	if len(data) == 0 {
		return ErrNoChanges
	}

	if err := s.requireCard(ctx, collectionID, cardID); err != nil {
		return err
	}

	return s.apply(ctx, models.Change{
		Op:       models.OpPatch,
		Type:     models.EntityChild,
		ID:       cardID,
		ParentID: collectionID,
		Data:     data,
	}, "clientCollectionService.UpdateCard")
}

func (s *clientCollectionService) DeleteCard(ctx context.Context, collectionID, cardID string) error {
	if err := s.requireCard(ctx, collectionID, cardID); err != nil {
		return err
	}

	return s.apply(ctx, models.Change{
		Op:       models.OpDelete,
		Type:     models.EntityChild,
		ID:       cardID,
		ParentID: collectionID,
	}, "clientCollectionService.DeleteCard")
}

func (s *clientCollectionService) List(ctx context.Context) ([]models.CachedCollection, error) {
	return s.cache.ListCollections(ctx)
}

func (s *clientCollectionService) Get(ctx context.Context, id string) (models.CachedCollection, error) {
	return s.cache.GetCollection(ctx, id)
}

func (s *clientCollectionService) Failures(ctx context.Context) ([]models.FailedEntry, error) {
	return s.queue.Failures(ctx)
}

func (s *clientCollectionService) requireCard(ctx context.Context, collectionID, cardID string) error {
	collection, err := s.cache.GetCollection(ctx, collectionID)
	if err != nil {
		return err
	}

	idx := collection.CardIndex(cardID)
	if idx < 0 || collection.Cards[idx].Deleted {
		return fmt.Errorf("%w: card %s", store.ErrCollectionNotFound, cardID)
	}
	return nil
}

// apply writes change to the cache and the queue, then pokes the
// coordinator.
func (s *clientCollectionService) apply(ctx context.Context, change models.Change, funcName string) error {
	log := logger.FromContext(ctx)

	entry, err := s.cache.ApplyLocal(ctx, change)
	if err != nil {
		log.Err(err).
			Str("func", funcName).
			Str("entity_id", change.ID).
			Msg("failed to apply local change")
		if errors.Is(err, store.ErrStoreUnavailable) {
			return err
		}
		return fmt.Errorf("apply %s %s: %w", change.Op, change.Type, err)
	}

	s.logger.Debug().
		Str("func", funcName).
		Str("entity_id", change.ID).
		Int64("seq", entry.Seq).
		Msg("local change queued")

	if s.notifier != nil {
		s.notifier.NotifyLocalChange()
	}
	return nil
}
