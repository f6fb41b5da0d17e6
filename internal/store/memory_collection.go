package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MKhiriev/go-deck-sync/models"
)

// memoryCollectionStore keeps collections in a map. It is selected when the
// server runs without a database DSN and backs the service tests.
type memoryCollectionStore struct {
	mu          sync.RWMutex
	collections map[string]models.Collection
}

// NewMemoryCollectionStore returns an empty in-process [CollectionStore].
func NewMemoryCollectionStore() CollectionStore {
	return &memoryCollectionStore{collections: make(map[string]models.Collection)}
}

func (m *memoryCollectionStore) FindByOwner(_ context.Context, ownerID int64, since time.Time) ([]models.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Collection, 0)
	for _, c := range m.collections {
		if c.OwnerID != ownerID {
			continue
		}
		if !since.IsZero() && (c.UpdatedAt == nil || !c.UpdatedAt.After(since)) {
			continue
		}
		result = append(result, c.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		ti, tj := updatedAt(result[i]), updatedAt(result[j])
		if ti.Equal(tj) {
			return result[i].ID < result[j].ID
		}
		return ti.Before(tj)
	})

	return result, nil
}

func (m *memoryCollectionStore) FindByID(_ context.Context, id string) (models.Collection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.collections[id]
	if !ok {
		return models.Collection{}, ErrCollectionNotFound
	}
	return c.Clone(), nil
}

func (m *memoryCollectionStore) Upsert(_ context.Context, collection models.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := collection.Clone()
	if existing, ok := m.collections[stored.ID]; ok {
		stored.OwnerID = existing.OwnerID
		stored.CreatedAt = existing.CreatedAt
	}
	stored.RecountCards()
	m.collections[stored.ID] = stored

	return nil
}

func (m *memoryCollectionStore) SoftDelete(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[id]
	if !ok {
		return ErrCollectionNotFound
	}

	at = at.UTC()
	c.Deleted = true
	c.UpdatedAt = &at
	m.collections[id] = c

	return nil
}

func (m *memoryCollectionStore) Ping(context.Context) error {
	return nil
}

func updatedAt(c models.Collection) time.Time {
	if c.UpdatedAt == nil {
		return time.Time{}
	}
	return *c.UpdatedAt
}
