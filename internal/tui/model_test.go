package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/service"
	"github.com/MKhiriev/go-deck-sync/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollections struct {
	service.ClientCollectionService

	items    []models.CachedCollection
	failures []models.FailedEntry
	created  []string
	deleted  []string
	cards    [][2]string
}

func (f *fakeCollections) List(context.Context) ([]models.CachedCollection, error) {
	return f.items, nil
}

func (f *fakeCollections) CreateCollection(_ context.Context, title, _ string, _ bool) (models.CachedCollection, error) {
	f.created = append(f.created, title)
	return models.CachedCollection{}, nil
}

func (f *fakeCollections) DeleteCollection(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCollections) DeleteCard(_ context.Context, _, cardID string) error {
	f.deleted = append(f.deleted, cardID)
	return nil
}

func (f *fakeCollections) AddCard(_ context.Context, _, front, back, _ string) (models.Card, error) {
	f.cards = append(f.cards, [2]string{front, back})
	return models.Card{}, nil
}

func (f *fakeCollections) Failures(context.Context) ([]models.FailedEntry, error) {
	return f.failures, nil
}

type fakeSync struct {
	service.ClientSyncService

	updates    chan models.SyncStatus
	forced     int
	foreground int
	resyncErr  error
}

func (f *fakeSync) Subscribe() <-chan models.SyncStatus { return f.updates }
func (f *fakeSync) Status() models.SyncStatus           { return models.SyncStatus{Online: true} }
func (f *fakeSync) ForceSync()                          { f.forced++ }
func (f *fakeSync) NotifyForeground()                   { f.foreground++ }
func (f *fakeSync) Resync(context.Context) error        { return f.resyncErr }

func newTestModel(items ...models.CachedCollection) (model, *fakeCollections, *fakeSync) {
	collections := &fakeCollections{items: items}
	sync := &fakeSync{updates: make(chan models.SyncStatus, 1)}
	m := newModel(context.Background(), collections, sync, "test")
	m.items = items
	return m, collections, sync
}

func biology() models.CachedCollection {
	return models.CachedCollection{
		Collection: models.Collection{
			ID:    "c1",
			Title: "Biology",
			Cards: []models.Card{
				{ID: "k1", Front: "Cell", Back: "Unit of life"},
				{ID: "k2", Front: "Gone", Deleted: true},
				{ID: "k3", Front: "Atom", Back: "Unit of matter"},
			},
			CardCount: 2,
		},
		Status: models.LocalPending,
	}
}

func press(m model, keys ...string) (model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, c := m.Update(msg)
		m, cmd = next.(model), c
	}
	return m, cmd
}

func run(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(model)
}

func TestModel_CreateCollection(t *testing.T) {
	m, collections, _ := newTestModel()

	m, _ = press(m, "n", "Chemistry")
	assert.Equal(t, inputTitle, m.stage)

	m, cmd := press(m, "enter")
	assert.Equal(t, inputNone, m.stage)
	m = run(t, m, cmd)

	assert.Equal(t, []string{"Chemistry"}, collections.created)
	assert.Equal(t, "collection created", m.flash)
}

func TestModel_AddCardAsksFrontThenBack(t *testing.T) {
	m, collections, _ := newTestModel(biology())

	m, _ = press(m, "a", "Ion", "enter")
	assert.Equal(t, inputBack, m.stage)

	m, cmd := press(m, "Charged atom", "enter")
	run(t, m, cmd)

	assert.Equal(t, [][2]string{{"Ion", "Charged atom"}}, collections.cards)
}

func TestModel_DeleteCardSkipsTombstones(t *testing.T) {
	m, collections, _ := newTestModel(biology())

	m, _ = press(m, "enter", "down")
	assert.True(t, m.open)
	assert.Equal(t, 1, m.cardIdx)

	m, cmd := press(m, "d")
	run(t, m, cmd)
	assert.Equal(t, []string{"k3"}, collections.deleted)
}

func TestModel_SyncKeysAndFocus(t *testing.T) {
	m, _, sync := newTestModel()

	m, _ = press(m, "s")
	assert.Equal(t, 1, sync.forced)

	m.Update(tea.FocusMsg{})
	assert.Equal(t, 1, sync.foreground)
}

func TestModel_ResyncErrorIsShown(t *testing.T) {
	m, _, sync := newTestModel()
	sync.resyncErr = errors.New("disk full")

	m, cmd := press(m, "r")
	m = run(t, m, cmd)
	assert.Equal(t, "disk full", m.errMsg)
}

func TestModel_CopyFailures(t *testing.T) {
	var copied string
	orig := writeClipboard
	writeClipboard = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { writeClipboard = orig })

	m, collections, _ := newTestModel()
	collections.failures = []models.FailedEntry{{
		Change:     models.Change{Op: models.OpPut, Type: models.EntityChild, ID: "k9"},
		Reason:     "forbidden",
		RetryCount: 0,
		FailedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}}

	m, cmd := press(m, "c")
	m = run(t, m, cmd)

	assert.Equal(t, "1 failed changes copied", m.flash)
	assert.Equal(t, "2026-01-02T03:04:05Z PUT child k9: forbidden (attempts: 0)\n", copied)
}

func TestModel_StatusUpdateRendersHealth(t *testing.T) {
	m, _, _ := newTestModel(biology())

	next, cmd := m.Update(statusMsg{status: models.SyncStatus{
		State:     models.SyncBackoffWait,
		Online:    true,
		Pending:   3,
		LastError: "server unreachable",
	}})
	m = next.(model)
	assert.NotNil(t, cmd)

	view := m.View()
	assert.True(t, strings.Contains(view, "degraded"))
	assert.True(t, strings.Contains(view, "3 pending"))
	assert.True(t, strings.Contains(view, "server unreachable"))
	assert.True(t, strings.Contains(view, "Biology (2)"))
}

func TestRenderStatus_Synced(t *testing.T) {
	line := renderStatus(models.SyncStatus{Online: true}, "", time.Now())
	assert.Contains(t, line, "synced")
	assert.NotContains(t, line, "offline")

	line = renderStatus(models.SyncStatus{}, "", time.Now())
	assert.Contains(t, line, "offline")
}
