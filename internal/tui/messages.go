package tui

import "github.com/MKhiriev/go-deck-sync/models"

type statusMsg struct {
	status models.SyncStatus
	closed bool
}

type collectionsLoadedMsg struct {
	items []models.CachedCollection
	err   error
}

type actionDoneMsg struct {
	done string
	err  error
}

type clearFlashMsg struct{}
