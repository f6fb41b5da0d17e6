package service

import (
	"context"

	"github.com/MKhiriev/go-deck-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// PullService serves checkpoint-based pulls of an owner's collections.
type PullService interface {
	// Pull returns every change of ownerID after checkpoint together with the
	// checkpoint to send next time. Store failures fail the whole pull.
	Pull(ctx context.Context, ownerID int64, checkpoint string) (models.PullResponse, error)
}

// PushService applies client changes to the authoritative collections.
type PushService interface {
	// Push applies changes in order and returns one result per change. An
	// error is returned only when no results can be reported at all.
	Push(ctx context.Context, ownerID int64, changes []models.Change) ([]models.ChangeResult, error)
}

type AuthService interface {
	CreateToken(ctx context.Context, ownerID int64) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// HealthService reports whether the authoritative store is reachable.
type HealthService interface {
	Ping(ctx context.Context) error
}
