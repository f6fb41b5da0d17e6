package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-deck-sync/internal/validators"
	"github.com/MKhiriev/go-deck-sync/models"
)

// PushServiceWrapper defines middleware composition for PushService.
// Implementations wrap an existing PushService to add behavior such as
// validating the request envelope.
type PushServiceWrapper interface {
	Wrap(PushService) PushService
}

// PushValidationService rejects push requests whose envelope is invalid
// (no changes, too many changes) before they reach the pusher.
type PushValidationService struct {
	inner     PushService
	validator validators.Validator
}

func NewPushValidationService(validator validators.Validator) PushServiceWrapper {
	return &PushValidationService{validator: validator}
}

func (v *PushValidationService) Push(ctx context.Context, ownerID int64, changes []models.Change) ([]models.ChangeResult, error) {
	if err := v.validator.Validate(ctx, models.PushRequest{Changes: changes}); err != nil {
		return nil, fmt.Errorf("error during push request validation: %w", err)
	}

	return v.inner.Push(ctx, ownerID, changes)
}

func (v *PushValidationService) Wrap(inner PushService) PushService {
	v.inner = inner
	return v
}
