package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-deck-sync/models"
	"github.com/google/uuid"
)

// Field names accepted by [ChangeValidator.Validate] to narrow the checks.
const (
	FieldOperation = "op"
	FieldType      = "type"
	FieldID        = "id"
	FieldParentID  = "parent_id"
	FieldPayload   = "data"
)

// DefaultMaxChanges caps the number of changes in one push request.
const DefaultMaxChanges = 500

// ChangeValidator validates [models.Change] values and push requests.
type ChangeValidator struct {
	maxChanges int
}

// NewChangeValidator returns a validator allowing at most maxChanges changes
// per push. Non-positive values fall back to [DefaultMaxChanges].
func NewChangeValidator(maxChanges int) Validator {
	if maxChanges <= 0 {
		maxChanges = DefaultMaxChanges
	}
	return &ChangeValidator{maxChanges: maxChanges}
}

func (v *ChangeValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Change:
		return v.validateChange(ctx, value, fields...)
	case *models.Change:
		return v.validateChange(ctx, *value, fields...)

	case models.PushRequest:
		return v.validatePushRequest(ctx, value)
	case *models.PushRequest:
		return v.validatePushRequest(ctx, *value)

	default:
		return ErrUnsupportedType
	}
}

// validatePushRequest checks only the envelope. Individual changes are
// validated one by one by the pusher so that a bad change is rejected alone.
func (v *ChangeValidator) validatePushRequest(_ context.Context, req models.PushRequest) error {
	if len(req.Changes) == 0 {
		return ErrEmptyChanges
	}
	if len(req.Changes) > v.maxChanges {
		return fmt.Errorf("%w: %d > %d", ErrTooManyChanges, len(req.Changes), v.maxChanges)
	}
	return nil
}

func (v *ChangeValidator) validateChange(_ context.Context, change models.Change, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldOperation, FieldType, FieldID, FieldParentID, FieldPayload}
	}

	for _, field := range fields {
		var err error
		switch field {
		case FieldOperation:
			err = validateOperation(change.Op)
		case FieldType:
			err = validateEntityType(change.Type)
		case FieldID:
			if !isUUID(change.ID) {
				err = ErrInvalidID
			}
		case FieldParentID:
			err = validateParentID(change)
		case FieldPayload:
			err = validatePayload(change)
		default:
			err = fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func validateOperation(op models.Operation) error {
	switch op {
	case models.OpPut, models.OpPatch, models.OpDelete:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidOperation, op)
}

func validateEntityType(t models.EntityType) error {
	switch t {
	case models.EntityParent, models.EntityChild:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidEntityType, t)
}

func validateParentID(change models.Change) error {
	if change.Type == models.EntityChild {
		if !isUUID(change.ParentID) {
			return ErrInvalidParentID
		}
		return nil
	}
	if change.ParentID != "" {
		return ErrUnexpectedParent
	}
	return nil
}

// validatePayload checks required and typed fields. DELETE carries no
// required payload.
func validatePayload(change models.Change) error {
	if change.Op == models.OpDelete {
		return nil
	}

	full := change.Op == models.OpPut
	data := change.Data

	if change.Type == models.EntityParent {
		if err := checkString(data, models.FieldTitle, full, ErrEmptyTitle); err != nil {
			return err
		}
		if err := checkString(data, models.FieldSource, false, nil); err != nil {
			return err
		}
		if raw, ok := data[models.FieldIsPublic]; ok && raw != nil {
			if _, isBool := raw.(bool); !isBool {
				return fmt.Errorf("%w: %s", ErrInvalidFieldType, models.FieldIsPublic)
			}
		}
		return nil
	}

	if err := checkString(data, models.FieldFront, full, ErrEmptyFront); err != nil {
		return err
	}
	if err := checkString(data, models.FieldBack, full, ErrEmptyBack); err != nil {
		return err
	}
	if err := checkString(data, models.FieldHint, false, nil); err != nil {
		return err
	}
	return checkOrder(data)
}

// checkString verifies that key, when present, is a string. With required
// set the key must be present and non-empty; emptyErr is returned otherwise.
func checkString(data map[string]any, key string, required bool, emptyErr error) error {
	raw, ok := data[key]
	if !ok || raw == nil {
		if required {
			return emptyErr
		}
		return nil
	}

	s, isString := raw.(string)
	if !isString {
		return fmt.Errorf("%w: %s", ErrInvalidFieldType, key)
	}
	if s == "" && emptyErr != nil {
		return emptyErr
	}
	return nil
}

func checkOrder(data map[string]any) error {
	raw, ok := data[models.FieldOrder]
	if !ok || raw == nil {
		return nil
	}

	switch n := raw.(type) {
	case int:
		if n >= 0 {
			return nil
		}
	case int64:
		if n >= 0 {
			return nil
		}
	case float64:
		if n >= 0 && n == float64(int64(n)) {
			return nil
		}
	}
	return ErrInvalidOrder
}

func isUUID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
