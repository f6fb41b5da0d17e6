package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-deck-sync/internal/app"
	"github.com/MKhiriev/go-deck-sync/internal/service"
	"github.com/MKhiriev/go-deck-sync/internal/store"
	"github.com/MKhiriev/go-deck-sync/internal/validators"
)

type errorResponse struct {
	status  int
	message string
}

var errorStatusMap = map[error]errorResponse{
	service.ErrInvalidOwnerID:          {http.StatusBadRequest, app.MsgNoOwnerIDProvided},
	service.ErrInvalidCheckpoint:       {http.StatusBadRequest, app.MsgInvalidCheckpoint},
	service.ErrTokenIsExpired:          {http.StatusUnauthorized, app.MsgTokenIsExpired},
	service.ErrTokenIsExpiredOrInvalid: {http.StatusUnauthorized, app.MsgTokenIsExpiredOrInvalid},

	validators.ErrEmptyChanges:   {http.StatusBadRequest, app.MsgNoChangesProvided},
	validators.ErrTooManyChanges: {http.StatusRequestEntityTooLarge, app.MsgTooManyChanges},

	store.ErrStoreUnavailable: {http.StatusServiceUnavailable, app.MsgStoreUnavailable},
}

// statusFromError returns the HTTP status and the response message for a
// service error. Unknown errors become 500 without leaking their text.
func statusFromError(err error) (int, string) {
	for target, resp := range errorStatusMap {
		if errors.Is(err, target) {
			return resp.status, resp.message
		}
	}
	return http.StatusInternalServerError, app.MsgInternalServerError
}
