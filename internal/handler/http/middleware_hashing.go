package http

import (
	"bytes"
	"crypto/hmac"
	"encoding/json"
	"io"
	"net/http"

	"github.com/MKhiriev/go-deck-sync/internal/app"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
	"github.com/MKhiriev/go-deck-sync/models"
)

// pushHashing rejects push bodies whose "hash" is not the HMAC of their
// "changes". The hash is computed over the re-encoded changes, so field
// order in the original body does not matter.
func (h *Handler) pushHashing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPushBodyBytes))
		if err != nil {
			log.Err(err).Str("func", "*Handler.pushHashing").Msg("failed to read request body")
			utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		var req models.PushRequest
		if err = json.Unmarshal(body, &req); err != nil {
			log.Err(err).Str("func", "*Handler.pushHashing").Msg("failed to decode JSON")
			utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
			return
		}

		expected, err := utils.HashChanges(req.Changes)
		if err != nil {
			log.Err(err).Str("func", "*Handler.pushHashing").Msg("failed to hash changes")
			utils.WriteError(w, app.MsgInternalServerError, http.StatusInternalServerError)
			return
		}

		if !hmac.Equal([]byte(expected), []byte(req.Hash)) {
			log.Error().Str("func", "*Handler.pushHashing").
				Str("hash from request", req.Hash).
				Str("hashed body", expected).
				Msg("hashes are not equal")
			utils.WriteError(w, app.MsgIntegrityCheckFailed, http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
