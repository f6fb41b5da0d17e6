package http

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-deck-sync/internal/app"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
	"github.com/MKhiriev/go-deck-sync/models"
)

// pull serves GET /api/sync/pull?checkpoint=<token>.
func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, found := utils.GetOwnerIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.pull").Msg("no owner ID was given")
		utils.WriteError(w, app.MsgNoOwnerIDProvided, http.StatusBadRequest)
		return
	}

	response, err := h.services.PullService.Pull(ctx, ownerID, r.URL.Query().Get("checkpoint"))
	if err != nil {
		status, message := statusFromError(err)
		log.Err(err).Str("func", "*Handler.pull").Int("status", status).Msg("pull failed")
		utils.WriteError(w, message, status)
		return
	}

	utils.WriteJSON(w, response, http.StatusOK)
}

// push serves POST /api/sync/push. Per-change outcomes are always reported
// with 200; other statuses mean nothing could be reported.
func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, found := utils.GetOwnerIDFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.push").Msg("no owner ID was given")
		utils.WriteError(w, app.MsgNoOwnerIDProvided, http.StatusBadRequest)
		return
	}

	var request models.PushRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPushBodyBytes)).Decode(&request); err != nil {
		log.Err(err).Str("func", "*Handler.push").Msg("invalid JSON was passed")
		utils.WriteError(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	results, err := h.services.PushService.Push(ctx, ownerID, request.Changes)
	if err != nil {
		status, message := statusFromError(err)
		log.Err(err).Str("func", "*Handler.push").Int("status", status).Msg("push failed")
		utils.WriteError(w, message, status)
		return
	}

	utils.WriteJSON(w, models.PushResponse{Results: results, Length: len(results)}, http.StatusOK)
}
