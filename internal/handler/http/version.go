package http

import (
	"net/http"

	"github.com/MKhiriev/go-deck-sync/internal/app"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
)

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	serverVersion := h.services.AppInfoService.GetAppVersion(r.Context())

	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte(serverVersion))
}

// health answers 200 while the authoritative store responds to a ping.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.services.HealthService.Ping(r.Context()); err != nil {
		logger.FromRequest(r).Warn().Err(err).Str("func", "*Handler.health").Msg("store ping failed")
		utils.WriteError(w, app.MsgStoreUnavailable, http.StatusServiceUnavailable)
		return
	}

	utils.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
