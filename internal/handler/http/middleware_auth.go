package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-deck-sync/internal/app"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/service"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
)

// auth enforces bearer-token authentication. On success the owner id from
// the token's subject is stored under [utils.OwnerIDCtxKey]; every failure
// is answered with 401 and a JSON error body the client can tell apart.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Err(ErrEmptyAuthorizationHeader).Send()
			utils.WriteError(w, ErrEmptyAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			log.Err(err).Send()
			utils.WriteError(w, ErrInvalidAuthorizationHeader.Error(), http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		token, err := h.services.AuthService.ParseToken(ctx, tokenString)
		if err != nil {
			if errors.Is(err, service.ErrTokenIsExpired) {
				log.Err(err).Msg("token expired")
				utils.WriteError(w, app.MsgTokenIsExpired, http.StatusUnauthorized)
				return
			}
			log.Err(err).Msg("error occurred during parsing token")
			utils.WriteError(w, app.MsgTokenIsExpiredOrInvalid, http.StatusUnauthorized)
			return
		}

		ctx = context.WithValue(ctx, utils.OwnerIDCtxKey, token.OwnerID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
