// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-deck-sync/internal/app"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
	"github.com/go-chi/chi/v5"
)

// CheckHTTPMethod is registered as the router's MethodNotAllowed handler.
// A sync endpoint hit with the wrong method answers 404 with the usual JSON
// error body instead of chi's bare 405, so clients only ever see the routes
// they are meant to call.
//
//	router := chi.NewRouter()
//	// ... register routes ...
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router *chi.Mux) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.NewRouteContext()
		if router.Match(rctx, r.Method, r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}

		utils.WriteError(w, app.MsgRouteNotFound, http.StatusNotFound)
	}
}
