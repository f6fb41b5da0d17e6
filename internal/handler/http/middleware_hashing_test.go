package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-deck-sync/internal/app"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
	"github.com/MKhiriev/go-deck-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedPushBody(t *testing.T, changes []models.Change, hash string) []byte {
	t.Helper()
	if hash == "" {
		var err error
		hash, err = utils.HashChanges(changes)
		require.NoError(t, err)
	}
	body, err := json.Marshal(models.PushRequest{Changes: changes, Hash: hash})
	require.NoError(t, err)
	return body
}

func TestPushHashing(t *testing.T) {
	utils.InitHasherPool("push-secret")

	changes := []models.Change{{
		Op:   models.OpPut,
		Type: models.EntityParent,
		ID:   biologyID,
		Data: map[string]any{models.FieldTitle: "Biology"},
	}}

	tests := []struct {
		name       string
		body       []byte
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "matching hash",
			body:       signedPushBody(t, changes, ""),
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "tampered hash",
			body:       signedPushBody(t, changes, "00ff"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    app.MsgIntegrityCheckFailed,
		},
		{
			name:       "not JSON",
			body:       []byte("changes=1"),
			wantStatus: http.StatusBadRequest,
			wantMsg:    app.MsgInvalidDataProvided,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t)

			var forwarded []byte
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				forwarded, _ = io.ReadAll(r.Body)
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/sync/push", bytes.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.pushHashing(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeError(t, rr))
				return
			}
			assert.Equal(t, tt.body, forwarded, "body must be restored for the push handler")
		})
	}
}
