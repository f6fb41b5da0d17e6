package handler

import (
	"testing"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverConfig(httpAddr, grpcAddr string) *config.StructuredConfig {
	return &config.StructuredConfig{
		Server: config.Server{HTTPAddress: httpAddr, GRPCAddress: grpcAddr},
	}
}

func TestNewHandlers(t *testing.T) {
	tests := []struct {
		name     string
		httpAddr string
		grpcAddr string
		wantHTTP bool
		wantGRPC bool
		wantErr  error
	}{
		{name: "both transports", httpAddr: ":8080", grpcAddr: ":9090", wantHTTP: true, wantGRPC: true},
		{name: "only HTTP", httpAddr: ":8080", wantHTTP: true},
		{name: "only gRPC", grpcAddr: ":9090", wantGRPC: true},
		{name: "no transports", wantErr: errNoHandlersAreCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// handlers only keep the services pointer, nil is fine here
			h, err := NewHandlers(nil, serverConfig(tt.httpAddr, tt.grpcAddr), logger.Nop())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, h)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantHTTP, h.HTTP != nil)
			assert.Equal(t, tt.wantGRPC, h.GRPC != nil)
		})
	}
}
