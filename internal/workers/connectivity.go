package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/logger"
)

const (
	defaultHealthInterval = 10 * time.Second
	probeTimeout          = 5 * time.Second
)

// ConnectivityMonitor probes the server at a fixed interval and tells its
// listener when reachability changes. Repeated probes with the same outcome
// produce no notification.
type ConnectivityMonitor struct {
	prober   HealthProber
	listener ConnectivityListener
	interval time.Duration
	logger   *logger.Logger
}

func NewConnectivityMonitor(prober HealthProber, listener ConnectivityListener, interval time.Duration, logger *logger.Logger) *ConnectivityMonitor {
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	return &ConnectivityMonitor{
		prober:   prober,
		listener: listener,
		interval: interval,
		logger:   logger,
	}
}

// Run probes once immediately and then every interval until ctx ends.
func (m *ConnectivityMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var known, online bool
	for {
		reachable := m.probe(ctx)
		if ctx.Err() != nil {
			return nil
		}

		if !known || reachable != online {
			known, online = true, reachable
			if online {
				m.logger.Info().Msg("server reachable")
				m.listener.NotifyOnline()
			} else {
				m.logger.Warn().Msg("server unreachable")
				m.listener.NotifyOffline()
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (m *ConnectivityMonitor) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := m.prober.Health(ctx); err != nil {
		m.logger.Debug().Err(err).Str("func", "*ConnectivityMonitor.probe").Msg("health probe failed")
		return false
	}
	return true
}
