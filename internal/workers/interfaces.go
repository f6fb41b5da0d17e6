// Package workers runs the client's long-lived background loops: the sync
// coordinator and the connectivity monitor that feeds it online and
// offline edges.
package workers

import "context"

// Worker is a background loop that blocks until ctx is cancelled or it
// fails.
type Worker interface {
	Run(ctx context.Context) error
}

// HealthProber reports whether the sync server is reachable.
type HealthProber interface {
	Health(ctx context.Context) error
}

// ConnectivityListener receives connectivity edges.
type ConnectivityListener interface {
	NotifyOnline()
	NotifyOffline()
}
