// Package server runs the sync server's transports.
//
// The HTTP transport carries the pull and push API; the optional gRPC
// transport serves the standard health protocol. Both stop gracefully on
// SIGTERM, SIGINT or SIGQUIT.
package server
