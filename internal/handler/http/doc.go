// Package http is the REST transport of the sync server.
//
// It wires the chi router, the pull and push handlers and the middleware
// chain in front of them. Authentication, request tracing, access logging,
// response compression and push integrity checks live here; everything
// else is delegated to the service layer.
package http
