package adapter

import (
	"context"
	"errors"
	"net"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrPayloadTooLarge     = errors.New("payload too large")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")
	ErrBadGateway          = errors.New("bad gateway")
	ErrServiceUnavailable  = errors.New("service unavailable")
	ErrGatewayTimeout      = errors.New("gateway timeout")
	ErrServerError         = errors.New("server error")

	// ErrTransport wraps failures below HTTP: DNS, refused connections,
	// resets, client-side timeouts.
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse is returned when a 2xx body cannot be decoded or
	// does not match the request.
	ErrMalformedResponse = errors.New("malformed server response")
)

// IsRetryable reports whether a failed call may succeed if repeated later:
// transport errors, timeouts, 5xx and 429. Authentication failures and 4xx
// are not retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, ErrTransport),
		errors.Is(err, ErrMalformedResponse),
		errors.Is(err, ErrTooManyRequests),
		errors.Is(err, ErrInternalServerError),
		errors.Is(err, ErrBadGateway),
		errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, ErrGatewayTimeout),
		errors.Is(err, ErrServerError),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsAuthFailure reports whether err is a top-level 401 or 403.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}
