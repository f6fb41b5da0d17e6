package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly.
//
//	client := utils.NewHTTPClient(10 * time.Second)
//	resp, err := client.R().Get("https://example.com")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates an independent client. A positive timeout bounds
// every request made through it. Retries are left to the caller: the sync
// coordinator owns the backoff policy.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPClient{Client: client}
}
