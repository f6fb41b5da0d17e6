package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
	"github.com/MKhiriev/go-deck-sync/models"
	"github.com/go-resty/resty/v2"
)

const (
	healthPath = "/api/health"
	pullPath   = "/api/sync/pull"
	pushPath   = "/api/sync/push"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	hashKey string
	token   string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress, bounds every request by adapterCfg.RequestTimeout
// and, when appCfg.HashKey is set, signs push bodies.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as
// a valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := utils.NewHTTPClient(adapterCfg.RequestTimeout)
	client.SetBaseURL(baseURL)

	if appCfg.HashKey != "" {
		utils.InitHasherPool(appCfg.HashKey)
	}

	return &httpServerAdapter{
		client:  client,
		hashKey: appCfg.HashKey,
		token:   strings.TrimSpace(appCfg.Token),
		logger:  logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Pull implements [ServerAdapter] with GET /api/sync/pull?checkpoint=...
func (h *httpServerAdapter) Pull(ctx context.Context, checkpoint string) (models.PullResponse, error) {
	req := h.authedRequest(ctx)
	if checkpoint != "" {
		req.SetQueryParam("checkpoint", checkpoint)
	}

	resp, err := req.Get(pullPath)
	if err != nil {
		return models.PullResponse{}, fmt.Errorf("%w: pull request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.PullResponse{}, err
	}

	var pulled models.PullResponse
	if err = json.Unmarshal(resp.Body(), &pulled); err != nil {
		return models.PullResponse{}, fmt.Errorf("%w: decode pull response: %w", ErrMalformedResponse, err)
	}

	return pulled, nil
}

// Push implements [ServerAdapter] with POST /api/sync/push. The response must
// carry exactly one result per change.
func (h *httpServerAdapter) Push(ctx context.Context, changes []models.Change) ([]models.ChangeResult, error) {
	log := logger.FromContext(ctx)

	body := models.PushRequest{Changes: changes}
	if h.hashKey != "" {
		hash, err := utils.HashChanges(changes)
		if err != nil {
			log.Err(err).Str("func", "httpServerAdapter.Push").Msg("failed to hash push body")
			return nil, err
		}
		body.Hash = hash
	}

	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(pushPath)
	if err != nil {
		return nil, fmt.Errorf("%w: push request: %w", ErrTransport, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var pushed models.PushResponse
	if err = json.Unmarshal(resp.Body(), &pushed); err != nil {
		return nil, fmt.Errorf("%w: decode push response: %w", ErrMalformedResponse, err)
	}
	if len(pushed.Results) != len(changes) {
		return nil, fmt.Errorf("%w: %d results for %d changes", ErrMalformedResponse, len(pushed.Results), len(changes))
	}

	return pushed.Results, nil
}

// Health implements [ServerAdapter] with GET /api/health.
func (h *httpServerAdapter) Health(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get(healthPath)
	if err != nil {
		return fmt.Errorf("%w: health request: %w", ErrTransport, err)
	}

	return mapHTTPError(resp)
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.token; token != "" {
		req.SetAuthToken(token)
	}
	return req
}
