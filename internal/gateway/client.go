package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/petalworks/shop-miniapp/pkg/config"
	pkgerrors "github.com/petalworks/shop-miniapp/pkg/errors"
	"github.com/petalworks/shop-miniapp/pkg/logger"
	"github.com/petalworks/shop-miniapp/pkg/metrics"
)

// Client is the single remote data gateway. Every other component talks to
// the backend exclusively through Do; no component performs raw network
// calls itself.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
	metrics    *metrics.GatewayMetrics
}

// NewClient builds the gateway against the configured API root.
func NewClient(cfg config.APIConfig, logg *logger.Logger, gm *metrics.GatewayMetrics) (*Client, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base url required")
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logg,
		metrics:    gm,
	}, nil
}

// Do issues one request against the API root. path must begin with "/" and
// keep the backend's trailing slash exactly; the backend routes on it. A
// non-nil body is serialized as JSON. A non-nil out receives the decoded
// JSON response; a 204 response is a defined no-content success and leaves
// out untouched.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	requestID := uuid.NewString()
	ctx = c.logger.WithRequestID(ctx, requestID)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ObserveDuration(method, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(method)
		wrapped := pkgerrors.Wrap(pkgerrors.CodeTransport, err, "network request failed")
		c.logger.Error(c.logger.WithField(ctx, "error_chain", pkgerrors.Dump(wrapped)),
			"gateway request failed", err)
		return wrapped
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	c.metrics.IncRequest(method, resp.StatusCode)

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := extractErrorMessage(resp)
		c.logger.Warn(c.logger.WithFields(ctx, map[string]any{
			"status": resp.StatusCode,
			"path":   path,
		}), "gateway request rejected: "+message)
		return pkgerrors.New(pkgerrors.CodeFromStatus(resp.StatusCode), message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response body")
	}
	return nil
}

// Get is shorthand for a body-less GET.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// extractErrorMessage pulls a human-readable message out of a JSON error
// body, falling back to the transport status text.
func extractErrorMessage(resp *http.Response) string {
	fallback := resp.Status
	if fallback == "" {
		fallback = http.StatusText(resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || len(raw) == 0 {
		return fallback
	}

	var parsed struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fallback
	}
	if detail, ok := parsed.Detail.(string); ok && detail != "" {
		return detail
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	if parsed.Error != "" {
		return parsed.Error
	}
	return fallback
}
