// internal/common/http/client.go
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	apperrors "petopia-search/internal/common/errors"
	"petopia-search/internal/common/metrics"
)

const maxErrorBody = 4096

// TokenFunc returns the current bearer token, or "" when the caller is
// anonymous.
type TokenFunc func() string

// Client is a JSON-over-HTTP client rooted at the backend base URL.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Options configures NewClient.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Token     TokenFunc
	Transport http.RoundTripper
}

func NewClient(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "petopia-search/1.0"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &bearerTransport{base: base, token: opts.Token},
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: userAgent,
	}
}

// GetRaw issues a GET for path?rawQuery and returns the body of a 2xx
// response. Non-2xx responses become *errors.StandardError carrying the
// status code.
func (c *Client) GetRaw(ctx context.Context, path, rawQuery string) ([]byte, error) {
	target := c.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperrors.NewRequestFailedError(http.MethodGet, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(path, "error", time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.NewRequestFailedError(http.MethodGet, path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRequest(path, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apperrors.NewHTTPStatusError(http.MethodGet, path, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.NewRequestFailedError(http.MethodGet, path, err)
	}
	return body, nil
}

// bearerTransport attaches the Authorization header when a token is present.
type bearerTransport struct {
	base  http.RoundTripper
	token TokenFunc
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == nil {
		return t.base.RoundTrip(req)
	}
	token := t.token()
	if token == "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(clone)
}
