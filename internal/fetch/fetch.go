package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"btc-command-center/internal/metrics"
)

const defaultUserAgent = "btc-command-center"

// Client wraps an http.Client with a bounded timeout for the public market
// and on-chain endpoints. Every failure comes back as an error the caller
// degrades on; nothing here is fatal.
type Client struct {
	httpc     *http.Client
	logger    *slog.Logger
	userAgent string
}

func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpc:     &http.Client{Timeout: timeout},
		logger:    logger,
		userAgent: defaultUserAgent,
	}
}

// GetJSON issues a GET with the given query params and decodes the JSON
// body into v. Non-2xx statuses and undecodable bodies are errors.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, v any) error {
	body, err := c.get(ctx, rawURL, params, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		c.count(rawURL, "decode_error")
		return fmt.Errorf("decode %s: %w", endpointLabel(rawURL), err)
	}
	c.count(rawURL, "ok")
	return nil
}

// GetInt fetches an endpoint whose body is a bare integer in text form
// (mempool.space serves the chain tip height that way).
func (c *Client) GetInt(ctx context.Context, rawURL string) (int64, error) {
	body, err := c.get(ctx, rawURL, nil, nil)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		c.count(rawURL, "decode_error")
		return 0, fmt.Errorf("parse int body from %s: %w", endpointLabel(rawURL), err)
	}
	c.count(rawURL, "ok")
	return n, nil
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	u := rawURL
	if len(params) > 0 {
		u = rawURL + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", endpointLabel(rawURL), err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.count(rawURL, "network_error")
		return nil, fmt.Errorf("get %s: %w", endpointLabel(rawURL), err)
	}
	defer resp.Body.Close()
	metrics.FetchLatencyMs.WithLabelValues(endpointLabel(rawURL)).Observe(float64(time.Since(start).Milliseconds()))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.count(rawURL, "http_error")
		return nil, fmt.Errorf("get %s: status %d", endpointLabel(rawURL), resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		c.count(rawURL, "network_error")
		return nil, fmt.Errorf("read %s: %w", endpointLabel(rawURL), err)
	}
	return body, nil
}

func (c *Client) count(rawURL, outcome string) {
	metrics.FetchRequestsTotal.WithLabelValues(endpointLabel(rawURL), outcome).Inc()
	if outcome != "ok" && c.logger != nil {
		c.logger.Debug("fetch failed", slog.String("endpoint", endpointLabel(rawURL)), slog.String("outcome", outcome))
	}
}

// endpointLabel keeps metric cardinality bounded: host + path, no query.
func endpointLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Host + u.Path
}
