// Package deadlock is a thin HTTP client for the public Deadlock API.
// It keeps request policy in one place: timeouts, bounded retries with
// exponential backoff, and pacing between calls.
package deadlock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
	"github.com/deadlock-tools/tracker/internal/platform/timeouts"
	"github.com/deadlock-tools/tracker/internal/tracker/observability"
)

// Defaults for the public API endpoints and request policy.
const (
	DefaultBaseURL       = "https://api.deadlock-api.com"
	DefaultAssetsBaseURL = "https://assets.deadlock-api.com"

	defaultMaxAttempts       = 3
	defaultRequestsPerSecond = 2.0
)

// Config holds client construction options. Zero values fall back to the
// package defaults.
type Config struct {
	BaseURL           string
	AssetsBaseURL     string
	Timeout           time.Duration
	MaxAttempts       int
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client calls the Deadlock match and assets APIs. It is safe for
// concurrent use.
type Client struct {
	baseURL       string
	assetsBaseURL string
	httpClient    *http.Client
	limiter       *rate.Limiter
	maxAttempts   int
}

// New creates a client with the given configuration.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	assetsBaseURL := strings.TrimRight(strings.TrimSpace(cfg.AssetsBaseURL), "/")
	if assetsBaseURL == "" {
		assetsBaseURL = DefaultAssetsBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = timeouts.APIRequest
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	perSecond := cfg.RequestsPerSecond
	if perSecond <= 0 {
		perSecond = defaultRequestsPerSecond
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:       baseURL,
		assetsBaseURL: assetsBaseURL,
		httpClient:    httpClient,
		limiter:       rate.NewLimiter(rate.Limit(perSecond), 1),
		maxAttempts:   maxAttempts,
	}
}

// retryableStatus reports whether a response status warrants another attempt.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// get fetches a JSON document, pacing and retrying per client policy.
func (c *Client) get(ctx context.Context, base, path string, query url.Values) ([]byte, error) {
	fullURL := base + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	endpoint := metricEndpoint(path)
	started := time.Now()
	defer func() {
		observability.UpstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
	}()

	attempt := func() ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", fullURL, err)
		}
		defer resp.Body.Close()

		if retryableStatus(resp.StatusCode) {
			return nil, fmt.Errorf("request %s: status %s", fullURL, resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("request %s: status %s", fullURL, resp.Status))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response %s: %w", fullURL, err)
		}
		return body, nil
	}

	body, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(c.maxAttempts)),
	)
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, apperrors.Wrap(
			apperrors.CodeIngestFetchFailed,
			fmt.Sprintf("GET %s failed after %d attempts", fullURL, c.maxAttempts),
			err,
		)
	}
	observability.UpstreamRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}

// metricEndpoint collapses numeric path segments so per-id URLs share one
// metric label.
func metricEndpoint(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if _, err := strconv.ParseInt(segment, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

func getJSON[T any](ctx context.Context, c *Client, base, path string, query url.Values) (T, error) {
	var value T
	body, err := c.get(ctx, base, path, query)
	if err != nil {
		return value, err
	}
	if err := json.Unmarshal(body, &value); err != nil {
		return value, apperrors.Wrap(apperrors.CodeIngestBadPayload, fmt.Sprintf("decode %s response", path), err)
	}
	return value, nil
}

// EsportsMatches lists tracked esports matches.
func (c *Client) EsportsMatches(ctx context.Context) ([]EsportsMatch, error) {
	return getJSON[[]EsportsMatch](ctx, c, c.baseURL, "/v1/esports/matches", nil)
}

// MatchMetadata fetches the full metadata document for one match.
func (c *Client) MatchMetadata(ctx context.Context, matchID int64) (MatchMetadata, error) {
	return getJSON[MatchMetadata](ctx, c, c.baseURL, fmt.Sprintf("/v1/matches/%d/metadata", matchID), nil)
}

// PlayerMatchHistory fetches a player's match history.
func (c *Client) PlayerMatchHistory(ctx context.Context, accountID int64, onlyStoredHistory bool) ([]MatchHistoryEntry, error) {
	query := url.Values{"only_stored_history": {strconv.FormatBool(onlyStoredHistory)}}
	return getJSON[[]MatchHistoryEntry](ctx, c, c.baseURL, fmt.Sprintf("/v1/players/%d/match-history", accountID), query)
}

// Heroes lists heroes from the assets API.
func (c *Client) Heroes(ctx context.Context) ([]AssetHero, error) {
	return getJSON[[]AssetHero](ctx, c, c.assetsBaseURL, "/v2/heroes", nil)
}

// Items lists items (abilities and shop upgrades) from the assets API.
func (c *Client) Items(ctx context.Context) ([]AssetItem, error) {
	return getJSON[[]AssetItem](ctx, c, c.assetsBaseURL, "/v2/items", nil)
}

// Ranks lists rank badges from the assets API.
func (c *Client) Ranks(ctx context.Context) ([]AssetRank, error) {
	return getJSON[[]AssetRank](ctx, c, c.assetsBaseURL, "/v2/ranks", nil)
}

// RawResource fetches an assets API resource without decoding so dump files
// preserve the upstream response shape verbatim.
func (c *Client) RawResource(ctx context.Context, path string) (json.RawMessage, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	body, err := c.get(ctx, c.assetsBaseURL, path, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Download streams a binary asset (hero images) to the writer.
func (c *Client) Download(ctx context.Context, rawURL string, dst io.Writer) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIconDownloadFailed, fmt.Sprintf("download %s", rawURL), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apperrors.New(apperrors.CodeIconDownloadFailed, fmt.Sprintf("download %s: status %s", rawURL, resp.Status))
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return apperrors.Wrap(apperrors.CodeIconDownloadFailed, fmt.Sprintf("write %s", rawURL), err)
	}
	return nil
}

// DownloadTo streams a binary asset into a local file. Partial files are
// removed on failure.
func (c *Client) DownloadTo(ctx context.Context, rawURL, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := c.Download(ctx, rawURL, file); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
