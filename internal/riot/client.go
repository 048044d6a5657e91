// Package riot is a small client for the account-v1 and match-v5 vendor APIs.
package riot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"lol-encounters/internal/config"
	"lol-encounters/internal/constants"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var (
	ErrNotFound     = errors.New("riot: not found")
	ErrUnauthorized = errors.New("riot: api key rejected")
	ErrNoAPIKey     = errors.New("riot: no api key configured")
)

// RateLimitError is returned for HTTP 429. RetryAfter is zero when the response carried no
// Retry-After header.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("riot: rate limited, retry after %s", e.RetryAfter)
	}
	return "riot: rate limited"
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("riot: api error %d: %s", e.Status, e.Body)
}

// RateLimitInfo mirrors the last X-App-Rate-Limit headers seen, e.g. "20:1,100:120".
type RateLimitInfo struct {
	Limit     string    `json:"limit"`
	Count     string    `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Client struct {
	client  *fasthttp.Client
	limiter *rate.Limiter
	logger  zerolog.Logger

	// baseURL replaces https://{route}.api.riotgames.com when set
	baseURL string

	mu        sync.RWMutex
	apiKey    string
	rateLimit RateLimitInfo
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	return &Client{
		apiKey: cfg.RiotAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     8,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(rate.Every(constants.VendorRequestInterval), constants.VendorBurst),
		logger:  logger.With().Str("component", "riot").Logger(),
	}
}

// SetAPIKey replaces the key used for subsequent requests. An empty key is ignored.
func (c *Client) SetAPIKey(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	c.mu.Lock()
	c.apiKey = key
	c.mu.Unlock()
}

func (c *Client) HasAPIKey() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

func (c *Client) GetRateLimitInfo() RateLimitInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rateLimit
}

func (c *Client) updateRateLimit(resp *fasthttp.Response) {
	limit := string(resp.Header.Peek("X-App-Rate-Limit"))
	count := string(resp.Header.Peek("X-App-Rate-Limit-Count"))
	if limit == "" && count == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if limit != "" {
		c.rateLimit.Limit = limit
	}
	if count != "" {
		c.rateLimit.Count = count
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func (c *Client) endpoint(route, path string) string {
	if c.baseURL != "" {
		return strings.TrimRight(c.baseURL, "/") + path
	}
	return fmt.Sprintf("https://%s.api.riotgames.com%s", route, path)
}

func (c *Client) AccountByRiotID(ctx context.Context, platform, gameName, tagLine string) (*AccountDTO, error) {
	path := fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(strings.TrimSpace(gameName)), url.PathEscape(strings.TrimSpace(tagLine)))
	return doRequest[AccountDTO](ctx, c, c.endpoint(RegionalRoute(platform), path))
}

func (c *Client) MatchIDsByPUUID(ctx context.Context, platform, puuid string, start, count int) ([]string, error) {
	path := fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids?start=%d&count=%d", url.PathEscape(puuid), start, count)
	ids, err := doRequest[[]string](ctx, c, c.endpoint(RegionalRoute(platform), path))
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

func (c *Client) Match(ctx context.Context, platform, matchID string) (*MatchDTO, error) {
	path := "/lol/match/v5/matches/" + url.PathEscape(matchID)
	return doRequest[MatchDTO](ctx, c, c.endpoint(RegionalRoute(platform), path))
}

func doRequest[T any](ctx context.Context, client *Client, target string) (*T, error) {
	client.mu.RLock()
	apiKey := client.apiKey
	client.mu.RUnlock()
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	if err := client.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", apiKey)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	if err := client.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request %s: %w", req.URI().Path(), err)
	}

	client.updateRateLimit(resp)

	switch status := resp.StatusCode(); status {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, ErrNotFound
	case fasthttp.StatusUnauthorized, fasthttp.StatusForbidden:
		return nil, ErrUnauthorized
	case fasthttp.StatusTooManyRequests:
		retryAfter := parseRetryAfter(string(resp.Header.Peek("Retry-After")))
		client.logger.Warn().Dur("retry_after", retryAfter).Bytes("path", req.URI().Path()).Msg("rate limited")
		return nil, &RateLimitError{RetryAfter: retryAfter}
	default:
		return nil, &APIError{Status: status, Body: truncate(string(resp.Body()), 200)}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
