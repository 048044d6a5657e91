// Package lcu talks to the locally running game client over its lockfile-authenticated API.
package lcu

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lol-encounters/internal/constants"

	"github.com/valyala/fasthttp"
)

var (
	// ErrClientUnavailable means the game client is not running or did not answer.
	ErrClientUnavailable = errors.New("lcu: game client unavailable")
	ErrNotFound          = errors.New("lcu: resource not found")
)

type Client struct {
	baseURL    string
	authHeader string
	http       *fasthttp.Client
}

func NewClient(lf *Lockfile) *Client {
	auth := "riot:" + lf.Password
	return &Client{
		baseURL:    lf.BaseURL(),
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(auth)),
		http: &fasthttp.Client{
			// the client serves a self-signed certificate on 127.0.0.1
			TLSConfig:           &tls.Config{InsecureSkipVerify: true},
			ReadTimeout:         constants.GameClientTimeout,
			WriteTimeout:        constants.GameClientTimeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.GameClientTimeout)
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientUnavailable, err)
	}

	switch status := resp.StatusCode(); status {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("unexpected status code %d for %s", status, path)
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

func getJSON[T any](ctx context.Context, c *Client, path string) (*T, error) {
	data, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &out, nil
}

func (c *Client) GameflowPhase(ctx context.Context) (string, error) {
	phase, err := getJSON[string](ctx, c, "/lol-gameflow/v1/gameflow-phase")
	if err != nil {
		return "", err
	}
	return *phase, nil
}

type Summoner struct {
	Puuid       string `json:"puuid"`
	SummonerID  int64  `json:"summonerId"`
	GameName    string `json:"gameName"`
	TagLine     string `json:"tagLine"`
	DisplayName string `json:"displayName"`
}

func (s Summoner) RiotID() string {
	if s.GameName == "" {
		return s.DisplayName
	}
	if s.TagLine == "" {
		return s.GameName
	}
	return s.GameName + "#" + s.TagLine
}

func (c *Client) CurrentSummoner(ctx context.Context) (*Summoner, error) {
	return getJSON[Summoner](ctx, c, "/lol-summoner/v1/current-summoner")
}

func (c *Client) SummonerByID(ctx context.Context, summonerID int64) (*Summoner, error) {
	return getJSON[Summoner](ctx, c, fmt.Sprintf("/lol-summoner/v1/summoners/%d", summonerID))
}
