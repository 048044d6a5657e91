package lcu

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"lol-encounters/internal/config"
	"lol-encounters/internal/gameflow"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Connector owns the client for the currently running game client. The client is built
// lazily from the lockfile and dropped whenever the lockfile changes or a request fails to
// reach the game client.
type Connector struct {
	path   string
	logger zerolog.Logger

	mu     sync.Mutex
	client *Client

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewConnector(cfg *config.Config, logger zerolog.Logger) *Connector {
	return &Connector{
		path:   cfg.LockfilePath,
		logger: logger.With().Str("component", "lcu").Logger(),
	}
}

// Start watches the lockfile directory. A missing directory is not an error; the lockfile
// is then re-read on demand only.
func (c *Connector) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create lockfile watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		c.logger.Warn().Err(err).Str("path", c.path).Msg("lockfile directory not watchable")
		watcher.Close()
		return nil
	}

	c.watcher = watcher
	c.done = make(chan struct{})
	c.wg.Add(1)
	go c.watch()
	return nil
}

func (c *Connector) Close() error {
	if c.watcher == nil {
		return nil
	}
	close(c.done)
	err := c.watcher.Close()
	c.wg.Wait()
	c.watcher = nil
	return err
}

func (c *Connector) watch() {
	defer c.wg.Done()
	name := filepath.Base(c.path)
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				c.logger.Debug().Str("op", event.Op.String()).Msg("lockfile changed")
				c.Invalidate()
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn().Err(err).Msg("lockfile watcher error")
		}
	}
}

func (c *Connector) Invalidate() {
	c.mu.Lock()
	c.client = nil
	c.mu.Unlock()
}

// Client returns the current client, reading the lockfile if needed.
func (c *Connector) Client() (*Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}

	lf, err := ReadLockfile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClientUnavailable, err)
	}
	c.client = NewClient(lf)
	c.logger.Info().Str("port", lf.Port).Str("pid", lf.PID).Msg("connected to game client")
	return c.client, nil
}

func call[T any](c *Connector, fn func(*Client) (T, error)) (T, error) {
	client, err := c.Client()
	if err != nil {
		var zero T
		return zero, err
	}
	out, err := fn(client)
	if errors.Is(err, ErrClientUnavailable) {
		c.Invalidate()
	}
	return out, err
}

func (c *Connector) GameflowPhase(ctx context.Context) (string, error) {
	return call(c, func(cl *Client) (string, error) { return cl.GameflowPhase(ctx) })
}

func (c *Connector) Roster(ctx context.Context, phase gameflow.Phase) (*Roster, error) {
	return call(c, func(cl *Client) (*Roster, error) { return cl.Roster(ctx, phase) })
}

func (c *Connector) CurrentSummoner(ctx context.Context) (*Summoner, error) {
	return call(c, func(cl *Client) (*Summoner, error) { return cl.CurrentSummoner(ctx) })
}

// SummonerName resolves a display name for a summoner id, as a Riot ID when available.
func (c *Connector) SummonerName(ctx context.Context, summonerID int64) (string, error) {
	return call(c, func(cl *Client) (string, error) {
		s, err := cl.SummonerByID(ctx, summonerID)
		if err != nil {
			return "", err
		}
		return s.RiotID(), nil
	})
}

func (c *Connector) LastGame(ctx context.Context) (*HistoryGame, error) {
	return call(c, func(cl *Client) (*HistoryGame, error) { return cl.LastGame(ctx) })
}
