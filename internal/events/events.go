// Package events pushes tracker state changes to UI subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lol-encounters/internal/config"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	TopicStatus         = "status"
	TopicLobby          = "lobby"
	TopicLastMatch      = "last_match"
	TopicImportProgress = "import.progress"
)

// Envelope is the JSON body of every published message.
type Envelope struct {
	Topic   string    `json:"topic"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close() error
}

// New returns a NATS publisher when a URL is configured and a no-op publisher otherwise.
func New(cfg *config.Config, logger zerolog.Logger) (Publisher, error) {
	if cfg.NATSURL == "" {
		logger.Info().Msg("NATS_URL not set, events are not published")
		return Noop{}, nil
	}
	return NewNATSPublisher(cfg.NATSURL, cfg.NATSPrefix, logger)
}

type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	logger zerolog.Logger
}

func NewNATSPublisher(url, prefix string, logger zerolog.Logger) (*NATSPublisher, error) {
	log := logger.With().Str("component", "events").Logger()
	nc, err := nats.Connect(url,
		nats.Name("lol-encounters"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info().Str("url", nc.ConnectedUrl()).Str("prefix", prefix).Msg("connected to NATS")
	return &NATSPublisher{nc: nc, prefix: prefix, logger: log}, nil
}

func (p *NATSPublisher) Subject(topic string) string {
	if p.prefix == "" {
		return topic
	}
	return p.prefix + "." + topic
}

func (p *NATSPublisher) Publish(ctx context.Context, topic string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(Envelope{Topic: topic, At: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", topic, err)
	}
	if err := p.nc.Publish(p.Subject(topic), data); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", topic, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return err
	}
	return nil
}

type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }

func (Noop) Close() error { return nil }
