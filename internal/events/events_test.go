package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lol-encounters/internal/config"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	require.True(t, ns.ReadyForConnections(5*time.Second))
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestNewWithoutURLIsNoop(t *testing.T) {
	p, err := New(&config.Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, Noop{}, p)
	assert.NoError(t, p.Publish(context.Background(), TopicStatus, "x"))
	assert.NoError(t, p.Close())
}

func TestNATSPublisher(t *testing.T) {
	ns := runServer(t)

	p, err := New(&config.Config{NATSURL: ns.ClientURL(), NATSPrefix: "encounters"}, zerolog.Nop())
	require.NoError(t, err)
	defer p.Close()

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	msgs := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("encounters.status", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	require.NoError(t, p.Publish(context.Background(), TopicStatus, map[string]string{"phase": "Lobby"}))

	select {
	case msg := <-msgs:
		var env struct {
			Topic   string            `json:"topic"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(msg.Data, &env))
		assert.Equal(t, TopicStatus, env.Topic)
		assert.Equal(t, "Lobby", env.Payload["phase"])
	case <-time.After(3 * time.Second):
		t.Fatal("no message received")
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "encounters.lobby", (&NATSPublisher{prefix: "encounters"}).Subject(TopicLobby))
	assert.Equal(t, "lobby", (&NATSPublisher{}).Subject(TopicLobby))
}
