package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

// Transport binds the necs websocket router to a Server inbox. Router
// callbacks run on necs goroutines and only touch the inbox and the sink.
type Transport struct {
	inbox *Inbox
	conns *ConnSink
	log   *log.Logger

	mu   sync.Mutex
	ids  map[string]netconfig.ClientID
	next netconfig.ClientID
}

func NewTransport(inbox *Inbox, conns *ConnSink, logger *log.Logger) *Transport {
	return &Transport{
		inbox: inbox,
		conns: conns,
		log:   logger.WithPrefix("transport"),
		ids:   make(map[string]netconfig.ClientID),
	}
}

// Serve listens on host:port until ctx is cancelled or the listener fails.
func (t *Transport) Serve(ctx context.Context, host string, port uint, compression websocket.CompressionMode) error {
	t.setupRouterCallbacks()
	defer router.ResetRouter()

	srv := transports.NewWsServerTransport(port, host, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
		CompressionMode:    compression,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	t.log.Info("listening", "host", host, "port", port)
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("websocket transport: %w", err)
		}
		return nil
	}
}

func (t *Transport) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		id := t.assign(client)
		t.conns.add(id, client)
		t.inbox.Connected(id)
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		id, ok := t.release(client)
		if !ok {
			return
		}
		t.conns.remove(id)
		t.inbox.Disconnected(id, err)
	})

	onMessage[messages.JoinRequest](t)
	onMessage[messages.Matchmake](t)
	onMessage[messages.ExitLobby](t)
	onMessage[messages.PlayerInput](t)

	router.OnError(func(client *router.NetworkClient, err error) {
		t.log.Warn("client error", "conn", client.Id(), "err", err)
	})
}

// onMessage forwards every decoded message of type T to the inbox.
func onMessage[T any](t *Transport) {
	router.On(func(client *router.NetworkClient, msg T) {
		id, ok := t.lookup(client)
		if !ok {
			return
		}
		t.inbox.Received(id, msg)
	})
}

func (t *Transport) assign(client *router.NetworkClient) netconfig.ClientID {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.ids[client.Id()] = t.next
	return t.next
}

func (t *Transport) lookup(client *router.NetworkClient) (netconfig.ClientID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.ids[client.Id()]
	return id, ok
}

func (t *Transport) release(client *router.NetworkClient) (netconfig.ClientID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.ids[client.Id()]
	delete(t.ids, client.Id())
	return id, ok
}
