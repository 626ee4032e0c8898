package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/automoto/orbitfall/shared/messages"
	"github.com/google/uuid"
)

// ErrNotAuthenticated marks a message from a client that has not completed the handshake.
var ErrNotAuthenticated = errors.New("client not authenticated")

// dispatch applies one inbound command.
func (s *Server) dispatch(cmd command) {
	switch c := cmd.(type) {
	case connectCmd:
		s.onConnect(c)
	case disconnectCmd:
		s.onDisconnect(c)
	case messageCmd:
		s.onMessage(c)
	}
	ClientExitLobbyEvent.ProcessEvents(s.world)
}

func (s *Server) onConnect(c connectCmd) {
	if _, exists := s.clients[c.client]; exists {
		s.logLife.Warn("duplicate connect", "client", c.client)
		return
	}
	rec := &clientRecord{nonce: s.opts.Nonce()}
	s.clients[c.client] = rec
	s.logLife.Info("client connected", "client", c.client)
	s.outbox.Send(c.client, messages.Challenge{Nonce: rec.nonce})
}

// onDisconnect drops the connection record and leaves the lobby through the
// same path as a voluntary exit.
func (s *Server) onDisconnect(c disconnectCmd) {
	if c.err != nil {
		s.logLife.Info("client disconnected", "client", c.client, "err", c.err)
	} else {
		s.logLife.Info("client disconnected", "client", c.client)
	}
	delete(s.clients, c.client)
	ClientExitLobbyEvent.Publish(s.world, ClientExitLobby{Client: c.client, Reason: ExitDisconnected})
}

func (s *Server) onMessage(c messageCmd) {
	rec, ok := s.clients[c.client]
	if !ok {
		s.logLife.Warn("message from unknown client dropped", "client", c.client, "err", ErrUnknownClient)
		return
	}

	if req, ok := c.msg.(messages.JoinRequest); ok {
		s.handleJoin(c, rec, req)
		return
	}
	if !rec.authenticated {
		s.logLife.Warn("message dropped", "client", c.client, "type", typeName(c.msg), "err", ErrNotAuthenticated)
		return
	}

	switch m := c.msg.(type) {
	case messages.Matchmake:
		s.handleMatchmake(c.client, int(m.LobbySize))
	case messages.ExitLobby:
		ClientExitLobbyEvent.Publish(s.world, ClientExitLobby{Client: c.client, Reason: ExitRequested})
	case messages.PlayerInput:
		s.handleInput(c.client, m)
	default:
		s.logLife.Warn("unexpected message dropped", "client", c.client, "type", typeName(c.msg))
	}
}

func (s *Server) handleJoin(c messageCmd, rec *clientRecord, req messages.JoinRequest) {
	if rec.authenticated || rec.rejected {
		s.logLife.Warn("repeated join request ignored", "client", c.client)
		return
	}
	reject := func(reason string) {
		rec.rejected = true
		s.logLife.Warn("join rejected", "client", c.client, "reason", reason)
		s.outbox.Send(c.client, messages.JoinRejected{Reason: reason})
	}
	if req.ProtocolID != s.opts.ProtocolID {
		reject("protocol mismatch")
		return
	}
	if !messages.VerifyProof(s.opts.PrivateKey, req.ProtocolID, rec.nonce, req.Proof) {
		reject("authentication failed")
		return
	}

	rec.authenticated = true
	rec.name = req.PlayerName
	rec.token = uuid.NewString()
	s.logLife.Info("client joined", "client", c.client, "name", req.PlayerName, "version", req.Version)
	s.outbox.Send(c.client, messages.JoinAccepted{
		ClientID:            c.client,
		SessionToken:        rec.token,
		TickRate:            s.opts.TickRate,
		BroadcastIntervalMs: int((s.dt * time.Duration(s.opts.BroadcastEvery)).Round(time.Millisecond).Milliseconds()),
	})
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
