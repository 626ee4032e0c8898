package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// errRegistrationLost is returned when the master no longer knows our id.
var errRegistrationLost = errors.New("master lost registration")

// Registration handles registering and heartbeating with the master server.
type Registration struct {
	masterURL  string
	serverID   string
	name       string
	address    string
	version    string
	region     string
	maxPlayers int
	stats      func() Stats
	client     *http.Client
	interval   time.Duration
	log        *log.Logger
}

type regRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Players     int    `json:"players"`
	MaxPlayers  int    `json:"maxPlayers"`
	Lobbies     int    `json:"lobbies"`
	OpenLobbies int    `json:"openLobbies"`
	Version     string `json:"version"`
	Region      string `json:"region"`
}

type regResponse struct {
	ID string `json:"id"`
}

type heartbeatRequest struct {
	ID          string `json:"id"`
	Players     int    `json:"players"`
	Lobbies     int    `json:"lobbies"`
	OpenLobbies int    `json:"openLobbies"`
}

// NewRegistration reports stats to the master at masterURL.
func NewRegistration(masterURL, name, address, version, region string, maxPlayers int, stats func() Stats, logger *log.Logger) *Registration {
	return &Registration{
		masterURL:  masterURL,
		name:       name,
		address:    address,
		version:    version,
		region:     region,
		maxPlayers: maxPlayers,
		stats:      stats,
		client:     &http.Client{Timeout: 5 * time.Second},
		interval:   30 * time.Second,
		log:        logger.WithPrefix("registration"),
	}
}

// Run registers and then heartbeats until ctx is cancelled. Failures are
// logged and retried on the next heartbeat.
func (r *Registration) Run(ctx context.Context) error {
	if err := r.register(ctx); err != nil {
		r.log.Warn("initial registration failed", "err", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := r.sendHeartbeat(ctx)
			if errors.Is(err, errRegistrationLost) {
				r.log.Info("re-registering with master")
				err = r.register(ctx)
			}
			if err != nil {
				r.log.Warn("heartbeat failed", "err", err)
			}
		}
	}
}

func (r *Registration) register(ctx context.Context) error {
	st := r.stats()
	body, err := json.Marshal(regRequest{
		Name:        r.name,
		Address:     r.address,
		Players:     st.Players,
		MaxPlayers:  r.maxPlayers,
		Lobbies:     st.Lobbies,
		OpenLobbies: st.OpenLobbies,
		Version:     r.version,
		Region:      r.region,
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := r.post(ctx, "/servers/register", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result regResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	r.serverID = result.ID
	r.log.Info("registered with master", "id", r.serverID)
	return nil
}

func (r *Registration) sendHeartbeat(ctx context.Context) error {
	if r.serverID == "" {
		return errRegistrationLost
	}
	st := r.stats()
	body, err := json.Marshal(heartbeatRequest{
		ID:          r.serverID,
		Players:     st.Players,
		Lobbies:     st.Lobbies,
		OpenLobbies: st.OpenLobbies,
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := r.post(ctx, "/servers/heartbeat", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		r.serverID = ""
		return errRegistrationLost
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

func (r *Registration) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.masterURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	return resp, nil
}
