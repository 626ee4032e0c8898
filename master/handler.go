package main

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
)

type registerRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Players     int    `json:"players"`
	MaxPlayers  int    `json:"maxPlayers"`
	Lobbies     int    `json:"lobbies"`
	OpenLobbies int    `json:"openLobbies"`
	Version     string `json:"version"`
	Region      string `json:"region"`
}

type registerResponse struct {
	ID string `json:"id"`
}

type heartbeatRequest struct {
	ID          string `json:"id"`
	Players     int    `json:"players"`
	Lobbies     int    `json:"lobbies"`
	OpenLobbies int    `json:"openLobbies"`
}

const maxRequestBody = 1 << 16 // 64 KB

// api sets the JSON and CORS headers every endpoint shares.
func api(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		h(w, r)
	}
}

// decode reads a size-limited JSON body, answering 400 on failure.
func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return v, false
	}
	return v, true
}

func ListServers(reg *Registry, logger *log.Logger) http.HandlerFunc {
	return api(func(w http.ResponseWriter, _ *http.Request) {
		if err := json.NewEncoder(w).Encode(reg.List()); err != nil {
			logger.Warn("list encode error", "err", err)
		}
	})
}

func RegisterServer(reg *Registry, logger *log.Logger) http.HandlerFunc {
	return api(func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[registerRequest](w, r)
		if !ok {
			return
		}
		if req.Name == "" || req.Address == "" {
			http.Error(w, `{"error":"name and address required"}`, http.StatusBadRequest)
			return
		}

		id := reg.Register(ServerInfo{
			Name:        req.Name,
			Address:     req.Address,
			Players:     req.Players,
			MaxPlayers:  req.MaxPlayers,
			Lobbies:     req.Lobbies,
			OpenLobbies: req.OpenLobbies,
			Version:     req.Version,
			Region:      req.Region,
		})
		logger.Info("registered server", "name", req.Name, "addr", req.Address, "id", id)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(registerResponse{ID: id})
	})
}

func Heartbeat(reg *Registry) http.HandlerFunc {
	return api(func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[heartbeatRequest](w, r)
		if !ok {
			return
		}
		if !reg.Heartbeat(req.ID, Load{Players: req.Players, Lobbies: req.Lobbies, OpenLobbies: req.OpenLobbies}) {
			http.Error(w, `{"error":"unknown server"}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}

func Health() http.HandlerFunc {
	return api(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}

// NewMux wires the registry endpoints.
func NewMux(reg *Registry, logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /servers", ListServers(reg, logger))
	mux.HandleFunc("POST /servers/register", RegisterServer(reg, logger))
	mux.HandleFunc("POST /servers/heartbeat", Heartbeat(reg))
	mux.HandleFunc("GET /health", Health())
	return mux
}
