package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestHandlers(t *testing.T) {
	logger := log.New(io.Discard)
	reg := NewRegistry(time.Minute, logger)
	srv := httptest.NewServer(NewMux(reg, logger))
	defer srv.Close()

	post := func(path, body string) *http.Response {
		t.Helper()
		resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	resp := post("/servers/register", `{"name":"alpha","address":"10.0.0.1:5000","maxPlayers":12,"lobbies":1,"openLobbies":1}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	var reg1 registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&reg1); err != nil || reg1.ID == "" {
		t.Fatalf("register response: %v %+v", err, reg1)
	}
	resp.Body.Close()

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"bad json", "/servers/register", `{`, http.StatusBadRequest},
		{"missing address", "/servers/register", `{"name":"x"}`, http.StatusBadRequest},
		{"unknown heartbeat", "/servers/heartbeat", `{"id":"nope"}`, http.StatusNotFound},
		{"heartbeat", "/servers/heartbeat", `{"id":"` + reg1.ID + `","players":4,"lobbies":2,"openLobbies":0}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(tt.path, tt.body)
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	resp, err := http.Get(srv.URL + "/servers")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list []ServerInfo
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Players != 4 || list[0].Lobbies != 2 || list[0].OpenLobbies != 0 {
		t.Fatalf("servers = %+v", list)
	}
}
