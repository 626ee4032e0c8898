package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	s, err := LoadFrom(nil, env(nil))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if s.TickRate != 60 || s.BroadcastInterval != 100*time.Millisecond {
		t.Errorf("tick rate %d / interval %s", s.TickRate, s.BroadcastInterval)
	}
	if s.ServerPort != 5000 || s.Mode != "server" {
		t.Errorf("port %d mode %s", s.ServerPort, s.Mode)
	}
	if s.BroadcastEvery() != 6 {
		t.Errorf("BroadcastEvery = %d, want 6", s.BroadcastEvery())
	}
	if s.CompressionMode() != websocket.CompressionDisabled {
		t.Errorf("compression = %v", s.CompressionMode())
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "ORBITFALL_TICK_RATE=30\nSERVER_PORT=6000\nREGION=file\nLOBBY_SIZE=3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFrom(
		[]string{"-config", path, "-lobby-size", "4"},
		env(map[string]string{"ORBITFALL_SERVER_PORT": "7000", "ORBITFALL_LOBBY_SIZE": "5"}),
	)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if s.TickRate != 30 {
		t.Errorf("file value not applied: tick rate %d", s.TickRate)
	}
	if s.Region != "file" {
		t.Errorf("unprefixed file key not applied: region %q", s.Region)
	}
	if s.ServerPort != 7000 {
		t.Errorf("env should override file: port %d", s.ServerPort)
	}
	if s.LobbySize != 4 {
		t.Errorf("flag should override env: lobby size %d", s.LobbySize)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := LoadFrom([]string{"-config", filepath.Join(t.TempDir(), "missing.env")}, env(nil))
	if err == nil {
		t.Fatal("expected error for missing explicit settings file")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero tick rate", map[string]string{"ORBITFALL_TICK_RATE": "0"}},
		{"broadcast below tick", map[string]string{"ORBITFALL_BROADCAST_INTERVAL_MS": "1"}},
		{"short key", map[string]string{"ORBITFALL_PRIVATE_KEY": "abcd"}},
		{"non hex key", map[string]string{"ORBITFALL_PRIVATE_KEY": "zz"}},
		{"loss above one", map[string]string{"ORBITFALL_SERVER_LOSS": "1.5"}},
		{"lobby too big", map[string]string{"ORBITFALL_LOBBY_SIZE": "99"}},
		{"unknown mode", map[string]string{"ORBITFALL_MODE": "peer"}},
		{"unknown compression", map[string]string{"ORBITFALL_COMPRESSION": "gzip"}},
		{"bad number", map[string]string{"ORBITFALL_SERVER_PORT": "http"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(nil, env(tt.env))
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("err = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestLinkConditionsEnabled(t *testing.T) {
	if (LinkConditions{}).Enabled() {
		t.Error("zero conditions should be disabled")
	}
	if !(LinkConditions{Loss: 0.1}).Enabled() {
		t.Error("loss should enable conditioning")
	}
}
