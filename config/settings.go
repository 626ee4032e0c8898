package config

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/joho/godotenv"
)

// ErrInvalidSettings wraps every validation failure from Settings.Validate.
var ErrInvalidSettings = errors.New("invalid settings")

// EnvPrefix is prepended to every key when read from the process environment.
const EnvPrefix = "ORBITFALL_"

// DefaultSettingsFile is read if present; a missing default file is not an error.
const DefaultSettingsFile = "orbitfall.env"

// devKey is the pre-shared key used when none is configured. Fine for local play only.
const devKey = "6f72626974666131312d6465762d6b65792d646f2d6e6f742d7368697021210a"

// LinkConditions simulates a poor network on one side's outbound path.
type LinkConditions struct {
	Latency time.Duration
	Jitter  time.Duration
	Loss    float64 // 0..1, applied to unreliable messages only
}

// Enabled reports whether any simulation is configured.
func (l LinkConditions) Enabled() bool {
	return l.Latency > 0 || l.Jitter > 0 || l.Loss > 0
}

// Settings is the process configuration, loaded once at startup.
type Settings struct {
	Mode              string // server | client
	TickRate          int    // Hz
	BroadcastInterval time.Duration
	ServerHost        string
	ServerPort        int
	ProtocolID        uint64
	PrivateKey        []byte
	Compression       string // none | context | nocontext
	ServerLink        LinkConditions
	ClientLink        LinkConditions
	MasterURL         string
	ServerName        string
	Region            string
	LobbySize         int
	PlayerName        string
	HUD               string // auto | on | off
	LogLevel          string
}

// Defaults returns the built-in settings.
func Defaults() *Settings {
	key, _ := hex.DecodeString(devKey)
	return &Settings{
		Mode:              "server",
		TickRate:          60,
		BroadcastInterval: 100 * time.Millisecond,
		ServerHost:        "127.0.0.1",
		ServerPort:        5000,
		ProtocolID:        0x6f72626974,
		PrivateKey:        key,
		Compression:       "none",
		ServerName:        "orbitfall",
		Region:            "local",
		LobbySize:         Lobby.DefaultSize,
		PlayerName:        "pilot",
		HUD:               "auto",
		LogLevel:          "info",
	}
}

type setting struct {
	usage string
	apply func(s *Settings, v string) error
}

var settingKeys = map[string]setting{
	"MODE": {"server or client", func(s *Settings, v string) error {
		s.Mode = strings.ToLower(v)
		return nil
	}},
	"TICK_RATE": {"simulation ticks per second", intSetting(func(s *Settings, n int) { s.TickRate = n })},
	"BROADCAST_INTERVAL_MS": {"snapshot interval in milliseconds", intSetting(func(s *Settings, n int) {
		s.BroadcastInterval = time.Duration(n) * time.Millisecond
	})},
	"SERVER_HOST": {"server bind or dial host", func(s *Settings, v string) error {
		s.ServerHost = v
		return nil
	}},
	"SERVER_PORT": {"server port", intSetting(func(s *Settings, n int) { s.ServerPort = n })},
	"PROTOCOL_ID": {"protocol id shared by client and server", func(s *Settings, v string) error {
		n, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			return err
		}
		s.ProtocolID = n
		return nil
	}},
	"PRIVATE_KEY": {"32-byte pre-shared key as 64 hex chars", func(s *Settings, v string) error {
		key, err := hex.DecodeString(v)
		if err != nil {
			return err
		}
		s.PrivateKey = key
		return nil
	}},
	"COMPRESSION": {"websocket compression: none, context or nocontext", func(s *Settings, v string) error {
		s.Compression = strings.ToLower(v)
		return nil
	}},
	"SERVER_LATENCY_MS": {"simulated server send latency", intSetting(func(s *Settings, n int) {
		s.ServerLink.Latency = time.Duration(n) * time.Millisecond
	})},
	"SERVER_JITTER_MS": {"simulated server send jitter", intSetting(func(s *Settings, n int) {
		s.ServerLink.Jitter = time.Duration(n) * time.Millisecond
	})},
	"SERVER_LOSS": {"simulated server snapshot loss 0..1", floatSetting(func(s *Settings, f float64) { s.ServerLink.Loss = f })},
	"CLIENT_LATENCY_MS": {"simulated client send latency", intSetting(func(s *Settings, n int) {
		s.ClientLink.Latency = time.Duration(n) * time.Millisecond
	})},
	"CLIENT_JITTER_MS": {"simulated client send jitter", intSetting(func(s *Settings, n int) {
		s.ClientLink.Jitter = time.Duration(n) * time.Millisecond
	})},
	"CLIENT_LOSS": {"simulated client input loss 0..1", floatSetting(func(s *Settings, f float64) { s.ClientLink.Loss = f })},
	"MASTER_URL": {"master server URL, empty disables registration", func(s *Settings, v string) error {
		s.MasterURL = v
		return nil
	}},
	"SERVER_NAME": {"name shown in the server browser", func(s *Settings, v string) error {
		s.ServerName = v
		return nil
	}},
	"REGION": {"server region", func(s *Settings, v string) error {
		s.Region = v
		return nil
	}},
	"LOBBY_SIZE": {"lobby size the client requests", intSetting(func(s *Settings, n int) { s.LobbySize = n })},
	"PLAYER_NAME": {"client display name", func(s *Settings, v string) error {
		s.PlayerName = v
		return nil
	}},
	"HUD": {"terminal HUD: auto, on or off", func(s *Settings, v string) error {
		s.HUD = strings.ToLower(v)
		return nil
	}},
	"LOG_LEVEL": {"debug, info, warn or error", func(s *Settings, v string) error {
		s.LogLevel = strings.ToLower(v)
		return nil
	}},
}

func intSetting(set func(*Settings, int)) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		set(s, n)
		return nil
	}
}

func floatSetting(set func(*Settings, float64)) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		set(s, f)
		return nil
	}
}

func flagName(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// Load reads settings from defaults, the settings file, the process
// environment and args, later sources overriding earlier ones.
func Load(args []string) (*Settings, error) {
	return LoadFrom(args, os.LookupEnv)
}

// LoadFrom is Load with an injectable environment lookup.
func LoadFrom(args []string, lookupEnv func(string) (string, bool)) (*Settings, error) {
	fset := flag.NewFlagSet("orbitfall", flag.ContinueOnError)
	file := fset.String("config", "", "settings file (default "+DefaultSettingsFile+" if present)")
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fset.String(flagName(k), "", settingKeys[k].usage)
	}
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	values := map[string]string{}

	path, explicit := *file, *file != ""
	if !explicit {
		if v, ok := lookupEnv(EnvPrefix + "CONFIG"); ok && v != "" {
			path, explicit = v, true
		} else {
			path = DefaultSettingsFile
		}
	}
	fileValues, err := godotenv.Read(path)
	switch {
	case err == nil:
		for k, v := range fileValues {
			values[strings.TrimPrefix(k, EnvPrefix)] = v
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read settings file %s: %w", path, err)
	}

	for _, k := range keys {
		if v, ok := lookupEnv(EnvPrefix + k); ok {
			values[k] = v
		}
	}

	fset.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			return
		}
		values[strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_")] = f.Value.String()
	})

	s := Defaults()
	for _, k := range keys {
		v, ok := values[k]
		if !ok {
			continue
		}
		if err := settingKeys[k].apply(s, v); err != nil {
			return nil, fmt.Errorf("%w: %s=%q: %v", ErrInvalidSettings, k, v, err)
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ranges and enumerations.
func (s *Settings) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidSettings}, args...)...))
	}

	if s.Mode != "server" && s.Mode != "client" {
		bad("mode %q must be server or client", s.Mode)
	}
	if s.TickRate <= 0 {
		bad("tick rate %d must be positive", s.TickRate)
	} else if s.BroadcastInterval < s.TickInterval() {
		bad("broadcast interval %s shorter than one tick", s.BroadcastInterval)
	}
	if s.ServerPort <= 0 || s.ServerPort > 65535 {
		bad("server port %d out of range", s.ServerPort)
	}
	if len(s.PrivateKey) != 32 {
		bad("private key is %d bytes, want 32", len(s.PrivateKey))
	}
	if _, ok := compressionModes[s.Compression]; !ok {
		bad("unknown compression %q", s.Compression)
	}
	for name, l := range map[string]LinkConditions{"server": s.ServerLink, "client": s.ClientLink} {
		if l.Loss < 0 || l.Loss > 1 {
			bad("%s loss %v outside [0,1]", name, l.Loss)
		}
		if l.Latency < 0 || l.Jitter < 0 {
			bad("%s latency and jitter must not be negative", name)
		}
	}
	if s.LobbySize < 1 || s.LobbySize > Lobby.MaxSize {
		bad("lobby size %d outside 1..%d", s.LobbySize, Lobby.MaxSize)
	}
	if s.HUD != "auto" && s.HUD != "on" && s.HUD != "off" {
		bad("hud %q must be auto, on or off", s.HUD)
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		bad("log level %q", s.LogLevel)
	}
	return errors.Join(errs...)
}

var compressionModes = map[string]websocket.CompressionMode{
	"none":      websocket.CompressionDisabled,
	"context":   websocket.CompressionContextTakeover,
	"nocontext": websocket.CompressionNoContextTakeover,
}

// CompressionMode maps the compression setting to the websocket option.
func (s *Settings) CompressionMode() websocket.CompressionMode {
	return compressionModes[s.Compression]
}

// TickInterval is the duration of one simulation tick.
func (s *Settings) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// BroadcastEvery is the number of ticks between snapshots, at least 1.
func (s *Settings) BroadcastEvery() int {
	n := int(s.BroadcastInterval / s.TickInterval())
	if n < 1 {
		return 1
	}
	return n
}

// Level returns the parsed log level, defaulting to info.
func (s *Settings) Level() log.Level {
	lvl, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Addr is the host:port the server binds and the client dials.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.ServerHost, s.ServerPort)
}
