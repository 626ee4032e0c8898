package systems

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/quasilyte/gdata"
)

// Profile is the client state kept between runs.
type Profile struct {
	PlayerName string `json:"playerName"`
	LobbySize  int    `json:"lobbySize"`
	LastServer string `json:"lastServer"`
}

// itemStore is the subset of *gdata.Manager the profile needs.
type itemStore interface {
	LoadItem(key string) ([]byte, error)
	SaveItem(key string, data []byte) error
}

const profileKey = "profile"

// ProfileStore loads and saves the Profile. A store that failed to open
// silently keeps nothing.
type ProfileStore struct {
	items itemStore
	log   *log.Logger
}

// OpenProfileStore opens the per-user data directory for the app.
func OpenProfileStore(logger *log.Logger) *ProfileStore {
	logger = logger.WithPrefix("profile")
	m, err := gdata.Open(gdata.Config{
		AppName: "orbitfall",
	})
	if err != nil {
		logger.Warn("could not initialize persistence", "err", err)
		return &ProfileStore{log: logger}
	}
	return &ProfileStore{items: m, log: logger}
}

// Load returns the saved profile or nil if there is none.
func (p *ProfileStore) Load() *Profile {
	if p.items == nil {
		return nil
	}
	data, err := p.items.LoadItem(profileKey)
	if err != nil {
		p.log.Warn("could not load profile", "err", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	var prof Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		p.log.Warn("could not parse saved profile", "err", err)
		return nil
	}
	return &prof
}

func (p *ProfileStore) Save(prof Profile) error {
	if p.items == nil {
		return nil
	}
	data, err := json.Marshal(prof)
	if err != nil {
		return err
	}
	if err := p.items.SaveItem(profileKey, data); err != nil {
		p.log.Warn("could not save profile", "err", err)
		return err
	}
	return nil
}
