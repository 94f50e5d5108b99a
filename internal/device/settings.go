// Package device holds the handful of device-local flags the data
// layer consumes: which user's progress to queue, whether the intro
// ran, and a stable install id that rides along with sync uploads so
// the server can deduplicate retries.
package device

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Settings struct {
	path string

	DeviceID      string `json:"device_id"`
	CurrentUserID int    `json:"current_user_id"`
	IntroShown    bool   `json:"intro_shown"`
}

// Load reads the settings file, creating it with a fresh device id on
// first run.
func Load(path string) (*Settings, error) {
	settings := &Settings{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		settings.DeviceID = uuid.NewString()
		return settings, settings.Save()
	case err != nil:
		return nil, err
	}

	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}
	if settings.DeviceID == "" {
		settings.DeviceID = uuid.NewString()
		if err := settings.Save(); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

func (s *Settings) Save() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Settings) SetCurrentUser(id int) error {
	s.CurrentUserID = id
	return s.Save()
}

func (s *Settings) MarkIntroShown() error {
	s.IntroShown = true
	return s.Save()
}
