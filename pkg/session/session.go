// Package session persists the logged-in user of the wingman CLI.
//
// The session is a small TOML file in the .wingman/ directory. Commands load
// it once and pass the resulting *Session to every API call that acts on
// behalf of a user.
package session

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/wingman/pkg/dotdir"
)

const sessionFile = "session.toml"

// ErrNotLoggedIn is returned by Load when no session is stored.
var ErrNotLoggedIn = errors.New("not logged in: run \"wingman login\" first")

// Session identifies the user the CLI acts for.
type Session struct {
	UserID     int64     `toml:"user_id"`
	Name       string    `toml:"name"`
	Email      string    `toml:"email"`
	LoggedInAt time.Time `toml:"logged_in_at"`

	// ChatWindowID is the chat window "wingman chat" resumes by default.
	ChatWindowID string `toml:"chat_window_id,omitempty"`
}

// Manager reads and writes the session file.
type Manager struct {
	path string
}

// NewManager resolves the session file inside the .wingman/ directory
// selected by overrideDir (see dotdir.Manager.Target).
func NewManager(overrideDir string) (*Manager, error) {
	path, err := dotdir.NewManager().File(overrideDir, sessionFile)
	if err != nil {
		return nil, err
	}
	return &Manager{path: path}, nil
}

// Path returns the absolute path of the session file.
func (m *Manager) Path() string {
	return m.path
}

// Load returns the stored session or ErrNotLoggedIn.
func (m *Manager) Load() (*Session, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	s := &Session{}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing session: %w", err)
	}

	if s.UserID == 0 {
		return nil, ErrNotLoggedIn
	}

	return s, nil
}

// Save writes s, replacing any stored session. The file is replaced
// atomically so concurrent readers never observe a partial write.
func (m *Manager) Save(s *Session) error {
	if s == nil {
		return errors.New("cannot save nil session")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.toml")
	if err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}

	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}

	return nil
}

// Clear removes the stored session. Clearing an absent session is not an
// error.
func (m *Manager) Clear() error {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
