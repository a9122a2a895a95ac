// Package session keeps the CLI's "current user" on disk: the profile
// returned at login plus the token pair used for API calls.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samudhan2008/sa-notes-beta/internal/filex"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

const (
	dirName  = "notesctl"
	fileName = "session.json"
)

// Session is the persisted login state.
type Session struct {
	Server       string          `json:"server"`
	User         *models.Profile `json:"user"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
}

// LoggedIn reports whether s carries a usable login.
func (s *Session) LoggedIn() bool {
	return s != nil && s.User != nil && s.AccessToken != ""
}

// Store reads and writes a single session file.
type Store struct {
	path string
}

// NewStore returns a Store over path. An empty path resolves to
// <user config dir>/notesctl/session.json.
func NewStore(path string) (*Store, error) {
	if path == "" {
		dir, err := filex.EnsureSubDir("", dirName)
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, fileName)
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string { return s.path }

// Load returns the saved session, or nil when there is none. A missing,
// unreadable or corrupt file all count as "no session".
func (s *Store) Load() *Session {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil
	}
	return &sess
}

// Save replaces the stored session atomically.
func (s *Store) Save(sess *Session) error {
	if sess == nil {
		return s.Clear()
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return filex.WriteFileAtomic(s.path, data, 0o600)
}

// Clear removes the stored session. Removing a session that does not exist
// is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
