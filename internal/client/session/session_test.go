package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)
	return s
}

func TestStore_SaveLoadClear(t *testing.T) {
	s := newStore(t)

	assert.Nil(t, s.Load(), "no file means no session")

	sess := &Session{
		Server:       "http://127.0.0.1:8080",
		User:         &models.Profile{ID: "u1", Username: "ana", Email: "ana@example.com", Role: models.RoleUser},
		AccessToken:  "access",
		RefreshToken: "refresh",
	}
	require.NoError(t, s.Save(sess))

	got := s.Load()
	require.NotNil(t, got)
	assert.True(t, got.LoggedIn())
	assert.Equal(t, "ana", got.User.Username)
	assert.Equal(t, "refresh", got.RefreshToken)

	require.NoError(t, s.Clear())
	assert.Nil(t, s.Load())

	require.NoError(t, s.Clear(), "clearing twice is fine")
}

func TestStore_LoadSwallowsCorruptFile(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o600))

	assert.Nil(t, s.Load())
}

func TestStore_SaveNilClears(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save(&Session{User: &models.Profile{ID: "u1"}, AccessToken: "a"}))

	require.NoError(t, s.Save(nil))
	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestSession_LoggedIn(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.LoggedIn())
	assert.False(t, (&Session{AccessToken: "a"}).LoggedIn())
	assert.False(t, (&Session{User: &models.Profile{}}).LoggedIn())
	assert.True(t, (&Session{User: &models.Profile{}, AccessToken: "a"}).LoggedIn())
}
