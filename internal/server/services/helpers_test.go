package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/samudhan2008/sa-notes-beta/internal/logging"
	"github.com/samudhan2008/sa-notes-beta/internal/server/config"
	"github.com/samudhan2008/sa-notes-beta/internal/server/models"
	"github.com/samudhan2008/sa-notes-beta/internal/server/repositories/repomanager"
)

type testEnv struct {
	db    *sql.DB
	m     *repomanager.SQLRepositoryManager
	cfg   *config.Config
	files *fakeFiles
	users *UserService
	notes *NoteService
	admin *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, m, err := repomanager.Open(ctx, "sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, m.RunMigrations(ctx, db))

	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		MaxUploadSize:                1 << 20,
	}
	files := &fakeFiles{}
	log := logging.Nop()

	notes := NewNoteService(db, m, files, cfg, log)
	return &testEnv{
		db:    db,
		m:     m,
		cfg:   cfg,
		files: files,
		users: NewUserService(db, m, cfg, log),
		notes: notes,
		admin: NewAdminService(db, m, notes, log),
	}
}

// register creates a user and returns the session.
func (e *testEnv) register(t *testing.T, email, username string) *Session {
	t.Helper()
	s, err := e.users.Register(context.Background(), email, username, "pass-"+username)
	require.NoError(t, err)
	return s
}

func (e *testEnv) createNote(t *testing.T, owner *Session, in models.NoteInput) *models.Note {
	t.Helper()
	res, err := e.notes.Create(context.Background(), actorOf(owner), in, 0)
	require.NoError(t, err)
	return res.Note
}

func actorOf(s *Session) Actor {
	return Actor{UserID: s.User.ID, Role: s.User.Role}
}

type fakeFiles struct {
	enabled bool
	err     error

	putKey  string
	putSize int64
	getName string
}

func (f *fakeFiles) Enabled() bool { return f.enabled }

func (f *fakeFiles) PresignPut(_ context.Context, key, _ string, size int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.putKey, f.putSize = key, size
	return "https://s3.test/put/" + key, nil
}

func (f *fakeFiles) PresignGet(_ context.Context, key, filename string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.getName = filename
	return "https://s3.test/get/" + key, nil
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
