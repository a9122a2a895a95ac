// Package cli implements notesctl, a command-line client for the notes API.
// The logged-in user is kept in a session file between invocations.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/samudhan2008/sa-notes-beta/internal/client/api"
	"github.com/samudhan2008/sa-notes-beta/internal/client/config"
	"github.com/samudhan2008/sa-notes-beta/internal/client/session"
	"github.com/samudhan2008/sa-notes-beta/internal/common"
	"github.com/samudhan2008/sa-notes-beta/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  *session.Store
	client *api.Client
	sess   *session.Session

	in     *bufio.Reader
	stdin  io.Reader
	out    io.Writer
	errOut io.Writer
}

// NewApp returns an App bound to the given streams. It is not usable until
// init has run with the resolved configuration.
func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{
		stdin:  in,
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		logger: logging.Nop(),
	}
}

// init opens the session store and restores a session saved for the same
// server.
func (a *App) init(cfg *config.Config, verbose bool) error {
	a.config = cfg

	level := "warn"
	if verbose {
		level = "debug"
	}
	a.logger = logging.New(a.errOut, level, "text").With("module", "notesctl")

	store, err := session.NewStore(cfg.SessionFile)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	a.store = store

	a.client = api.New(cfg.ServerURL, &http.Client{Timeout: cfg.RequestTimeout})
	a.client.OnRefresh(a.tokensRefreshed)

	sess := store.Load()
	switch {
	case sess == nil:
		a.logger.Debug(context.Background(), "no saved session", "path", store.Path())
	case sess.Server != "" && sess.Server != cfg.ServerURL:
		a.logger.Debug(context.Background(), "ignoring session for another server", "server", sess.Server)
	default:
		a.sess = sess
		a.client.SetTokens(api.TokenPair{AccessToken: sess.AccessToken, RefreshToken: sess.RefreshToken})
	}
	return nil
}

func (a *App) tokensRefreshed(p api.TokenPair) {
	if a.sess == nil {
		return
	}
	a.sess.AccessToken = p.AccessToken
	a.sess.RefreshToken = p.RefreshToken
	if err := a.store.Save(a.sess); err != nil {
		a.logger.Warn(context.Background(), "saving refreshed session failed", "error", err)
		return
	}
	a.logger.Debug(context.Background(), "access token refreshed")
}

// startSession persists a fresh login.
func (a *App) startSession(s *api.AuthSession) error {
	a.sess = &session.Session{
		Server:       a.config.ServerURL,
		User:         s.User,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
	return a.store.Save(a.sess)
}

func (a *App) requireLogin() error {
	if !a.sess.LoggedIn() {
		return fmt.Errorf("%w: not logged in, run `notesctl login`", common.ErrorUnauthorized)
	}
	return nil
}

// readSecret prompts for a password: without echo on a terminal, or as a
// plain line when input is piped.
func (a *App) readSecret(prompt string) (string, error) {
	if f, ok := a.stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
		pw, err := GetPassword(a.out, prompt, int(f.Fd()))
		if err != nil {
			return "", err
		}
		defer common.WipeByteArray(pw)
		return string(pw), nil
	}
	return GetSimpleText(a.in, prompt, a.out)
}
