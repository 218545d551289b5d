// Package tdsctl wires the client's dependencies into one App that
// commands and the TUI consume instead of cherry-picking raw pieces.
package tdsctl

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/activus-tech/tdsctl/internal/api"
	"github.com/activus-tech/tdsctl/internal/core/config"
	"github.com/activus-tech/tdsctl/internal/core/session"
)

// App is the central entry point for all tdsctl operations.
type App struct {
	Config  *config.Config
	Session *session.Provider
	API     *api.Client
	Log     zerolog.Logger
	Version string
}

// NewApp constructs an App from explicit dependencies.
func NewApp(cfg *config.Config, sess *session.Provider, client *api.Client, log zerolog.Logger, version string) *App {
	return &App{
		Config:  cfg,
		Session: sess,
		API:     client,
		Log:     log,
		Version: version,
	}
}

// RequireSession returns the logged-in identity or a user-facing error
// telling them how to fix it.
func (a *App) RequireSession() (session.Session, error) {
	sess, err := a.Session.Current()
	switch {
	case err == nil:
		return sess, nil
	case err == session.ErrNotLoggedIn:
		return session.Session{}, fmt.Errorf("not logged in, run 'tdsctl login' first")
	default:
		return session.Session{}, fmt.Errorf("stored credential is unusable, run 'tdsctl login' again: %w", err)
	}
}

// DownloadPath returns the destination path for a downloaded document,
// creating the downloads directory on first use.
func (a *App) DownloadPath(name string) (string, error) {
	if err := os.MkdirAll(a.Config.Downloads.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create downloads dir: %w", err)
	}
	return filepath.Join(a.Config.Downloads.Dir, filepath.Base(name)), nil
}

// OpenFile hands a downloaded document to the configured opener. The
// opener runs detached; we don't wait for the viewer to exit.
func (a *App) OpenFile(path string) error {
	opener := a.Config.Downloads.Opener
	if opener == "" {
		return fmt.Errorf("no opener configured, file saved to %s", path)
	}

	cmd := exec.Command(opener, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", opener, err)
	}

	a.Log.Debug().Str("opener", opener).Str("path", path).Msg("opened document")
	go func() { _ = cmd.Wait() }()
	return nil
}
