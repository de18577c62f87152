// Package cli implements the interactive CodeCampus client: wiring of the
// session store, backend client and auth controller, plus the commands and
// REPL the user drives them with.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/codecampus/campus-cli/internal/client/api"
	"github.com/codecampus/campus-cli/internal/client/auth"
	"github.com/codecampus/campus-cli/internal/client/config"
	"github.com/codecampus/campus-cli/internal/client/models"
	"github.com/codecampus/campus-cli/internal/client/session"
	"github.com/codecampus/campus-cli/internal/filex"
	"github.com/codecampus/campus-cli/internal/logging"

	_ "modernc.org/sqlite"
)

// authController is the controller surface the commands need. The real
// *auth.Controller satisfies it; tests provide a stub.
type authController interface {
	Bootstrap(ctx context.Context)
	SignIn(ctx context.Context, code string) (bool, error)
	Refresh(ctx context.Context) error
	UpdateProfile(ctx context.Context, update *models.ProfileUpdate) error
	SignOut(ctx context.Context)
	Snapshot() auth.Snapshot
}

type App struct {
	config *config.Config
	ctrl   authController
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer

	closers []func() error
}

// NewApp wires the client stack: local session database, REST client, and
// auth controller.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	dsn, err := resolveDSN(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	db, err := session.InitDatabase(ctx, dsn)
	if err != nil {
		log.Error(ctx, "error initializing session database", "error", err)
		return nil, err
	}

	apiClient := api.NewHTTPClient(cfg.APIBaseURL, cfg.RequestTimeout)

	store := session.NewSQLiteStore(db)
	sessions := session.NewManager(store, cfg.SessionTTL)
	ctrl := auth.NewController(apiClient, sessions, log)

	return &App{
		config:  cfg,
		ctrl:    ctrl,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		closers: []func() error{apiClient.Close, db.Close},
	}, nil
}

// Bootstrap validates any persisted session before the first command runs.
func (a *App) Bootstrap(ctx context.Context) {
	a.ctrl.Bootstrap(ctx)
}

// Close releases the API client and the session database.
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// resolveDSN places a bare database filename into the per-user data
// directory; explicit paths and URI-style DSNs are used as given.
func resolveDSN(dsn string) (string, error) {
	if strings.Contains(dsn, string(os.PathSeparator)) || strings.HasPrefix(dsn, "file:") {
		return dsn, nil
	}
	dir, err := filex.EnsureDataDir("campus")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dsn), nil
}

func (a *App) isSignedIn() bool {
	return a.ctrl.Snapshot().IsAuthenticated()
}

func (a *App) isAdmin() bool {
	snap := a.ctrl.Snapshot()
	return snap.IsAuthenticated() && snap.User.Role.IsAdmin()
}

func (a *App) currentUser() *models.User {
	return a.ctrl.Snapshot().User
}
