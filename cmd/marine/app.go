package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/garrettladley/marine/internal/client/marine"
	"github.com/garrettladley/marine/internal/config"
	"github.com/garrettladley/marine/internal/cookiejar"
	"github.com/garrettladley/marine/internal/db"
	appenv "github.com/garrettladley/marine/internal/env"
	"github.com/garrettladley/marine/internal/paths"
	"github.com/garrettladley/marine/internal/storage"
	"github.com/garrettladley/marine/internal/xerrors"
	"github.com/garrettladley/marine/internal/xslog"
)

// app holds what every command shares: configuration, the logger and the
// output streams.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	a.cfg = cfg
	a.logger = xslog.NewLogger(a.stderr, cfg.LogLevel, cfg.Env)
	cmd.SetContext(xslog.WithLogger(cmd.Context(), a.logger))
	return nil
}

// session is a client whose cookies live in the local database.
type session struct {
	client *marine.Client
	jar    *cookiejar.Jar
	db     *sql.DB
}

func (s *session) Close() error {
	return s.db.Close()
}

func (a *app) openSession(ctx context.Context) (*session, error) {
	dbPath := a.cfg.DBPath
	if dbPath == "" {
		if _, err := paths.EnsureDir(); err != nil {
			return nil, err
		}
		p, err := paths.DB()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	sqlDB, err := db.Open(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	jar, err := cookiejar.New(ctx, storage.NewSQLiteCookieStore(sqlDB), cookiejar.WithLogger(a.logger))
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}

	client := marine.New(a.cfg.APIOrigin(appenv.Client),
		marine.WithJar(jar),
		marine.WithLogger(a.logger),
		marine.WithTimeout(a.cfg.Client.Timeout),
		marine.WithRefreshTimeout(a.cfg.Client.RefreshTimeout),
		marine.WithSignInURL(a.cfg.SignInURL()),
		marine.WithSessionExpired(a.signOut(jar)),
	)

	return &session{client: client, jar: jar, db: sqlDB}, nil
}

// signOut is the CLI's navigation to the sign-in page: the stored session is
// dropped and the user is told where to sign in. It reports once per process.
func (a *app) signOut(jar *cookiejar.Jar) marine.SessionExpiredFunc {
	var once sync.Once
	return func(ctx context.Context, signInURL string) {
		once.Do(func() {
			if err := jar.Clear(context.WithoutCancel(ctx)); err != nil {
				a.logger.WarnContext(ctx, "failed to clear cookies", xslog.Error(err))
			}
			_, _ = fmt.Fprintf(a.stderr, "session expired: sign in again at %s\n", signInURL)
		})
	}
}

// withSession opens a session for the duration of fn.
func (a *app) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(ctx, s)
}

// explainErrors makes validation failures list their fields.
func explainErrors(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			return explain(run(cmd, args))
		}
	}
	for _, sub := range cmd.Commands() {
		explainErrors(sub)
	}
}

func explain(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, marine.ErrSessionExpired) {
		return errors.New("not signed in")
	}
	xe := xerrors.As(err)
	if xe == nil || xe.Validation == nil {
		return err
	}
	lines := make([]string, 0, len(xe.Validation.Fields))
	for _, field := range slices.Sorted(maps.Keys(xe.Validation.Fields)) {
		lines = append(lines, fmt.Sprintf("  %s: %s", field, xe.Validation.Fields[field]))
	}
	return fmt.Errorf("invalid input:\n%s", strings.Join(lines, "\n"))
}
