// Package server initializes and runs the CampusHub identity server.
// It opens the identity database, builds the authority, handles graceful
// shutdown, and serves the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/campushub/internal/filex"
	"github.com/dmitrijs2005/campushub/internal/identity"
	"github.com/dmitrijs2005/campushub/internal/logging"
	"github.com/dmitrijs2005/campushub/internal/server/config"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/campushub/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	authority *identity.Authority
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	dir, err := filex.EnsureDataDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir error: %w", err)
	}

	db, err := identity.Open(ctx, filex.SQLiteDSN(dir, "identity.db"))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	authority := identity.NewAuthority(db, identity.Config{
		SecretKey:  []byte(c.SecretKey),
		SessionTTL: c.SessionTTL,
		OTPTTL:     c.OTPTTL,
	}, logger)

	return &App{config: c, logger: logger, db: db, authority: authority}, nil
}

// initSignalHandler cancels the app context on SIGINT, SIGTERM or SIGQUIT.
func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until a signal arrives or the server fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.authority)
		return s.Run(ctx)
	})

	err := g.Wait()
	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(context.Background(), "db close error", "error", cerr)
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}
