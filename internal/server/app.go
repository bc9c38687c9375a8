// Package server wires the configuration, storage, services and transports
// together and runs the HTTP and gRPC servers until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/holocron/internal/dbx"
	"github.com/dmitrijs2005/holocron/internal/logging"
	"github.com/dmitrijs2005/holocron/internal/server/auth"
	"github.com/dmitrijs2005/holocron/internal/server/config"
	gs "github.com/dmitrijs2005/holocron/internal/server/grpc"
	"github.com/dmitrijs2005/holocron/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/holocron/internal/server/rest"
	"github.com/dmitrijs2005/holocron/internal/server/services"
	"github.com/dmitrijs2005/holocron/internal/server/swapi"
)

const dbPingTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *rest.HTTPServer
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := dbx.OpenPostgres(ctx, c.DatabaseDSN, dbPingTimeout)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	hasher := auth.NewBcryptHasher(c)
	tokens := auth.NewTokenIssuer(c)
	gate := auth.NewGate(auth.NewVerifier(rm.Accounts(db), hasher), tokens, logger)

	source := swapi.NewClient(c, &http.Client{Timeout: c.SyncTimeout}, logger)
	accounts := services.NewAccountService(db, rm, hasher, tokens, logger)
	films := services.NewFilmService(db, rm, source, c, logger)
	artwork := services.NewArtworkService(db, rm, c, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := rest.NewMetrics(registry)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	handlers := rest.NewHandlers(gate, accounts, films, artwork, logger)
	router := rest.NewRouter(handlers, metrics, registry)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		httpServer: rest.NewHTTPServer(c.HTTPAddr, router, logger),
		grpcServer: gs.NewGRPCServer(c.GRPCAddr, gate, gs.DefaultMethodRoles(), logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until a signal arrives or either server fails; a failure of one
// server stops the other.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.httpServer.Run(ctx) })
	g.Go(func() error { return app.grpcServer.Run(ctx) })

	err := g.Wait()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
