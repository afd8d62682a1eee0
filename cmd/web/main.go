package main

import (
	"context"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/donseba/go-htmx"
	"github.com/joho/godotenv"
	"github.com/myrjola/sentinels/internal/ai"
	"github.com/myrjola/sentinels/internal/analysis"
	"github.com/myrjola/sentinels/internal/config"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/logging"
	"github.com/myrjola/sentinels/internal/pprofserver"
	"github.com/myrjola/sentinels/internal/repositories"
	"golang.org/x/sync/errgroup"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

type application struct {
	logger         *slog.Logger
	cfg            config.Config
	sessionManager *scs.SessionManager
	cases          *repositories.CaseRepository
	analysis       *analysis.Service
	htmx           *htmx.HTMX
	pageTemplates  map[string]*template.Template
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	cfg, err := config.Load(lookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	var generator ai.Generator
	if generator, err = ai.NewGenerator(ctx, cfg.AI(), logger); err != nil {
		return errors.Wrap(err, "new AI generator")
	}

	return serve(ctx, logger, cfg, generator)
}

// serve wires the application around generator and serves until ctx is done.
func serve(ctx context.Context, logger *slog.Logger, cfg config.Config, generator ai.Generator) error {
	var err error
	sessionManager := scs.New()
	sessionManager.Store = memstore.New()
	sessionManager.Lifetime = cfg.SessionLifetime

	cases := repositories.NewCaseRepository(sessionManager, logger)

	var pageTemplates map[string]*template.Template
	if pageTemplates, err = parsePageTemplates(); err != nil {
		return errors.Wrap(err, "parse page templates")
	}

	app := application{
		logger:         logger,
		cfg:            cfg,
		sessionManager: sessionManager,
		cases:          cases,
		analysis:       analysis.NewService(generator, cases, logger, cfg.AnalysisTimeout),
		htmx:           htmx.New(),
		pageTemplates:  pageTemplates,
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.PprofPort != "" {
		// Loopback only so that it's not open to the world.
		g.Go(func() error {
			return pprofserver.ListenAndServe(ctx, cfg.PprofPort, logger)
		})
	}
	g.Go(func() error {
		return app.configureAndStartServer(ctx, cfg.Addr)
	})
	if err = g.Wait(); err != nil {
		return errors.Wrap(err, "serve")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	}))
	logger := slog.New(loggerHandler)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env", errors.SlogError(err))
		os.Exit(1) //nolint:gocritic // stop is only needed for graceful shutdown.
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
