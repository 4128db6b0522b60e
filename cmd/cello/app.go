package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/cellocad/cello-webapp/auth"
	"github.com/cellocad/cello-webapp/config"
	"github.com/cellocad/cello-webapp/metrics"
	projectapi "github.com/cellocad/cello-webapp/processor/project-api"
	"github.com/cellocad/cello-webapp/project"
	"github.com/cellocad/cello-webapp/storage"
	"github.com/cellocad/cello-webapp/synbiohub"
	"github.com/cellocad/cello-webapp/targetdata"
)

// App is the main application that wires together all components.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	// NATS
	embeddedServer *server.Server
	natsConn       *nats.Conn
	js             jetstream.JetStream

	// Storage
	store *storage.Store

	catalog *targetdata.Catalog
	metrics *metrics.Metrics
	api     *projectapi.Component

	httpServer *http.Server
	listener   net.Listener
	errs       chan error

	watchCancel context.CancelFunc
	watchers    sync.WaitGroup
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		errs:    make(chan error, 1),
	}, nil
}

// Start initializes and starts all components.
func (a *App) Start(ctx context.Context) error {
	// Start NATS (embedded or connect to external)
	if err := a.startNATS(); err != nil {
		return fmt.Errorf("start NATS: %w", err)
	}

	// Initialize storage
	store, err := storage.NewStore(ctx, a.js)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	a.store = store

	catalog, err := targetdata.NewCatalog(a.cfg.TargetData.Dir, targetdata.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("scan target data: %w", err)
	}
	a.catalog = catalog
	if a.cfg.TargetData.Watch {
		a.startWatch(ctx)
	}

	api, err := a.newAPI(catalog)
	if err != nil {
		return err
	}
	if err := api.Initialize(); err != nil {
		return fmt.Errorf("initialize API: %w", err)
	}
	if err := api.Start(ctx); err != nil {
		return fmt.Errorf("start API: %w", err)
	}
	a.api = api

	return a.startHTTP()
}

func (a *App) startNATS() error {
	if a.cfg.NATS.URL != "" && !a.cfg.NATS.Embedded {
		// Connect to external NATS
		a.logger.Info("Connecting to NATS", "url", a.cfg.NATS.URL)
		conn, err := nats.Connect(a.cfg.NATS.URL, nats.Name(appName))
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		a.natsConn = conn
	} else {
		// Start embedded NATS server
		a.logger.Info("Starting embedded NATS server", "store_dir", a.cfg.NATS.StoreDir)
		opts := &server.Options{
			Port:      -1, // Random available port
			JetStream: true,
			StoreDir:  a.cfg.NATS.StoreDir,
			NoLog:     true,
			NoSigs:    true,
		}

		ns, err := server.NewServer(opts)
		if err != nil {
			return fmt.Errorf("create embedded NATS server: %w", err)
		}

		go ns.Start()

		// Wait for server to be ready
		if !ns.ReadyForConnections(5 * time.Second) {
			ns.Shutdown()
			return fmt.Errorf("embedded NATS server failed to start")
		}

		a.embeddedServer = ns

		// Connect to embedded server
		conn, err := nats.Connect(ns.ClientURL(), nats.Name(appName))
		if err != nil {
			return fmt.Errorf("connect to embedded NATS: %w", err)
		}
		a.natsConn = conn
	}

	// Get JetStream context
	js, err := jetstream.New(a.natsConn)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	a.js = js

	return nil
}

func (a *App) startWatch(ctx context.Context) {
	watchCtx, cancel := context.WithCancel(ctx)
	a.watchCancel = cancel
	a.watchers.Add(1)
	go func() {
		defer a.watchers.Done()
		if err := a.catalog.Watch(watchCtx); err != nil {
			a.logger.Warn("Target data watcher stopped", "dir", a.catalog.Root(), "error", err)
		}
	}()
}

// newAPI wires the project-api component from the configuration.
func (a *App) newAPI(catalog *targetdata.Catalog) (*projectapi.Component, error) {
	projects, err := project.NewManager(a.cfg.Projects.Root,
		project.WithLibraryFile(a.cfg.Library.FileName),
		project.WithManagerLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("open project root: %w", err)
	}

	builder := newLibraryBuilder(a.cfg, a.logger, a.metrics)
	compiler := project.NewCompiler(project.CompilerConfig{
		Executable: a.cfg.Compiler.Executable,
		Args:       a.cfg.Compiler.Args,
		Timeout:    a.cfg.Compiler.Timeout,
	}, a.cfg.Library.FileName, a.logger)

	issuer, err := auth.NewIssuer(a.cfg.Auth.Secret, a.cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	apiCfg := projectapi.DefaultConfig()
	apiCfg.MaxBodyBytes = a.cfg.Server.MaxBodyBytes

	return projectapi.NewComponent(apiCfg, projectapi.Dependencies{
		Store:    a.store,
		Projects: projects,
		Resolver: project.NewResolver(catalog, builder.Build),
		Compiler: compiler,
		Catalog:  catalog,
		Issuer:   issuer,
		Metrics:  a.metrics,
		Logger:   a.logger,
	})
}

// newLibraryBuilder creates the SynBioHub library builder described by cfg.
// m may be nil.
func newLibraryBuilder(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *synbiohub.LibraryBuilder {
	var observer synbiohub.Observer
	if m != nil {
		observer = m
	}
	return synbiohub.NewLibraryBuilder(synbiohub.BuilderConfig{
		Registry: synbiohub.Config{
			URL:               cfg.Registry.URL,
			Token:             cfg.Registry.Token,
			Timeout:           cfg.Registry.Timeout,
			RequestsPerSecond: cfg.Registry.RequestsPerSecond,
			Burst:             cfg.Registry.Burst,
			AllowPrivate:      cfg.Registry.AllowPrivate,
			UserAgent:         appName + "/" + Version,
		},
		Namespace:             cfg.Library.Namespace,
		AttachmentConcurrency: cfg.Registry.AttachmentConcurrency,
	}, logger, observer)
}

func (a *App) startHTTP() error {
	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.cfg.Server.Addr, err)
	}
	a.listener = ln
	a.httpServer = &http.Server{
		Handler:           a.api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(a.logger.Handler(), slog.LevelWarn),
	}

	go func() {
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errs <- err
		}
	}()
	return nil
}

// Addr returns the address the HTTP server listens on.
func (a *App) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Errors delivers a fatal HTTP server error.
func (a *App) Errors() <-chan error {
	return a.errs
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown(timeout time.Duration) {
	a.logger.Info("Shutting down")

	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Warn("HTTP shutdown incomplete", "error", err)
		}
		cancel()
	}

	if a.api != nil {
		if err := a.api.Stop(timeout); err != nil {
			a.logger.Warn("Failed to stop API", "error", err)
		}
	}

	if a.watchCancel != nil {
		a.watchCancel()
	}
	a.watchers.Wait()

	// Close NATS connection
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
		a.natsConn.Close()
	}

	// Shutdown embedded server
	if a.embeddedServer != nil {
		a.embeddedServer.Shutdown()
		a.embeddedServer.WaitForShutdown()
	}

	a.logger.Info("Goodbye")
}
