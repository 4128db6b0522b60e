// Package projectapi provides the HTTP API of the Cello web backend:
// accounts, projects, library specification, compiler runs and target data.
package projectapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"

	"github.com/cellocad/cello-webapp/auth"
	"github.com/cellocad/cello-webapp/export"
	"github.com/cellocad/cello-webapp/metrics"
	"github.com/cellocad/cello-webapp/project"
	"github.com/cellocad/cello-webapp/storage"
	"github.com/cellocad/cello-webapp/targetdata"
)

// Store is the record storage the component needs. *storage.Store satisfies it.
type Store interface {
	CreateUser(ctx context.Context, u *storage.User) error
	GetUser(ctx context.Context, username string) (*storage.User, error)
	CreateProject(ctx context.Context, p *storage.ProjectRecord) error
	GetProject(ctx context.Context, owner, name string) (*storage.ProjectRecord, error)
	ListProjects(ctx context.Context, owner string) ([]*storage.ProjectRecord, error)
	UpdateProject(ctx context.Context, p *storage.ProjectRecord) error
	DeleteProject(ctx context.Context, owner, name string) error
}

// Dependencies are the collaborators of the component. Catalog and Metrics
// are optional.
type Dependencies struct {
	Store    Store
	Projects *project.Manager
	Resolver *project.Resolver
	Compiler *project.Compiler
	Catalog  *targetdata.Catalog
	Issuer   *auth.Issuer
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// Component implements the project-api component.
type Component struct {
	name   string
	config Config
	logger *slog.Logger

	store    Store
	projects *project.Manager
	resolver *project.Resolver
	compiler *project.Compiler
	catalog  *targetdata.Catalog
	issuer   *auth.Issuer
	metrics  *metrics.Metrics
	exporter *export.LibraryExporter

	// Lifecycle state machine
	// States: 0=stopped, 1=starting, 2=running, 3=stopping
	state     atomic.Int32
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc
}

const (
	stateStopped  = 0
	stateStarting = 1
	stateRunning  = 2
	stateStopping = 3
)

// NewComponent constructs a project-api Component.
func NewComponent(config Config, deps Dependencies) (*Component, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var missing []error
	if deps.Store == nil {
		missing = append(missing, errors.New("store is required"))
	}
	if deps.Projects == nil {
		missing = append(missing, errors.New("project manager is required"))
	}
	if deps.Resolver == nil {
		missing = append(missing, errors.New("library resolver is required"))
	}
	if deps.Compiler == nil {
		missing = append(missing, errors.New("compiler is required"))
	}
	if deps.Issuer == nil {
		missing = append(missing, errors.New("token issuer is required"))
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}

	return &Component{
		name:     "project-api",
		config:   config,
		logger:   logger,
		store:    deps.Store,
		projects: deps.Projects,
		resolver: deps.Resolver,
		compiler: deps.Compiler,
		catalog:  deps.Catalog,
		issuer:   deps.Issuer,
		metrics:  m,
		exporter: export.NewLibraryExporter(config.LibraryBase),
	}, nil
}

// Initialize prepares the component for startup.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized project-api", "prefix", c.config.Prefix)
	return nil
}

// Start begins serving the component.
func (c *Component) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(stateStopped, stateStarting) {
		current := c.state.Load()
		if current == stateRunning || current == stateStarting {
			return fmt.Errorf("component already running or starting")
		}
		return fmt.Errorf("component in invalid state: %d", current)
	}

	defer func() {
		if c.state.Load() == stateStarting {
			c.state.Store(stateStopped)
		}
	}()

	_, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.cancel = cancel
	c.startTime = time.Now()
	c.mu.Unlock()

	c.state.Store(stateRunning)
	c.logger.Info("project-api started", "prefix", c.config.Prefix)
	return nil
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	if !c.state.CompareAndSwap(stateRunning, stateStopping) {
		current := c.state.Load()
		if current == stateStopped || current == stateStopping {
			return nil
		}
		return fmt.Errorf("component in unexpected state: %d", current)
	}

	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	c.state.Store(stateStopped)
	c.logger.Info("project-api stopped")
	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        c.name,
		Type:        "processor",
		Description: "HTTP API for Cello projects, libraries and compiler runs",
		Version:     "0.1.0",
	}
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return projectAPISchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	state := c.state.Load()
	running := state == stateRunning

	c.mu.RLock()
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	switch state {
	case stateStarting:
		status = "starting"
	case stateRunning:
		status = "running"
	case stateStopping:
		status = "stopping"
	}

	var uptime time.Duration
	if running {
		uptime = time.Since(startTime)
	}

	return component.HealthStatus{
		Healthy:   running,
		LastCheck: time.Now(),
		Uptime:    uptime,
		Status:    status,
	}
}
