package synbiohub

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/cellocad/cello-webapp/adaptor"
	"github.com/cellocad/cello-webapp/library"
)

// BuilderConfig configures a LibraryBuilder.
type BuilderConfig struct {
	// Registry is the client configuration. Its URL is the default registry.
	Registry Config

	// Namespace is the annotation namespace handed to the adaptor.
	Namespace string

	// AttachmentConcurrency bounds parallel attachment downloads per build.
	AttachmentConcurrency int
}

// LibraryBuilder builds libraries from collections on any registry,
// keeping one rate-limited client per registry URL.
type LibraryBuilder struct {
	cfg      BuilderConfig
	observer Observer
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

// NewLibraryBuilder creates a LibraryBuilder. observer, when non-nil, sees
// every registry request.
func NewLibraryBuilder(cfg BuilderConfig, logger *slog.Logger, observer Observer) *LibraryBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryBuilder{
		cfg:      cfg,
		observer: observer,
		logger:   logger,
		clients:  make(map[string]*Client),
	}
}

// maxRegistryClients bounds the cached clients for registries other than
// the default.
const maxRegistryClients = 8

// Client returns the client for registry, creating it on first use. An
// empty registry selects the configured default. Once maxRegistryClients
// other registries are cached, further registries get a fresh client on
// every call.
func (b *LibraryBuilder) Client(registry string) (*Client, error) {
	c, _, err := b.client(registry)
	return c, err
}

func (b *LibraryBuilder) client(registry string) (*Client, bool, error) {
	if registry == "" {
		registry = b.cfg.Registry.URL
	}
	key := strings.TrimRight(registry, "/")
	isDefault := key == strings.TrimRight(b.cfg.Registry.URL, "/")

	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.clients[key]; ok {
		return c, true, nil
	}

	cfg := b.cfg.Registry
	if !isDefault {
		// Credentials belong to the default registry only.
		cfg.Token = ""
	}
	cfg.URL = key

	opts := []Option{WithLogger(b.logger)}
	if b.observer != nil {
		opts = append(opts, WithObserver(b.observer))
	}
	c, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, false, err
	}

	others := len(b.clients)
	if _, ok := b.clients[strings.TrimRight(b.cfg.Registry.URL, "/")]; ok {
		others--
	}
	if !isDefault && others >= maxRegistryClients {
		b.logger.Debug("Registry client cache full", "registry", key)
		return c, false, nil
	}
	b.clients[key] = c
	return c, true, nil
}

// Build downloads collection from registry and builds its library.
func (b *LibraryBuilder) Build(ctx context.Context, registry, collection string) (*library.Library, error) {
	c, cached, err := b.client(registry)
	if err != nil {
		return nil, err
	}
	if !cached {
		defer c.CloseIdleConnections()
	}

	builder := library.NewBuilder(adaptor.New(b.cfg.Namespace), c,
		library.WithLogger(b.logger),
		library.WithConcurrency(b.cfg.AttachmentConcurrency),
	)
	return builder.BuildFrom(ctx, c, collection)
}
