package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/fsutil"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/specialistvlad/livegraph/internal/livesync"
	"github.com/specialistvlad/livegraph/internal/registry"
	"github.com/specialistvlad/livegraph/internal/resourcecache"
	"github.com/specialistvlad/livegraph/modules/wavetable"
)

// Editor is the source of external model edits, typically a remote.Bridge.
type Editor interface {
	Drain() []graphmodel.Edit
	Ack(ctx context.Context, e graphmodel.Edit, res graphmodel.EditResult, err error)
	Close(ctx context.Context)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	cache      *resourcecache.Cache
	sync       *livesync.Sync
	editor     Editor
	httpServer *http.Server

	frames atomic.Uint64
	nodes  atomic.Int64
	edits  atomic.Uint64
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own logger, registry and resource
// cache. Registry parity errors are programmer errors and panic.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.RegisterModules(ctx, modules...)

	manifests, err := fsutil.ExpandPaths(cfg.ManifestPaths, ".hcl")
	if err != nil {
		panic(fmt.Errorf("failed to find manifests: %w", err))
	}
	for _, path := range manifests {
		src, err := os.ReadFile(path)
		if err != nil {
			panic(fmt.Errorf("failed to read manifest: %w", err))
		}
		reg.RegisterManifest(path, src)
		logger.Debug("Manifest registered.", "path", path)
	}

	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.", "node_types", reg.Library().Len())

	cache := resourcecache.New(nil)
	wavetable.RegisterResources(cache)

	s := livesync.New(reg, cache)
	s.SetTarget(&changePrinter{w: outW})

	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		cache:    cache,
		sync:     s,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Sync returns the synchronizer owning the live graph.
func (a *App) Sync() *livesync.Sync {
	return a.sync
}

// SetEditor installs an edit source. When set, Run does not dial the
// configured editor URL.
func (a *App) SetEditor(e Editor) {
	a.editor = e
}

// Frames returns the number of completed frames.
func (a *App) Frames() uint64 {
	return a.frames.Load()
}
