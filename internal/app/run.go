package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/specialistvlad/livegraph/internal/hcl_adapter"
	"github.com/specialistvlad/livegraph/internal/remote"
)

// Run loads the graph document, runs the frame loop until the frame budget
// is spent or ctx is cancelled, and tears the graph down.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	m, err := a.loadModel(ctx)
	if err != nil {
		return err
	}
	a.cache.SetSource(m)
	a.sync.Load(ctx, m)
	defer a.sync.Graph().Destroy(ctx)

	if a.editor == nil && a.config.EditorURL != "" {
		bridge, err := remote.Dial(ctx, remote.Config{
			URL:                a.config.EditorURL,
			Namespace:          a.config.EditorNamespace,
			InsecureSkipVerify: a.config.InsecureSkipVerify,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to editor: %w", err)
		}
		a.logger.Info("Editor session started.", "session", bridge.Session())
		a.editor = bridge
	}
	if a.editor != nil {
		defer a.editor.Close(ctx)
	}

	a.logger.Info("🚀 Starting frame loop...", "frame_rate", a.config.FrameRate, "frames", a.config.Frames)
	runErr := a.loop(ctx)
	a.logger.Info("🏁 Frame loop finished.", "frames", a.frames.Load())

	if a.config.SaveOnExit {
		if err := hcl_adapter.SaveGraph(a.config.GraphPath, m.Description()); err != nil {
			return errors.Join(runErr, err)
		}
		a.logger.Info("Graph saved.", "path", a.config.GraphPath)
	}
	return runErr
}

func (a *App) loadModel(ctx context.Context) (*graphmodel.Model, error) {
	desc, err := hcl_adapter.LoadGraph(ctx, a.config.GraphPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}
	m, unresolved, err := graphmodel.FromDescription(ctx, a.registry.Library(), desc)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph model: %w", err)
	}
	for _, u := range unresolved {
		a.logger.Warn("Graph document references an unknown socket.", "error", u)
	}
	a.logger.Info("Graph document loaded.", "path", a.config.GraphPath, "nodes", len(desc.Nodes), "links", len(desc.Links))
	return m, nil
}

// loop runs frames at a fixed rate. dt is the nominal frame period so runs
// are reproducible regardless of scheduling jitter.
func (a *App) loop(ctx context.Context) error {
	period := time.Duration(float64(time.Second) / a.config.FrameRate)
	dt := 1 / a.config.FrameRate
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for a.config.Frames == 0 || a.frames.Load() < uint64(a.config.Frames) {
		if ctx.Err() != nil {
			a.logger.Debug("Frame loop cancelled.", "error", ctx.Err())
			return nil
		}
		a.frame(ctx, dt)
		select {
		case <-ctx.Done():
			a.logger.Debug("Frame loop cancelled.", "error", ctx.Err())
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// frame applies pending edits, then ticks and draws the graph once.
func (a *App) frame(ctx context.Context, dt float64) {
	a.applyEdits(ctx)

	g := a.sync.Graph()
	g.Tick(ctx, dt)
	g.Draw(ctx)

	a.nodes.Store(int64(g.Len()))
	a.frames.Add(1)
}

func (a *App) applyEdits(ctx context.Context) {
	if a.editor == nil {
		return
	}
	m := a.sync.Model()
	for _, e := range a.editor.Drain() {
		res, err := m.Apply(ctx, e)
		if err != nil {
			a.logger.Warn("Edit rejected.", "op", e.Op, "error", err)
		} else {
			a.edits.Add(1)
		}
		a.editor.Ack(ctx, e, res, err)
	}
}
