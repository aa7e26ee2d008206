// Package trigger provides event sources and consumers built on trigger
// sockets.
package trigger

import (
	"context"
	_ "embed"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/node"
	"github.com/specialistvlad/livegraph/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node types and their behaviors.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifest("trigger.hcl", manifest)
	r.RegisterBehavior("pulse", func() node.Behavior { return &Pulse{} })
	r.RegisterBehavior("counter", func() node.Behavior { return &Counter{} })
}

// Pulse accumulates frame time and fires once per interval. A non-positive
// interval never fires.
type Pulse struct {
	node.Base
	elapsed float64
}

func (p *Pulse) Init(context.Context, *node.Runtime) error {
	p.elapsed = 0
	return nil
}

func (p *Pulse) Tick(ctx context.Context, f node.Frame, n *node.Runtime) {
	interval := n.Inputs[0].Float()
	if interval <= 0 {
		p.elapsed = 0
		return
	}
	p.elapsed += f.DT
	if p.elapsed < interval {
		return
	}
	p.elapsed -= interval
	// At most one pulse per frame; leftover time carries over.
	if p.elapsed >= interval {
		p.elapsed = 0
	}
	n.Trigger(ctx, 0)
}

const (
	inputIncrement = 0
	inputReset     = 1
)

// Counter keeps its count in its output storage, so an edited count is
// picked up by the next trigger.
type Counter struct {
	node.Base
}

func (c *Counter) HandleTrigger(ctx context.Context, n *node.Runtime, input int) {
	out := n.Outputs[0]
	switch input {
	case inputIncrement:
		out.SetFloat(out.Peek().Float + 1)
	case inputReset:
		out.SetFloat(0)
	default:
		ctxlog.FromContext(ctx).Warn("Trigger on unknown counter input.", "node_id", n.ID, "input", input)
	}
}
