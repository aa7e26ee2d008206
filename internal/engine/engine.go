package engine

import (
	"context"
	"maps"
	"slices"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/specialistvlad/livegraph/internal/node"
)

// Tick runs one simulation traversal: the display node's predecessor tree
// first, then every island in ascending id order. The tick id advances once
// at the end.
func (g *Graph) Tick(ctx context.Context, dt float64) {
	f := node.Frame{ID: g.clock.Tick, DT: dt}
	g.clock.Ticking = true

	if g.hasDisplay {
		g.visitTick(ctx, f, g.display)
	}
	for _, id := range g.NodeIDs() {
		if g.nodes[id].TickStamp() != f.ID {
			g.visitTick(ctx, f, id)
		}
	}

	g.clock.Ticking = false
	g.clock.Tick++
}

func (g *Graph) visitTick(ctx context.Context, f node.Frame, id graphmodel.NodeID) {
	rt, ok := g.nodes[id]
	if !ok || !rt.StampTick(f.ID) {
		return
	}
	for _, pred := range g.preds[id] {
		g.visitTick(ctx, f, pred)
	}
	rt.Tick(ctx, f)
}

// Draw runs one draw traversal from the display node, then presents the
// display node's value to the target. Without a display node nothing is
// drawn.
func (g *Graph) Draw(ctx context.Context) {
	f := node.Frame{ID: g.clock.Draw}
	defer func() { g.clock.Draw++ }()

	if !g.hasDisplay {
		return
	}
	g.visitDraw(ctx, f, g.display)

	if g.target == nil {
		return
	}
	rt := g.nodes[g.display]
	if len(rt.Inputs) == 0 {
		ctxlog.FromContext(ctx).Debug("Display node has no input to present.", "node_id", g.display)
		return
	}
	g.target.Present(ctx, rt.Inputs[0].Value())
}

func (g *Graph) visitDraw(ctx context.Context, f node.Frame, id graphmodel.NodeID) {
	rt, ok := g.nodes[id]
	if !ok || !rt.StampDraw(f.ID) {
		return
	}
	for _, pred := range g.preds[id] {
		g.visitDraw(ctx, f, pred)
	}
	rt.Draw(ctx, f)
}

// Node returns the live runtime of a node.
func (g *Graph) Node(id graphmodel.NodeID) (*node.Runtime, bool) {
	rt, ok := g.nodes[id]
	return rt, ok
}

// NodeIDs returns the ids of every live runtime in ascending order.
func (g *Graph) NodeIDs() []graphmodel.NodeID {
	return slices.Sorted(maps.Keys(g.nodes))
}

// Len returns the number of live runtimes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Failed reports whether the node is tombstoned.
func (g *Graph) Failed(id graphmodel.NodeID) bool {
	_, ok := g.failed[id]
	return ok
}

// SocketCounts returns the number of input and output plugs of a node.
// Tombstoned and unknown nodes report zero for both.
func (g *Graph) SocketCounts(id graphmodel.NodeID) (inputs, outputs int) {
	rt, ok := g.nodes[id]
	if !ok {
		return 0, 0
	}
	return len(rt.Inputs), len(rt.Outputs)
}

// Predecessors returns one entry per wired link into the node, in wiring
// order.
func (g *Graph) Predecessors(id graphmodel.NodeID) []graphmodel.NodeID {
	return slices.Clone(g.preds[id])
}

// Subscribers returns the trigger inputs listening to an output.
func (g *Graph) Subscribers(id graphmodel.NodeID, output int) []Subscription {
	return slices.Clone(g.subs[outputKey{node: id, output: output}])
}

// Wired reports whether a link is currently wired.
func (g *Graph) Wired(id graphmodel.LinkID) bool {
	_, ok := g.wired[id]
	return ok
}

// Display returns the display node, if any.
func (g *Graph) Display() (graphmodel.NodeID, bool) {
	return g.display, g.hasDisplay
}

// TickID returns the id the next tick traversal will use.
func (g *Graph) TickID() uint64 {
	return g.clock.Tick
}

// DrawID returns the id the next draw traversal will use.
func (g *Graph) DrawID() uint64 {
	return g.clock.Draw
}
