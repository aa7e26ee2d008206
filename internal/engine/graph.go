package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/specialistvlad/livegraph/internal/node"
	"github.com/specialistvlad/livegraph/internal/registry"
	"github.com/specialistvlad/livegraph/internal/typelib"
)

var (
	// ErrUnresolved is returned when a link's socket names did not resolve
	// against the type library.
	ErrUnresolved = errors.New("link sockets are unresolved")
	// ErrUnavailable is returned when a link endpoint has no live runtime:
	// the node is disabled, missing, or failed to construct.
	ErrUnavailable = errors.New("node has no live runtime")
)

// maxTriggerDepth bounds synchronous trigger delivery through trigger
// cycles.
const maxTriggerDepth = 64

// Target receives the display node's value after every draw traversal.
type Target interface {
	Present(ctx context.Context, v *node.Value)
}

// Subscription is one trigger input listening to a trigger output.
type Subscription struct {
	Node  graphmodel.NodeID
	Input int
}

type outputKey struct {
	node   graphmodel.NodeID
	output int
}

type wiredLink struct {
	output graphmodel.NodeID
	input  graphmodel.NodeID
}

// Graph is the instantiated, executable form of a graph model.
type Graph struct {
	reg       *registry.Registry
	resources node.Resources
	target    Target

	clock node.Clock

	nodes  map[graphmodel.NodeID]*node.Runtime
	failed map[graphmodel.NodeID]string
	// preds holds one entry per wired link into the node.
	preds map[graphmodel.NodeID][]graphmodel.NodeID
	subs  map[outputKey][]Subscription
	wired map[graphmodel.LinkID]wiredLink

	// displays holds every live display-type node; the lowest id is the
	// active one.
	displays   map[graphmodel.NodeID]struct{}
	display    graphmodel.NodeID
	hasDisplay bool

	fireDepth int
}

// New creates an empty graph. res may be nil when no node type uses shared
// resources.
func New(reg *registry.Registry, res node.Resources) *Graph {
	return &Graph{
		reg:       reg,
		resources: res,
		nodes:     make(map[graphmodel.NodeID]*node.Runtime),
		failed:    make(map[graphmodel.NodeID]string),
		preds:     make(map[graphmodel.NodeID][]graphmodel.NodeID),
		subs:      make(map[outputKey][]Subscription),
		wired:     make(map[graphmodel.LinkID]wiredLink),
		displays:  make(map[graphmodel.NodeID]struct{}),
	}
}

// SetTarget installs the receiver of the display node's value.
func (g *Graph) SetTarget(t Target) {
	g.target = t
}

// Construct builds a graph from a model in four passes: instantiate every
// enabled node, wire every enabled link, apply literals, then initialize.
// Failures are logged and leave the graph usable.
func Construct(ctx context.Context, m *graphmodel.Model, reg *registry.Registry, res node.Resources) *Graph {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Construct: Starting graph construction.")
	g := New(reg, res)

	nodes := m.Nodes()
	for _, n := range nodes {
		_ = g.AddNode(ctx, n)
	}
	logger.Debug("Construct: Node creation complete.", "node_count", len(g.nodes), "failed", len(g.failed))

	for _, l := range m.Links() {
		_ = g.Connect(ctx, l)
	}
	logger.Debug("Construct: Link wiring complete.", "wired", len(g.wired))

	for _, n := range nodes {
		for _, socket := range slices.Sorted(maps.Keys(n.Literals)) {
			_ = g.ApplyLiteral(ctx, n.ID, socket, n.Literals[socket])
		}
	}

	for _, n := range nodes {
		g.InitNode(ctx, n.ID)
	}
	logger.Debug("Construct: Graph construction complete.")
	return g
}

// AddNode instantiates a node without initializing it. Disabled nodes are
// skipped. A node that fails to instantiate is tombstoned: it stays known
// to the graph but has no runtime.
func (g *Graph) AddNode(ctx context.Context, n *graphmodel.Node) error {
	logger := ctxlog.FromContext(ctx)
	if !n.Enabled {
		logger.Debug("Skipping disabled node.", "node_id", n.ID, "type", n.Type)
		return nil
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("node %d is already instantiated", n.ID)
	}

	rt, err := g.reg.Instantiate(ctx, n.ID, n.Type)
	if err != nil {
		logger.Warn("Node construction failed; keeping a tombstone.", "node_id", n.ID, "type", n.Type, "error", err)
		g.failed[n.ID] = n.Type
		return err
	}
	rt.Passthrough = n.Passthrough
	rt.Attach(&g.clock, g, g.resources)
	g.nodes[n.ID] = rt

	if rt.Type.Display {
		g.displays[n.ID] = struct{}{}
		if len(g.displays) > 1 {
			logger.Warn("Graph has more than one display node; the lowest id is presented.", "node_id", n.ID)
		}
		g.pickDisplay()
	}
	return nil
}

// InitNode runs the behavior's Init. Errors are logged; the node stays in
// the graph.
func (g *Graph) InitNode(ctx context.Context, id graphmodel.NodeID) {
	rt, ok := g.nodes[id]
	if !ok || rt.Behavior == nil {
		return
	}
	if err := rt.Behavior.Init(ctx, rt); err != nil {
		ctxlog.FromContext(ctx).Warn("Node initialization failed.", "node_id", id, "type", rt.Type.Name, "error", err)
	}
}

// RemoveNode destroys a node's runtime, or forgets its tombstone. Links
// touching the node must have been disconnected first.
func (g *Graph) RemoveNode(ctx context.Context, id graphmodel.NodeID) {
	logger := ctxlog.FromContext(ctx)
	if _, ok := g.failed[id]; ok {
		delete(g.failed, id)
		return
	}
	rt, ok := g.nodes[id]
	if !ok {
		return
	}
	for linkID, w := range g.wired {
		if w.output == id || w.input == id {
			logger.Error("Removing a node whose links are still wired.", "node_id", id, "link_id", linkID)
		}
	}

	rt.Destroy(ctx)
	delete(g.nodes, id)
	delete(g.preds, id)
	for key := range g.subs {
		if key.node == id {
			delete(g.subs, key)
		}
	}
	delete(g.displays, id)
	g.pickDisplay()
	logger.Debug("Node removed from graph.", "node_id", id)
}

// pickDisplay makes the lowest live display id the active one.
func (g *Graph) pickDisplay() {
	g.display, g.hasDisplay = 0, false
	for id := range g.displays {
		if !g.hasDisplay || id < g.display {
			g.display, g.hasDisplay = id, true
		}
	}
}

// Connect wires a link. Disabled links are ignored; wiring an already wired
// link is a no-op.
func (g *Graph) Connect(ctx context.Context, l *graphmodel.Link) error {
	logger := ctxlog.FromContext(ctx).With("link_id", l.ID)
	if _, ok := g.wired[l.ID]; ok || !l.Enabled {
		return nil
	}
	if !l.Resolved() {
		logger.Warn("Skipping link with unresolved sockets.", "output_socket", l.OutputSocket, "input_socket", l.InputSocket)
		return fmt.Errorf("link %d: %w", l.ID, ErrUnresolved)
	}

	out, in, err := g.endpoints(l)
	if err != nil {
		logger.Debug("Skipping link.", "error", err)
		return err
	}

	remap, err := node.RemapFromParams(l.Params)
	if err != nil {
		logger.Warn("Ignoring malformed remap parameters.", "error", err)
	}
	if err := in.ConnectLink(out, uint64(l.ID), remap); err != nil {
		logger.Warn("Link not wired.", "output_node", l.OutputNode, "input_node", l.InputNode, "error", err)
		return fmt.Errorf("link %d: %w", l.ID, err)
	}

	g.wired[l.ID] = wiredLink{output: l.OutputNode, input: l.InputNode}
	g.preds[l.InputNode] = append(g.preds[l.InputNode], l.OutputNode)
	if out.DeclaredType() == typelib.TypeTrigger {
		key := outputKey{node: l.OutputNode, output: l.OutputIndex}
		g.subs[key] = append(g.subs[key], Subscription{Node: l.InputNode, Input: l.InputIndex})
	}
	logger.Debug("Link wired.", "output_node", l.OutputNode, "input_node", l.InputNode)
	return nil
}

// Disconnect unwires a link. Links that were never wired are ignored.
func (g *Graph) Disconnect(ctx context.Context, l *graphmodel.Link) error {
	logger := ctxlog.FromContext(ctx).With("link_id", l.ID)
	if _, ok := g.wired[l.ID]; !ok {
		return nil
	}
	delete(g.wired, l.ID)

	out, in, err := g.endpoints(l)
	if err != nil {
		logger.Error("Wired link lost an endpoint.", "error", err)
		return err
	}
	if err := in.DisconnectLink(out, uint64(l.ID)); err != nil {
		logger.Error("Wired link was not connected.", "error", err)
		return err
	}

	g.preds[l.InputNode] = removeOne(g.preds[l.InputNode], l.OutputNode)
	if out.DeclaredType() == typelib.TypeTrigger {
		key := outputKey{node: l.OutputNode, output: l.OutputIndex}
		g.subs[key] = removeOne(g.subs[key], Subscription{Node: l.InputNode, Input: l.InputIndex})
		if len(g.subs[key]) == 0 {
			delete(g.subs, key)
		}
	}
	logger.Debug("Link unwired.")
	return nil
}

func (g *Graph) endpoints(l *graphmodel.Link) (out, in *node.Plug, err error) {
	outRT, ok := g.nodes[l.OutputNode]
	if !ok {
		return nil, nil, fmt.Errorf("link %d output node %d: %w", l.ID, l.OutputNode, ErrUnavailable)
	}
	inRT, ok := g.nodes[l.InputNode]
	if !ok {
		return nil, nil, fmt.Errorf("link %d input node %d: %w", l.ID, l.InputNode, ErrUnavailable)
	}
	if l.OutputIndex >= len(outRT.Outputs) || l.InputIndex >= len(inRT.Inputs) {
		return nil, nil, fmt.Errorf("link %d: socket index out of range: %w", l.ID, ErrUnresolved)
	}
	return outRT.Outputs[l.OutputIndex], inRT.Inputs[l.InputIndex], nil
}

// removeOne deletes the first occurrence of v.
func removeOne[T comparable](s []T, v T) []T {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}

// ApplyLiteral sets the literal of a live input.
func (g *Graph) ApplyLiteral(ctx context.Context, id graphmodel.NodeID, socket, text string) error {
	p, err := g.input(id, socket)
	if err != nil {
		return err
	}
	if err := p.SetLiteral(text); err != nil {
		// A rebuild would start from the default and reject the same text.
		ctxlog.FromContext(ctx).Warn("Literal rejected; input reset to its default.", "node_id", id, "socket", socket, "error", err)
		if rerr := p.ResetLiteral(); rerr != nil {
			ctxlog.FromContext(ctx).Warn("Default could not be restored.", "node_id", id, "socket", socket, "error", rerr)
		}
		return err
	}
	return nil
}

// ClearLiteral restores the declared default of a live input.
func (g *Graph) ClearLiteral(ctx context.Context, id graphmodel.NodeID, socket string) error {
	p, err := g.input(id, socket)
	if err != nil {
		return err
	}
	if err := p.ResetLiteral(); err != nil {
		ctxlog.FromContext(ctx).Warn("Default could not be restored.", "node_id", id, "socket", socket, "error", err)
		return err
	}
	return nil
}

func (g *Graph) input(id graphmodel.NodeID, socket string) (*node.Plug, error) {
	rt, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %d: %w", id, ErrUnavailable)
	}
	p := rt.Input(socket)
	if p == nil {
		return nil, fmt.Errorf("node %d input %q: %w", id, socket, ErrUnresolved)
	}
	return p, nil
}

// SetLinkParameter updates one remap field on the aggregation element a
// wired link contributes. Parameters that are not remap fields are kept in
// the model only.
func (g *Graph) SetLinkParameter(ctx context.Context, l *graphmodel.Link, name, value string) error {
	if !node.IsRemapParam(name) {
		return nil
	}
	if _, ok := g.wired[l.ID]; !ok {
		return nil
	}
	out, in, err := g.endpoints(l)
	if err != nil {
		return err
	}
	if err := in.SetRemapParam(out, uint64(l.ID), name, value); err != nil {
		// Rewiring skips malformed fields, so the live element does too.
		ctxlog.FromContext(ctx).Warn("Link parameter rejected; field cleared.", "link_id", l.ID, "name", name, "error", err)
		_ = in.ClearRemapParam(out, uint64(l.ID), name)
		return err
	}
	return nil
}

// ClearLinkParameter unsets one remap field on a wired link's element.
func (g *Graph) ClearLinkParameter(ctx context.Context, l *graphmodel.Link, name string) error {
	if !node.IsRemapParam(name) {
		return nil
	}
	if _, ok := g.wired[l.ID]; !ok {
		return nil
	}
	out, in, err := g.endpoints(l)
	if err != nil {
		return err
	}
	return in.ClearRemapParam(out, uint64(l.ID), name)
}

// Fire delivers a trigger to every subscriber of exactly (from, output),
// depth first.
func (g *Graph) Fire(ctx context.Context, from graphmodel.NodeID, output int) {
	subs := g.subs[outputKey{node: from, output: output}]
	if len(subs) == 0 {
		return
	}
	if g.fireDepth >= maxTriggerDepth {
		ctxlog.FromContext(ctx).Error("Trigger delivery too deep; dropping.", "node_id", from, "output", output)
		return
	}
	g.fireDepth++
	defer func() { g.fireDepth-- }()

	for _, s := range slices.Clone(subs) {
		if rt, ok := g.nodes[s.Node]; ok {
			rt.HandleTrigger(ctx, s.Input)
		}
	}
}

// Destroy tears every runtime down and empties the graph.
func (g *Graph) Destroy(ctx context.Context) {
	for _, id := range g.NodeIDs() {
		g.nodes[id].Destroy(ctx)
	}
	clear(g.nodes)
	clear(g.failed)
	clear(g.preds)
	clear(g.subs)
	clear(g.wired)
	clear(g.displays)
	g.display, g.hasDisplay = 0, false
	ctxlog.FromContext(ctx).Debug("Graph destroyed.")
}
