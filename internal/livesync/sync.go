package livesync

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/engine"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/specialistvlad/livegraph/internal/node"
	"github.com/specialistvlad/livegraph/internal/registry"
)

// ErrNotEditable is returned when writing an output socket whose metadata
// does not mark it editable.
var ErrNotEditable = errors.New("output socket is not editable")

// State is the loading state of a Sync.
type State int

const (
	NotLoading State = iota
	Loading
)

func (s State) String() string {
	if s == Loading {
		return "loading"
	}
	return "not_loading"
}

// Sync translates model mutations into graph operations.
type Sync struct {
	reg       *registry.Registry
	resources node.Resources
	target    engine.Target

	model *graphmodel.Model
	graph *engine.Graph
	state State
}

var _ graphmodel.Listener = (*Sync)(nil)

// New creates a synchronizer holding an empty graph.
func New(reg *registry.Registry, res node.Resources) *Sync {
	return &Sync{
		reg:       reg,
		resources: res,
		graph:     engine.New(reg, res),
	}
}

// SetTarget installs the display target on the current graph and on every
// graph built later.
func (s *Sync) SetTarget(t engine.Target) {
	s.target = t
	s.graph.SetTarget(t)
}

// Graph returns the current execution graph.
func (s *Sync) Graph() *engine.Graph {
	return s.graph
}

// Model returns the model the synchronizer listens to, or nil.
func (s *Sync) Model() *graphmodel.Model {
	return s.model
}

// State returns the loading state.
func (s *Sync) State() State {
	return s.state
}

// LoadBegin enters the Loading state and destroys the current graph.
func (s *Sync) LoadBegin(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	if s.state == Loading {
		logger.Error("LoadBegin called while already loading.")
		return
	}
	s.state = Loading
	if s.model != nil {
		s.model.SetListener(nil)
	}
	s.graph.Destroy(ctx)
	logger.Debug("Graph load started.")
}

// LoadEnd constructs a graph from m, leaves the Loading state and starts
// listening to m.
func (s *Sync) LoadEnd(ctx context.Context, m *graphmodel.Model) {
	logger := ctxlog.FromContext(ctx)
	if s.state != Loading {
		logger.Error("LoadEnd called without LoadBegin.")
		s.graph.Destroy(ctx)
	}

	s.graph = engine.Construct(ctx, m, s.reg, s.resources)
	s.graph.SetTarget(s.target)
	s.model = m
	m.SetListener(s)
	s.state = NotLoading
	logger.Info("Graph loaded.", "nodes", s.graph.Len(), "links", len(m.Links()))
}

// Load is LoadBegin followed by LoadEnd.
func (s *Sync) Load(ctx context.Context, m *graphmodel.Model) {
	s.LoadBegin(ctx)
	s.LoadEnd(ctx, m)
}

// NodeAdd instantiates and initializes the new node.
func (s *Sync) NodeAdd(ctx context.Context, n *graphmodel.Node) {
	if s.state == Loading {
		return
	}
	if err := s.graph.AddNode(ctx, n); err != nil {
		return
	}
	for socket, text := range n.Literals {
		_ = s.graph.ApplyLiteral(ctx, n.ID, socket, text)
	}
	s.graph.InitNode(ctx, n.ID)
}

// NodeRemove destroys the node's runtime.
func (s *Sync) NodeRemove(ctx context.Context, n *graphmodel.Node) {
	if s.state == Loading {
		return
	}
	s.graph.RemoveNode(ctx, n.ID)
}

// LinkAdd wires the new link.
func (s *Sync) LinkAdd(ctx context.Context, l *graphmodel.Link) {
	if s.state == Loading {
		return
	}
	_ = s.graph.Connect(ctx, l)
}

// LinkRemove unwires the link.
func (s *Sync) LinkRemove(ctx context.Context, l *graphmodel.Link) {
	if s.state == Loading {
		return
	}
	_ = s.graph.Disconnect(ctx, l)
}

// LiteralSet applies the literal to the live input.
func (s *Sync) LiteralSet(ctx context.Context, n *graphmodel.Node, socket, value string) {
	if s.state == Loading {
		return
	}
	_ = s.graph.ApplyLiteral(ctx, n.ID, socket, value)
}

// LiteralClear restores the live input's declared default.
func (s *Sync) LiteralClear(ctx context.Context, n *graphmodel.Node, socket string) {
	if s.state == Loading {
		return
	}
	_ = s.graph.ClearLiteral(ctx, n.ID, socket)
}

// LinkParamSet updates the remap of the link's aggregation element.
func (s *Sync) LinkParamSet(ctx context.Context, l *graphmodel.Link, name, value string) {
	if s.state == Loading {
		return
	}
	_ = s.graph.SetLinkParameter(ctx, l, name, value)
}

// LinkParamClear clears one remap field of the link's aggregation element.
func (s *Sync) LinkParamClear(ctx context.Context, l *graphmodel.Link, name string) {
	if s.state == Loading {
		return
	}
	_ = s.graph.ClearLinkParameter(ctx, l, name)
}

// SetLinkParameter stores a link parameter in the model; the change reaches
// the live graph through the listener.
func (s *Sync) SetLinkParameter(ctx context.Context, id graphmodel.LinkID, name, value string) error {
	if s.model == nil {
		return fmt.Errorf("set link parameter: %w", graphmodel.ErrLinkNotFound)
	}
	return s.model.SetLinkParam(ctx, id, name, value)
}

// ClearLinkParameter removes a link parameter from the model and the live
// graph.
func (s *Sync) ClearLinkParameter(ctx context.Context, id graphmodel.LinkID, name string) error {
	if s.model == nil {
		return fmt.Errorf("clear link parameter: %w", graphmodel.ErrLinkNotFound)
	}
	return s.model.ClearLinkParam(ctx, id, name)
}
