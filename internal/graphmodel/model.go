package graphmodel

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/livegraph/internal/blobcodec"
	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/typelib"
)

var (
	// ErrNodeNotFound is returned when an operation names a node that is
	// not in the model.
	ErrNodeNotFound = errors.New("node not found")
	// ErrLinkNotFound is returned when an operation names a missing link.
	ErrLinkNotFound = errors.New("link not found")
)

// Model is the persisted graph. It is not safe for concurrent use.
type Model struct {
	lib      *typelib.Library
	listener Listener

	nodes map[NodeID]*Node
	links map[LinkID]*Link

	nextNodeID uint64
	nextLinkID uint64
}

// New creates an empty model whose socket names resolve against lib.
func New(lib *typelib.Library) *Model {
	return &Model{
		lib:        lib,
		nodes:      make(map[NodeID]*Node),
		links:      make(map[LinkID]*Link),
		nextNodeID: 1,
		nextLinkID: 1,
	}
}

// Library returns the type library the model resolves against.
func (m *Model) Library() *typelib.Library {
	return m.lib
}

// SetListener installs the mutation listener. A nil listener disables
// notification.
func (m *Model) SetListener(l Listener) {
	m.listener = l
}

// Node returns the node with the given id.
func (m *Model) Node(id NodeID) (*Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Link returns the link with the given id.
func (m *Model) Link(id LinkID) (*Link, bool) {
	l, ok := m.links[id]
	return l, ok
}

// Nodes returns all nodes ordered by id.
func (m *Model) Nodes() []*Node {
	out := make([]*Node, 0, len(m.nodes))
	for _, id := range slices.Sorted(maps.Keys(m.nodes)) {
		out = append(out, m.nodes[id])
	}
	return out
}

// Links returns all links ordered by id.
func (m *Model) Links() []*Link {
	out := make([]*Link, 0, len(m.links))
	for _, id := range slices.Sorted(maps.Keys(m.links)) {
		out = append(out, m.links[id])
	}
	return out
}

// LinksTouching returns the links with either endpoint on the node, ordered
// by id.
func (m *Model) LinksTouching(id NodeID) []*Link {
	var out []*Link
	for _, l := range m.Links() {
		if l.Touches(id) {
			out = append(out, l)
		}
	}
	return out
}

// LinksInto returns the links driving the named input of a node.
func (m *Model) LinksInto(id NodeID, socket string) []*Link {
	var out []*Link
	for _, l := range m.Links() {
		if l.InputNode == id && l.InputSocket == socket {
			out = append(out, l)
		}
	}
	return out
}

// AddNode creates a node of the given type. The type is not checked against
// the library: a node of an unknown type is kept in the model and fails to
// instantiate later.
func (m *Model) AddNode(ctx context.Context, typeName string) (*Node, error) {
	if typeName == "" {
		return nil, errors.New("node type must not be empty")
	}
	n := &Node{
		ID:        NodeID(m.nextNodeID),
		Type:      typeName,
		Enabled:   true,
		Literals:  make(map[string]string),
		Resources: make(map[string][]byte),
	}
	m.nextNodeID++
	m.nodes[n.ID] = n

	ctxlog.FromContext(ctx).Debug("Node added to model.", "node_id", n.ID, "type", typeName)
	if m.listener != nil {
		m.listener.NodeAdd(ctx, n)
	}
	return n, nil
}

// RemoveNode removes every link touching the node, then the node itself.
func (m *Model) RemoveNode(ctx context.Context, id NodeID) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("remove node %d: %w", id, ErrNodeNotFound)
	}

	for _, l := range m.LinksTouching(id) {
		if err := m.RemoveLink(ctx, l.ID); err != nil {
			return err
		}
	}

	if m.listener != nil {
		m.listener.NodeRemove(ctx, n)
	}
	delete(m.nodes, id)
	ctxlog.FromContext(ctx).Debug("Node removed from model.", "node_id", id)
	return nil
}

// AddLink connects an output socket to an input socket. Both nodes must
// exist. Socket names that do not resolve are kept with index -1 and
// reported in the log; such links are never wired.
//
// When clearInputDuplicates is set and the input does not accept multiple
// drivers, every link already driving that input is removed before the new
// one is added.
func (m *Model) AddLink(ctx context.Context, spec LinkSpec, clearInputDuplicates bool) (*Link, error) {
	logger := ctxlog.FromContext(ctx)

	outNode, ok := m.nodes[spec.OutputNode]
	if !ok {
		return nil, fmt.Errorf("add link: output node %d: %w", spec.OutputNode, ErrNodeNotFound)
	}
	inNode, ok := m.nodes[spec.InputNode]
	if !ok {
		return nil, fmt.Errorf("add link: input node %d: %w", spec.InputNode, ErrNodeNotFound)
	}

	if clearInputDuplicates && !m.lib.AcceptsMultiple(inNode.Type, spec.InputSocket) {
		for _, existing := range m.LinksInto(spec.InputNode, spec.InputSocket) {
			logger.Debug("Replacing existing driver of single-input socket.", "link_id", existing.ID, "node_id", spec.InputNode, "socket", spec.InputSocket)
			if err := m.RemoveLink(ctx, existing.ID); err != nil {
				return nil, err
			}
		}
	}

	l := &Link{
		ID:           LinkID(m.nextLinkID),
		Enabled:      !spec.Disabled,
		OutputNode:   spec.OutputNode,
		OutputSocket: spec.OutputSocket,
		OutputIndex:  m.lib.OutputIndex(outNode.Type, spec.OutputSocket),
		InputNode:    spec.InputNode,
		InputSocket:  spec.InputSocket,
		InputIndex:   m.lib.InputIndex(inNode.Type, spec.InputSocket),
		Params:       maps.Clone(spec.Params),
	}
	if l.Params == nil {
		l.Params = make(map[string]string)
	}
	m.nextLinkID++
	m.links[l.ID] = l

	if !l.Resolved() {
		logger.Warn("Link socket names did not resolve.", "link_id", l.ID,
			"output", fmt.Sprintf("%s.%s", outNode.Type, spec.OutputSocket),
			"input", fmt.Sprintf("%s.%s", inNode.Type, spec.InputSocket))
	}
	logger.Debug("Link added to model.", "link_id", l.ID, "output_node", l.OutputNode, "input_node", l.InputNode)

	if m.listener != nil {
		m.listener.LinkAdd(ctx, l)
	}
	return l, nil
}

// RemoveLink removes a link after notifying the listener.
func (m *Model) RemoveLink(ctx context.Context, id LinkID) error {
	l, ok := m.links[id]
	if !ok {
		return fmt.Errorf("remove link %d: %w", id, ErrLinkNotFound)
	}
	if m.listener != nil {
		m.listener.LinkRemove(ctx, l)
	}
	delete(m.links, id)
	ctxlog.FromContext(ctx).Debug("Link removed from model.", "link_id", id)
	return nil
}

// SetLiteral stores literal text for an input socket of a node.
func (m *Model) SetLiteral(ctx context.Context, id NodeID, socket, value string) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("set literal: %w", ErrNodeNotFound)
	}
	n.Literals[socket] = value
	if m.listener != nil {
		m.listener.LiteralSet(ctx, n, socket, value)
	}
	return nil
}

// ClearLiteral removes the literal of an input socket so the declared
// default applies again.
func (m *Model) ClearLiteral(ctx context.Context, id NodeID, socket string) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("clear literal: %w", ErrNodeNotFound)
	}
	if _, set := n.Literals[socket]; !set {
		return nil
	}
	delete(n.Literals, socket)
	if m.listener != nil {
		m.listener.LiteralClear(ctx, n, socket)
	}
	return nil
}

// SetLinkParam stores a named parameter on a link.
func (m *Model) SetLinkParam(ctx context.Context, id LinkID, name, value string) error {
	l, ok := m.links[id]
	if !ok {
		return fmt.Errorf("set link param: %w", ErrLinkNotFound)
	}
	l.Params[name] = value
	if m.listener != nil {
		m.listener.LinkParamSet(ctx, l, name, value)
	}
	return nil
}

// ClearLinkParam removes a named parameter from a link.
func (m *Model) ClearLinkParam(ctx context.Context, id LinkID, name string) error {
	l, ok := m.links[id]
	if !ok {
		return fmt.Errorf("clear link param: %w", ErrLinkNotFound)
	}
	if _, set := l.Params[name]; !set {
		return nil
	}
	delete(l.Params, name)
	if m.listener != nil {
		m.listener.LinkParamClear(ctx, l, name)
	}
	return nil
}

// SetResource stores an opaque blob on a node. Live instances pick the new
// blob up the next time the resource is acquired.
func (m *Model) SetResource(id NodeID, name string, blob []byte) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("set resource: %w", ErrNodeNotFound)
	}
	n.Resources[name] = slices.Clone(blob)
	return nil
}

// SetResourceValue encodes v with the blob codec and stores it on a node.
func (m *Model) SetResourceValue(id NodeID, name string, v any) error {
	blob, err := blobcodec.Encode(v)
	if err != nil {
		return fmt.Errorf("encode resource %q: %w", name, err)
	}
	return m.SetResource(id, name, blob)
}

// Resource returns the blob stored on a node under name. It implements the
// blob source the resource cache reads from.
func (m *Model) Resource(id NodeID, name string) ([]byte, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, false
	}
	blob, ok := n.Resources[name]
	return blob, ok
}
