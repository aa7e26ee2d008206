package graphmodel

import (
	"context"
	"fmt"
	"maps"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/typelib"
)

// NodeRecord is the serialized form of a node.
type NodeRecord struct {
	ID          NodeID
	Type        string
	Enabled     bool
	Passthrough bool
	Literals    map[string]string
	Resources   map[string][]byte
}

// LinkRecord is the serialized form of a link. Socket indices are not
// stored; they are resolved again when the description is loaded.
type LinkRecord struct {
	ID           LinkID
	Enabled      bool
	OutputNode   NodeID
	OutputSocket string
	InputNode    NodeID
	InputSocket  string
	Params       map[string]string
}

// Description is the format-agnostic snapshot of a model.
type Description struct {
	NextNodeID uint64
	NextLinkID uint64
	Nodes      []NodeRecord
	Links      []LinkRecord
}

// ResolveError reports a link socket name that did not resolve against the
// type library while loading.
type ResolveError struct {
	Link      LinkID
	Node      NodeID
	NodeType  string
	Socket    string
	Direction string
}

func (e ResolveError) Error() string {
	return fmt.Sprintf("link %d: %s socket %q not found on node %d (type %q)", e.Link, e.Direction, e.Socket, e.Node, e.NodeType)
}

// Description snapshots the model.
func (m *Model) Description() *Description {
	d := &Description{
		NextNodeID: m.nextNodeID,
		NextLinkID: m.nextLinkID,
	}
	for _, n := range m.Nodes() {
		c := n.clone()
		d.Nodes = append(d.Nodes, NodeRecord{
			ID:          c.ID,
			Type:        c.Type,
			Enabled:     c.Enabled,
			Passthrough: c.Passthrough,
			Literals:    c.Literals,
			Resources:   c.Resources,
		})
	}
	for _, l := range m.Links() {
		c := l.clone()
		d.Links = append(d.Links, LinkRecord{
			ID:           c.ID,
			Enabled:      c.Enabled,
			OutputNode:   c.OutputNode,
			OutputSocket: c.OutputSocket,
			InputNode:    c.InputNode,
			InputSocket:  c.InputSocket,
			Params:       c.Params,
		})
	}
	return d
}

// FromDescription rebuilds a model from a snapshot, resolving every link's
// socket names against lib once. Unresolved sockets are returned as
// ResolveErrors and logged; the links are kept with index -1. Duplicate ids
// and links referencing missing nodes are structural errors and fail the
// load.
func FromDescription(ctx context.Context, lib *typelib.Library, d *Description) (*Model, []ResolveError, error) {
	logger := ctxlog.FromContext(ctx)
	m := New(lib)

	var maxNode, maxLink uint64
	for _, rec := range d.Nodes {
		if rec.ID == 0 {
			return nil, nil, fmt.Errorf("node record of type %q has no id", rec.Type)
		}
		if _, dup := m.nodes[rec.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate node id %d", rec.ID)
		}
		n := &Node{
			ID:          rec.ID,
			Type:        rec.Type,
			Enabled:     rec.Enabled,
			Passthrough: rec.Passthrough,
			Literals:    maps.Clone(rec.Literals),
			Resources:   maps.Clone(rec.Resources),
		}
		if n.Literals == nil {
			n.Literals = make(map[string]string)
		}
		if n.Resources == nil {
			n.Resources = make(map[string][]byte)
		}
		m.nodes[n.ID] = n
		maxNode = max(maxNode, uint64(n.ID))
	}

	var unresolved []ResolveError
	for _, rec := range d.Links {
		if rec.ID == 0 {
			return nil, nil, fmt.Errorf("link record %d.%s -> %d.%s has no id", rec.OutputNode, rec.OutputSocket, rec.InputNode, rec.InputSocket)
		}
		if _, dup := m.links[rec.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate link id %d", rec.ID)
		}
		outNode, ok := m.nodes[rec.OutputNode]
		if !ok {
			return nil, nil, fmt.Errorf("link %d: output node %d: %w", rec.ID, rec.OutputNode, ErrNodeNotFound)
		}
		inNode, ok := m.nodes[rec.InputNode]
		if !ok {
			return nil, nil, fmt.Errorf("link %d: input node %d: %w", rec.ID, rec.InputNode, ErrNodeNotFound)
		}

		l := &Link{
			ID:           rec.ID,
			Enabled:      rec.Enabled,
			OutputNode:   rec.OutputNode,
			OutputSocket: rec.OutputSocket,
			OutputIndex:  lib.OutputIndex(outNode.Type, rec.OutputSocket),
			InputNode:    rec.InputNode,
			InputSocket:  rec.InputSocket,
			InputIndex:   lib.InputIndex(inNode.Type, rec.InputSocket),
			Params:       maps.Clone(rec.Params),
		}
		if l.Params == nil {
			l.Params = make(map[string]string)
		}
		if l.OutputIndex < 0 {
			unresolved = append(unresolved, ResolveError{Link: l.ID, Node: outNode.ID, NodeType: outNode.Type, Socket: l.OutputSocket, Direction: "output"})
		}
		if l.InputIndex < 0 {
			unresolved = append(unresolved, ResolveError{Link: l.ID, Node: inNode.ID, NodeType: inNode.Type, Socket: l.InputSocket, Direction: "input"})
		}
		m.links[l.ID] = l
		maxLink = max(maxLink, uint64(l.ID))
	}

	m.nextNodeID = max(d.NextNodeID, maxNode+1, 1)
	m.nextLinkID = max(d.NextLinkID, maxLink+1, 1)

	for _, e := range unresolved {
		logger.Warn("Socket name failed to resolve at load.", "error", e.Error())
	}
	logger.Debug("Model loaded from description.", "nodes", len(m.nodes), "links", len(m.links), "unresolved", len(unresolved))
	return m, unresolved, nil
}
