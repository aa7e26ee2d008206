package graphmodel

import (
	"maps"
	"strconv"
)

// NodeID identifies a node within one model. Zero is never allocated.
type NodeID uint64

// LinkID identifies a link within one model. Zero is never allocated.
type LinkID uint64

func (id NodeID) String() string { return strconv.FormatUint(uint64(id), 10) }
func (id LinkID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Node is one persisted node.
type Node struct {
	ID          NodeID
	Type        string
	Enabled     bool
	Passthrough bool
	// Literals maps input socket names to literal text overriding the
	// declared default.
	Literals map[string]string
	// Resources holds opaque named blobs owned by the node.
	Resources map[string][]byte
}

// Link connects an output socket to an input socket. The Output* fields
// name the node that produces the value, the Input* fields the node that
// consumes it. Indices are -1 when the socket name did not resolve.
type Link struct {
	ID      LinkID
	Enabled bool

	OutputNode   NodeID
	OutputSocket string
	OutputIndex  int

	InputNode   NodeID
	InputSocket string
	InputIndex  int

	// Params holds named string parameters such as the remap range.
	Params map[string]string
}

// Resolved reports whether both socket names resolved to indices.
func (l *Link) Resolved() bool {
	return l.OutputIndex >= 0 && l.InputIndex >= 0
}

// Touches reports whether either endpoint is the given node.
func (l *Link) Touches(id NodeID) bool {
	return l.OutputNode == id || l.InputNode == id
}

// LinkSpec describes a link to be added.
type LinkSpec struct {
	OutputNode   NodeID
	OutputSocket string
	InputNode    NodeID
	InputSocket  string
	Params       map[string]string
	Disabled     bool
}

func (n *Node) clone() *Node {
	c := *n
	c.Literals = maps.Clone(n.Literals)
	c.Resources = maps.Clone(n.Resources)
	return &c
}

func (l *Link) clone() *Link {
	c := *l
	c.Params = maps.Clone(l.Params)
	return &c
}
