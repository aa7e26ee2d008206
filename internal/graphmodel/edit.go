package graphmodel

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownOp is returned by Apply for an edit with an unrecognized op.
var ErrUnknownOp = errors.New("unknown edit op")

// EditOp names one kind of edit.
type EditOp string

const (
	OpNodeAdd      EditOp = "node_add"
	OpNodeRemove   EditOp = "node_remove"
	OpLinkAdd      EditOp = "link_add"
	OpLinkRemove   EditOp = "link_remove"
	OpLiteralSet   EditOp = "literal_set"
	OpLiteralClear EditOp = "literal_clear"
	OpParamSet     EditOp = "param_set"
	OpParamClear   EditOp = "param_clear"
)

// Edit is one serialized model mutation, as produced by an external editor.
type Edit struct {
	Op   EditOp `json:"op"`
	Node NodeID `json:"node,omitempty"`
	Type string `json:"type,omitempty"`
	Link LinkID `json:"link,omitempty"`

	OutputNode   NodeID `json:"output_node,omitempty"`
	OutputSocket string `json:"output_socket,omitempty"`
	InputNode    NodeID `json:"input_node,omitempty"`
	InputSocket  string `json:"input_socket,omitempty"`
	// Replace removes existing drivers of a single-input socket first.
	Replace bool `json:"replace,omitempty"`

	// Name is the socket name for literal edits and the parameter name for
	// param edits.
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

// EditResult carries the ids allocated by an edit.
type EditResult struct {
	Node NodeID `json:"node,omitempty"`
	Link LinkID `json:"link,omitempty"`
}

// Apply performs one edit.
func (m *Model) Apply(ctx context.Context, e Edit) (EditResult, error) {
	switch e.Op {
	case OpNodeAdd:
		n, err := m.AddNode(ctx, e.Type)
		if err != nil {
			return EditResult{}, err
		}
		return EditResult{Node: n.ID}, nil
	case OpNodeRemove:
		return EditResult{Node: e.Node}, m.RemoveNode(ctx, e.Node)
	case OpLinkAdd:
		l, err := m.AddLink(ctx, LinkSpec{
			OutputNode:   e.OutputNode,
			OutputSocket: e.OutputSocket,
			InputNode:    e.InputNode,
			InputSocket:  e.InputSocket,
		}, e.Replace)
		if err != nil {
			return EditResult{}, err
		}
		return EditResult{Link: l.ID}, nil
	case OpLinkRemove:
		return EditResult{Link: e.Link}, m.RemoveLink(ctx, e.Link)
	case OpLiteralSet:
		return EditResult{Node: e.Node}, m.SetLiteral(ctx, e.Node, e.Name, e.Value)
	case OpLiteralClear:
		return EditResult{Node: e.Node}, m.ClearLiteral(ctx, e.Node, e.Name)
	case OpParamSet:
		return EditResult{Link: e.Link}, m.SetLinkParam(ctx, e.Link, e.Name, e.Value)
	case OpParamClear:
		return EditResult{Link: e.Link}, m.ClearLinkParam(ctx, e.Link, e.Name)
	default:
		return EditResult{}, fmt.Errorf("%w: %q", ErrUnknownOp, e.Op)
	}
}
