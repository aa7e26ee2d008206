package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/specialistvlad/livegraph/internal/node"
	"github.com/specialistvlad/livegraph/internal/typelib"
)

// ErrUnknownType is returned when a node type has no registered behavior.
var ErrUnknownType = errors.New("unknown node type")

// Module is the interface that all node modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Constructor creates a fresh behavior for one node instance.
type Constructor func() node.Behavior

// Registry holds the node type metadata and the Go behaviors implementing
// them for a single application instance.
type Registry struct {
	lib   *typelib.Library
	ctors map[string]Constructor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		lib:   typelib.New(),
		ctors: make(map[string]Constructor),
	}
}

// Library returns the type library populated by registered manifests.
func (r *Registry) Library() *typelib.Library {
	return r.lib
}

// Instantiate creates the runtime for a node. The runtime is neither
// attached nor initialized.
func (r *Registry) Instantiate(ctx context.Context, id graphmodel.NodeID, typeName string) (*node.Runtime, error) {
	def, ok := r.lib.Lookup(typeName)
	if !ok {
		return nil, fmt.Errorf("node %d: %w %q: no manifest", id, ErrUnknownType, typeName)
	}
	ctor, ok := r.ctors[typeName]
	if !ok {
		return nil, fmt.Errorf("node %d: %w %q: no behavior", id, ErrUnknownType, typeName)
	}
	rt, err := node.New(id, def, ctor())
	if err != nil {
		return nil, fmt.Errorf("node %d: %w", id, err)
	}
	ctxlog.FromContext(ctx).Debug("Node instantiated.", "node_id", id, "type", typeName)
	return rt, nil
}
