package registry

import (
	"fmt"
	"log/slog"

	"github.com/specialistvlad/livegraph/internal/typelib"
)

// RegisterType adds node type metadata to the library.
func (r *Registry) RegisterType(def *typelib.NodeType) {
	if err := r.lib.Register(def); err != nil {
		panic(fmt.Sprintf("node type '%s' could not be registered: %v", def.Name, err))
	}
	slog.Debug("Registering node type.", "name", def.Name, "inputs", len(def.Inputs), "outputs", len(def.Outputs))
}

// RegisterBehavior registers the Go constructor for a node type.
func (r *Registry) RegisterBehavior(name string, ctor Constructor) {
	if _, exists := r.ctors[name]; exists {
		panic(fmt.Sprintf("behavior for node type '%s' already registered", name))
	}
	slog.Debug("Registering node behavior.", "name", name)
	r.ctors[name] = ctor
}
