package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/hcl_adapter"
)

// RegisterManifest parses an HCL manifest and registers every node type it
// declares. Modules call it with their embedded manifest.
func (r *Registry) RegisterManifest(filename string, src []byte) {
	types, err := hcl_adapter.ParseManifest(context.Background(), filename, src)
	if err != nil {
		panic(fmt.Sprintf("manifest %s: %v", filename, err))
	}
	for _, def := range types {
		r.RegisterType(def)
	}
}

// RegisterModules registers every module in order.
func (r *Registry) RegisterModules(ctx context.Context, modules ...Module) {
	logger := ctxlog.FromContext(ctx)
	for _, m := range modules {
		m.Register(r)
	}
	logger.Debug("Modules registered.", "modules", len(modules), "node_types", r.lib.Len())
}
