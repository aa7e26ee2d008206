package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/typelib"
)

// Validate performs a strict parity check between manifests and Go
// behaviors, and checks that at most one display type is declared.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.lib.Names() {
		if _, ok := r.ctors[name]; !ok {
			errs = append(errs, fmt.Sprintf("node type '%s': manifest declared, but no Go behavior is registered", name))
		}
		def, _ := r.lib.Lookup(name)
		for _, in := range def.Inputs {
			if in.Type == typelib.TypeAny {
				logger.Debug("Node type has a wildcard input; connections to it are not type checked.", "node_type", name, "input", in.Name)
			}
		}
	}

	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, ok := r.lib.Lookup(name); !ok {
			errs = append(errs, fmt.Sprintf("node type '%s': Go behavior registered, but no manifest declares it", name))
		}
	}

	if display := r.lib.DisplayTypes(); len(display) > 1 {
		errs = append(errs, fmt.Sprintf("more than one display node type: %s", strings.Join(display, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
