package testutil

import "github.com/specialistvlad/livegraph/internal/registry"

// SimpleModule is a test helper for registering an inline manifest along
// with its behaviors.
type SimpleModule struct {
	Manifest  string
	Behaviors map[string]registry.Constructor
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Manifest != "" {
		r.RegisterManifest("simple.hcl", []byte(m.Manifest))
	}
	for name, ctor := range m.Behaviors {
		r.RegisterBehavior(name, ctor)
	}
}
