package typelib

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateType is returned when a node type name is registered twice.
var ErrDuplicateType = errors.New("node type already registered")

// InputSocket describes one input of a node type.
type InputSocket struct {
	Name     string
	Type     ValueType
	EnumName string
	// Default is the canonical text of the value used when the input is
	// neither connected nor given a literal.
	Default string
	// MultiInput allows several links to drive the input at once. Only
	// float and trigger inputs may declare it.
	MultiInput bool
}

// OutputSocket describes one output of a node type.
type OutputSocket struct {
	Name     string
	Type     ValueType
	Editable bool
}

// NodeType is the metadata of one node type.
type NodeType struct {
	Name        string
	Description string
	// Display marks the type as the display sink. At most one registered
	// type may carry it.
	Display bool
	Inputs  []InputSocket
	Outputs []OutputSocket
}

// InputIndex returns the position of the named input, or -1.
func (t *NodeType) InputIndex(name string) int {
	for i, in := range t.Inputs {
		if in.Name == name {
			return i
		}
	}
	return -1
}

// OutputIndex returns the position of the named output, or -1.
func (t *NodeType) OutputIndex(name string) int {
	for i, out := range t.Outputs {
		if out.Name == name {
			return i
		}
	}
	return -1
}

func (t *NodeType) validate() error {
	if t.Name == "" {
		return errors.New("node type has no name")
	}
	seen := make(map[string]struct{})
	for _, in := range t.Inputs {
		if _, dup := seen["in:"+in.Name]; dup {
			return fmt.Errorf("node type %q: duplicate input %q", t.Name, in.Name)
		}
		seen["in:"+in.Name] = struct{}{}
		if in.MultiInput && in.Type != TypeFloat && in.Type != TypeTrigger {
			return fmt.Errorf("node type %q: input %q of type %s cannot accept multiple drivers", t.Name, in.Name, in.Type)
		}
	}
	for _, out := range t.Outputs {
		if _, dup := seen["out:"+out.Name]; dup {
			return fmt.Errorf("node type %q: duplicate output %q", t.Name, out.Name)
		}
		seen["out:"+out.Name] = struct{}{}
		if out.Type == TypeAny {
			return fmt.Errorf("node type %q: output %q cannot be of type any", t.Name, out.Name)
		}
	}
	return nil
}

// Library is the set of known node types keyed by name.
type Library struct {
	types map[string]*NodeType
}

// New creates an empty library.
func New() *Library {
	return &Library{types: make(map[string]*NodeType)}
}

// Register adds a node type. The type is validated first.
func (l *Library) Register(t *NodeType) error {
	if err := t.validate(); err != nil {
		return err
	}
	if _, exists := l.types[t.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateType, t.Name)
	}
	l.types[t.Name] = t
	return nil
}

// Lookup returns the metadata of a node type.
func (l *Library) Lookup(name string) (*NodeType, bool) {
	t, ok := l.types[name]
	return t, ok
}

// Names returns all registered type names in sorted order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.types))
	for name := range l.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (l *Library) Len() int {
	return len(l.types)
}

// InputIndex resolves an input socket name of a node type. It returns -1
// when either the type or the socket is unknown.
func (l *Library) InputIndex(typeName, socket string) int {
	t, ok := l.types[typeName]
	if !ok {
		return -1
	}
	return t.InputIndex(socket)
}

// OutputIndex resolves an output socket name of a node type.
func (l *Library) OutputIndex(typeName, socket string) int {
	t, ok := l.types[typeName]
	if !ok {
		return -1
	}
	return t.OutputIndex(socket)
}

// AcceptsMultiple reports whether the named input accepts several drivers.
// Unknown sockets report false.
func (l *Library) AcceptsMultiple(typeName, socket string) bool {
	t, ok := l.types[typeName]
	if !ok {
		return false
	}
	idx := t.InputIndex(socket)
	if idx < 0 {
		return false
	}
	return t.Inputs[idx].MultiInput
}

// DisplayTypes returns the names of all types marked as display sinks.
func (l *Library) DisplayTypes() []string {
	var names []string
	for _, name := range l.Names() {
		if l.types[name].Display {
			names = append(names, name)
		}
	}
	return names
}
