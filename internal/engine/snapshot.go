package engine

import (
	"cmp"
	"maps"
	"slices"

	"github.com/specialistvlad/livegraph/internal/graphmodel"
)

// Snapshot is a comparable description of a graph's live structure. Plug
// values are read without refreshing liveness.
type Snapshot struct {
	Display    graphmodel.NodeID
	HasDisplay bool
	Nodes      []NodeSnapshot
	Failed     []graphmodel.NodeID
	Wired      []graphmodel.LinkID
}

// NodeSnapshot describes one runtime.
type NodeSnapshot struct {
	ID           graphmodel.NodeID
	Type         string
	Passthrough  bool
	Predecessors []graphmodel.NodeID
	Inputs       []PlugSnapshot
	Outputs      []PlugSnapshot
	Subscribers  map[int][]Subscription
}

// PlugSnapshot describes one plug.
type PlugSnapshot struct {
	Name    string
	Type    string
	Drivers int
	Value   string
}

// Snapshot captures the graph's current structure.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Display:    g.display,
		HasDisplay: g.hasDisplay,
		Failed:     slices.Sorted(maps.Keys(g.failed)),
		Wired:      slices.Sorted(maps.Keys(g.wired)),
	}
	for _, id := range g.NodeIDs() {
		rt := g.nodes[id]
		ns := NodeSnapshot{
			ID:           id,
			Type:         rt.Type.Name,
			Passthrough:  rt.Passthrough,
			Predecessors: slices.Sorted(slices.Values(g.preds[id])),
		}
		for _, p := range rt.Inputs {
			text, _ := p.Peek().Format()
			ns.Inputs = append(ns.Inputs, PlugSnapshot{Name: p.Name, Type: p.Type().String(), Drivers: p.Drivers(), Value: text})
		}
		for i, p := range rt.Outputs {
			text, _ := p.Peek().Format()
			ns.Outputs = append(ns.Outputs, PlugSnapshot{Name: p.Name, Type: p.Type().String(), Value: text})
			if subs := g.subs[outputKey{node: id, output: i}]; len(subs) > 0 {
				if ns.Subscribers == nil {
					ns.Subscribers = make(map[int][]Subscription)
				}
				ns.Subscribers[i] = slices.SortedFunc(slices.Values(subs), compareSubscriptions)
			}
		}
		s.Nodes = append(s.Nodes, ns)
	}
	return s
}

func compareSubscriptions(a, b Subscription) int {
	if c := cmp.Compare(a.Node, b.Node); c != 0 {
		return c
	}
	return cmp.Compare(a.Input, b.Input)
}
