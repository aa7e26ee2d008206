// Package signal provides the basic float sources and the display sink.
package signal

import (
	"context"
	_ "embed"
	"math"

	"github.com/specialistvlad/livegraph/internal/node"
	"github.com/specialistvlad/livegraph/internal/registry"
)

//go:embed manifest.hcl
var manifest []byte

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node types and their behaviors.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifest("signal.hcl", manifest)
	r.RegisterBehavior("constant", func() node.Behavior { return &Constant{} })
	r.RegisterBehavior("oscillator", func() node.Behavior { return &Oscillator{} })
	r.RegisterBehavior("display", func() node.Behavior { return &Display{} })
}

// Constant copies its aggregated input to its output.
type Constant struct {
	node.Base
}

func (c *Constant) Tick(_ context.Context, _ node.Frame, n *node.Runtime) {
	n.Outputs[0].SetFloat(n.Inputs[0].Float())
}

// Oscillator integrates frequency over time and outputs
// amplitude * sin(2π(phase+offset)). Phase stays in [0, 1).
type Oscillator struct {
	node.Base
	phase float64
}

func (o *Oscillator) Init(_ context.Context, n *node.Runtime) error {
	o.phase = 0
	n.Outputs[0].SetFloat(0)
	n.Outputs[1].SetFloat(0)
	return nil
}

func (o *Oscillator) Tick(_ context.Context, f node.Frame, n *node.Runtime) {
	freq := n.Inputs[0].Float()
	amp := n.Inputs[1].Float()
	offset := n.Inputs[2].Float()

	o.phase += freq * f.DT
	o.phase -= math.Floor(o.phase)

	n.Outputs[0].SetFloat(amp * math.Sin(2*math.Pi*(o.phase+offset)))
	n.Outputs[1].SetFloat(o.phase)
}

// Display keeps its input alive. The graph presents the input's value after
// the draw traversal.
type Display struct {
	node.Base
}

func (d *Display) Tick(_ context.Context, _ node.Frame, n *node.Runtime) {
	n.Inputs[0].Touch()
}
