// Package wavetable provides a node that reads its samples from a shared
// resource. The table is stored as a blob on the node and every runtime of
// that node shares one decoded copy through the resource cache.
package wavetable

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/node"
	"github.com/specialistvlad/livegraph/internal/registry"
	"github.com/specialistvlad/livegraph/internal/resourcecache"
)

//go:embed manifest.hcl
var manifest []byte

const (
	// ResourceType is the cache type name of a Table.
	ResourceType = "wavetable"
	// ResourceName is the name the table blob is stored under on the node.
	ResourceName = "table"
	// DefaultSize is the number of samples in the default sine table.
	DefaultSize = 256
)

// ErrNoResources is returned by Init when the runtime has no resource
// cache attached.
var ErrNoResources = errors.New("wavetable needs a resource cache")

// Table is one cycle of a waveform.
type Table struct {
	Samples []float32 `msgpack:"samples"`
}

// NewTable returns a one-cycle sine table.
func NewTable() *Table {
	t := &Table{Samples: make([]float32, DefaultSize)}
	for i := range t.Samples {
		t.Samples[i] = float32(math.Sin(2 * math.Pi * float64(i) / DefaultSize))
	}
	return t
}

// At returns the linearly interpolated sample at phase. Phase wraps into
// [0, 1).
func (t *Table) At(phase float64) float64 {
	n := len(t.Samples)
	if n == 0 {
		return 0
	}
	phase -= math.Floor(phase)
	pos := phase * float64(n)
	i := int(pos) % n
	frac := pos - math.Floor(pos)
	a := float64(t.Samples[i])
	b := float64(t.Samples[(i+1)%n])
	return a + (b-a)*frac
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node type and its behavior.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterManifest("wavetable.hcl", manifest)
	r.RegisterBehavior("wavetable", func() node.Behavior { return &Wavetable{} })
}

// RegisterResources declares the wavetable resource type on a cache.
func RegisterResources(c *resourcecache.Cache) {
	c.RegisterType(ResourceType, func() any { return NewTable() })
}

// Wavetable outputs gain * table(phase).
type Wavetable struct {
	node.Base
	table *Table
}

func (w *Wavetable) Init(ctx context.Context, n *node.Runtime) error {
	res := n.Resources()
	if res == nil {
		return ErrNoResources
	}
	acquired, err := res.Acquire(ctx, n.ID, ResourceType, ResourceName)
	if err != nil {
		return err
	}
	table, ok := acquired.(*Table)
	if !ok {
		return fmt.Errorf("resource %q has type %T, want *Table", ResourceName, acquired)
	}
	w.table = table
	ctxlog.FromContext(ctx).Debug("Wavetable acquired.", "node_id", n.ID, "samples", len(table.Samples))
	return nil
}

func (w *Wavetable) Tick(_ context.Context, _ node.Frame, n *node.Runtime) {
	if w.table == nil {
		n.Outputs[0].SetFloat(0)
		return
	}
	n.Outputs[0].SetFloat(n.Inputs[1].Float() * w.table.At(n.Inputs[0].Float()))
}

func (w *Wavetable) Destroy(ctx context.Context, n *node.Runtime) {
	if w.table == nil {
		return
	}
	last, err := n.Resources().Release(ctx, w.table)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Releasing wavetable failed.", "node_id", n.ID, "error", err)
	}
	if last {
		w.table.Samples = nil
	}
	w.table = nil
}
