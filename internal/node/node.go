package node

import (
	"context"
	"fmt"

	"github.com/specialistvlad/livegraph/internal/ctxlog"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/specialistvlad/livegraph/internal/typelib"
)

// Unstamped is the traversal stamp of a runtime that has not been visited.
const Unstamped = ^uint64(0)

// Clock holds the traversal ids of the graph a runtime lives in. The graph
// owns it and advances it; runtimes and plugs only read it.
type Clock struct {
	Tick uint64
	Draw uint64
	// Ticking is set while a tick traversal runs. Aggregated input values
	// are only cached while it is set.
	Ticking bool
}

func (c *Clock) tick() uint64 {
	if c == nil {
		return 0
	}
	return c.Tick
}

func (c *Clock) ticking() bool {
	return c != nil && c.Ticking
}

// Host is the execution graph as seen from a runtime.
type Host interface {
	// Fire delivers a trigger from output of node from to every subscriber.
	Fire(ctx context.Context, from graphmodel.NodeID, output int)
}

// Resources hands out shared per-node resources.
type Resources interface {
	Acquire(ctx context.Context, id graphmodel.NodeID, resourceType, name string) (any, error)
	Release(ctx context.Context, res any) (bool, error)
}

// Runtime is the live instance of one model node.
type Runtime struct {
	ID          graphmodel.NodeID
	Type        *typelib.NodeType
	Inputs      []*Plug
	Outputs     []*Plug
	Behavior    Behavior
	Passthrough bool

	clock     *Clock
	host      Host
	resources Resources

	tickStamp uint64
	drawStamp uint64
}

// New builds a runtime with one plug per declared socket. Inputs start at
// their declared default.
func New(id graphmodel.NodeID, def *typelib.NodeType, b Behavior) (*Runtime, error) {
	r := &Runtime{
		ID:        id,
		Type:      def,
		Behavior:  b,
		tickStamp: Unstamped,
		drawStamp: Unstamped,
	}
	for i, in := range def.Inputs {
		p := newPlug(r, Input, i, in.Name, in.Type)
		p.defaultText = in.Default
		if err := p.ResetLiteral(); err != nil {
			return nil, fmt.Errorf("node type %q input %q default: %w", def.Name, in.Name, err)
		}
		r.Inputs = append(r.Inputs, p)
	}
	for i, out := range def.Outputs {
		r.Outputs = append(r.Outputs, newPlug(r, Output, i, out.Name, out.Type))
	}
	return r, nil
}

// Attach installs the graph handles. It must be called before the runtime
// is wired or ticked.
func (r *Runtime) Attach(clock *Clock, host Host, res Resources) {
	r.clock = clock
	r.host = host
	r.resources = res
}

// Clock returns the installed traversal clock.
func (r *Runtime) Clock() *Clock {
	return r.clock
}

// Resources returns the installed resource cache, or nil.
func (r *Runtime) Resources() Resources {
	return r.resources
}

// Input returns the input plug with the given name, or nil.
func (r *Runtime) Input(name string) *Plug {
	for _, p := range r.Inputs {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Output returns the output plug with the given name, or nil.
func (r *Runtime) Output(name string) *Plug {
	for _, p := range r.Outputs {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// StampTick marks the runtime visited by tick traversal id and reports
// whether it had not been visited by that traversal yet.
func (r *Runtime) StampTick(id uint64) bool {
	if r.tickStamp == id {
		return false
	}
	r.tickStamp = id
	return true
}

// StampDraw is StampTick for draw traversals.
func (r *Runtime) StampDraw(id uint64) bool {
	if r.drawStamp == id {
		return false
	}
	r.drawStamp = id
	return true
}

// TickStamp returns the id of the last tick traversal that visited the
// runtime, or Unstamped.
func (r *Runtime) TickStamp() uint64 {
	return r.tickStamp
}

// DrawStamp returns the id of the last draw traversal that visited the
// runtime, or Unstamped.
func (r *Runtime) DrawStamp() uint64 {
	return r.drawStamp
}

// Trigger fires a trigger output. The output is stamped with the current
// tick id, then every subscriber handles the trigger before Trigger
// returns.
func (r *Runtime) Trigger(ctx context.Context, output int) {
	if output < 0 || output >= len(r.Outputs) {
		ctxlog.FromContext(ctx).Error("Trigger on missing output.", "node_id", r.ID, "output", output)
		return
	}
	p := r.Outputs[output]
	p.triggerStamp = r.clock.tick()
	p.triggered = true
	if r.host != nil {
		r.host.Fire(ctx, r.ID, output)
	}
}

// Tick runs one simulation step. A passthrough runtime copies each input to
// the output at the same index instead of running its behavior.
func (r *Runtime) Tick(ctx context.Context, f Frame) {
	if r.Passthrough {
		r.passthrough()
		return
	}
	if r.Behavior != nil {
		r.Behavior.Tick(ctx, f, r)
	}
}

// Draw runs the draw step for behaviors that have one.
func (r *Runtime) Draw(ctx context.Context, f Frame) {
	if d, ok := r.Behavior.(Drawer); ok && !r.Passthrough {
		d.Draw(ctx, f, r)
	}
}

// HandleTrigger forwards a delivered trigger to the behavior.
func (r *Runtime) HandleTrigger(ctx context.Context, input int) {
	if h, ok := r.Behavior.(TriggerHandler); ok {
		h.HandleTrigger(ctx, r, input)
	}
}

func (r *Runtime) passthrough() {
	for i, out := range r.Outputs {
		if i >= len(r.Inputs) {
			return
		}
		in := r.Inputs[i]
		if in.Type() != out.declared || out.declared == typelib.TypeTrigger {
			continue
		}
		v := *in.Value()
		v.Type = out.declared
		out.own = v
	}
}

// Destroy runs the behavior's teardown and releases every plug's storage.
func (r *Runtime) Destroy(ctx context.Context) {
	if r.Behavior != nil {
		r.Behavior.Destroy(ctx, r)
	}
	for _, p := range r.Inputs {
		p.release()
	}
	for _, p := range r.Outputs {
		p.release()
	}
}
