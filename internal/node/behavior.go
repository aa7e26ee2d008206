package node

import "context"

// Frame describes the traversal a behavior is called from.
type Frame struct {
	// ID is the tick or draw traversal id.
	ID uint64
	// DT is the simulated time since the previous frame, in seconds.
	DT float64
}

// Behavior is implemented by every concrete node type.
type Behavior interface {
	// Init runs once after the runtime is wired and its literals applied.
	Init(ctx context.Context, n *Runtime) error
	Tick(ctx context.Context, f Frame, n *Runtime)
	Destroy(ctx context.Context, n *Runtime)
}

// Drawer is implemented by behaviors that produce output during the draw
// traversal.
type Drawer interface {
	Draw(ctx context.Context, f Frame, n *Runtime)
}

// TriggerHandler is implemented by behaviors with trigger inputs.
type TriggerHandler interface {
	HandleTrigger(ctx context.Context, n *Runtime, input int)
}

// Base is an embeddable no-op Behavior.
type Base struct{}

func (Base) Init(context.Context, *Runtime) error  { return nil }
func (Base) Tick(context.Context, Frame, *Runtime) {}
func (Base) Destroy(context.Context, *Runtime)     {}
