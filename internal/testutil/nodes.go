package testutil

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/specialistvlad/livegraph/internal/node"
	"github.com/specialistvlad/livegraph/internal/registry"
)

//go:embed nodes.hcl
var nodesManifest []byte

// Journal records behavior calls in order.
type Journal struct {
	mu     sync.Mutex
	events []string
}

// Add appends one event.
func (j *Journal) Add(format string, args ...any) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, fmt.Sprintf(format, args...))
}

// Events returns the recorded events and clears the journal.
func (j *Journal) Events() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := j.events
	j.events = nil
	return out
}

// NodesModule registers the test node types: value, text, screen (the
// display), emitter and listener. Every call is recorded in Journal when it
// is set.
type NodesModule struct {
	Journal *Journal
}

// Register implements the registry.Module interface.
func (m *NodesModule) Register(r *registry.Registry) {
	r.RegisterManifest("nodes.hcl", nodesManifest)
	r.RegisterBehavior("value", func() node.Behavior { return &valueNode{journaled{m.Journal}} })
	r.RegisterBehavior("text", func() node.Behavior { return &textNode{j: m.Journal} })
	r.RegisterBehavior("screen", func() node.Behavior { return &screenNode{journaled{m.Journal}} })
	r.RegisterBehavior("emitter", func() node.Behavior { return &emitterNode{j: m.Journal} })
	r.RegisterBehavior("listener", func() node.Behavior { return &listenerNode{j: m.Journal} })
}

type journaled struct {
	j *Journal
}

func (b journaled) Init(_ context.Context, n *node.Runtime) error {
	b.j.Add("init %d", n.ID)
	return nil
}

func (b journaled) Tick(_ context.Context, _ node.Frame, n *node.Runtime) {
	b.j.Add("tick %d", n.ID)
}

func (b journaled) Draw(_ context.Context, _ node.Frame, n *node.Runtime) {
	b.j.Add("draw %d", n.ID)
}

func (b journaled) Destroy(_ context.Context, n *node.Runtime) {
	b.j.Add("destroy %d", n.ID)
}

type valueNode struct{ journaled }

func (v *valueNode) Tick(ctx context.Context, f node.Frame, n *node.Runtime) {
	v.journaled.Tick(ctx, f, n)
	n.Outputs[0].SetFloat(n.Inputs[0].Float())
}

type textNode struct {
	node.Base
	j *Journal
}

func (t *textNode) Tick(_ context.Context, _ node.Frame, n *node.Runtime) {
	t.j.Add("tick %d", n.ID)
	n.Outputs[0].SetText(n.Inputs[0].Text())
}

type screenNode struct{ journaled }

func (s *screenNode) Tick(ctx context.Context, f node.Frame, n *node.Runtime) {
	s.journaled.Tick(ctx, f, n)
	n.Inputs[0].Touch()
}

type emitterNode struct {
	node.Base
	j *Journal
}

func (e *emitterNode) Tick(ctx context.Context, _ node.Frame, n *node.Runtime) {
	e.j.Add("fire %d", n.ID)
	n.Trigger(ctx, 0)
}

type listenerNode struct {
	node.Base
	j     *Journal
	count float64
}

func (l *listenerNode) HandleTrigger(_ context.Context, n *node.Runtime, input int) {
	l.count++
	l.j.Add("trigger %d input %d", n.ID, input)
	n.Outputs[0].SetFloat(l.count)
}
