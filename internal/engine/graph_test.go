package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/specialistvlad/livegraph/internal/node"
	"github.com/specialistvlad/livegraph/internal/registry"
	"github.com/specialistvlad/livegraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type presented struct {
	values []string
}

func (p *presented) Present(_ context.Context, v *node.Value) {
	s, _ := v.Format()
	p.values = append(p.values, s)
}

type fixture struct {
	ctx     context.Context
	logs    *testutil.SafeBuffer
	journal *testutil.Journal
	reg     *registry.Registry
	model   *graphmodel.Model
	t       *testing.T
}

func newFixture(t *testing.T) *fixture {
	ctx, logs := testutil.Context(t)
	journal := &testutil.Journal{}
	reg := testutil.Registry(t, &testutil.NodesModule{Journal: journal})
	return &fixture{ctx: ctx, logs: logs, journal: journal, reg: reg, model: graphmodel.New(reg.Library()), t: t}
}

func (f *fixture) node(typeName string) graphmodel.NodeID {
	f.t.Helper()
	n, err := f.model.AddNode(f.ctx, typeName)
	require.NoError(f.t, err)
	return n.ID
}

func (f *fixture) link(out graphmodel.NodeID, outSocket string, in graphmodel.NodeID, inSocket string) *graphmodel.Link {
	f.t.Helper()
	l, err := f.model.AddLink(f.ctx, graphmodel.LinkSpec{OutputNode: out, OutputSocket: outSocket, InputNode: in, InputSocket: inSocket}, true)
	require.NoError(f.t, err)
	return l
}

func (f *fixture) construct() *Graph {
	return Construct(f.ctx, f.model, f.reg, nil)
}

func TestGraph_SourceToDisplayScenario(t *testing.T) {
	f := newFixture(t)
	src := f.node("value")
	screen := f.node("screen")
	f.link(src, "out", screen, "in")
	require.NoError(t, f.model.SetLiteral(f.ctx, src, "in", "2"))

	g := f.construct()
	target := &presented{}
	g.SetTarget(target)
	assert.Equal(t, []string{"init 1", "init 2"}, f.journal.Events())

	display, ok := g.Display()
	require.True(t, ok)
	assert.Equal(t, screen, display)
	assert.Equal(t, []graphmodel.NodeID{src}, g.Predecessors(screen))

	g.Tick(f.ctx, 1.0/60)
	assert.Equal(t, []string{"tick 1", "tick 2"}, f.journal.Events())
	assert.Equal(t, uint64(1), g.TickID())

	g.Draw(f.ctx)
	assert.Equal(t, []string{"draw 1", "draw 2"}, f.journal.Events())
	assert.Equal(t, []string{"2"}, target.values)
	assert.Equal(t, uint64(1), g.DrawID())

	rt, ok := g.Node(screen)
	require.True(t, ok)
	assert.Equal(t, uint64(0), rt.TickStamp())
	assert.Equal(t, uint64(0), rt.DrawStamp())
}

func TestGraph_IslandsTickInIDOrderAfterDisplayTree(t *testing.T) {
	f := newFixture(t)
	islandA := f.node("value")
	islandB := f.node("value")
	src := f.node("value")
	screen := f.node("screen")
	f.link(src, "out", screen, "in")
	f.link(islandB, "out", islandA, "in")

	g := f.construct()
	f.journal.Events()

	g.Tick(f.ctx, 0)
	assert.Equal(t, []string{
		"tick 3", "tick 4",
		"tick 2", "tick 1",
	}, f.journal.Events())

	g.Draw(f.ctx)
	assert.Equal(t, []string{"draw 3", "draw 4"}, f.journal.Events(), "islands are never drawn")

	for _, id := range g.NodeIDs() {
		rt, _ := g.Node(id)
		assert.Equal(t, uint64(0), rt.TickStamp(), "node %d ticked", id)
	}
}

func TestGraph_CyclesVisitEachNodeOnce(t *testing.T) {
	f := newFixture(t)
	a := f.node("value")
	b := f.node("value")
	f.link(a, "out", b, "in")
	f.link(b, "out", a, "in")

	g := f.construct()
	f.journal.Events()

	for range 3 {
		g.Tick(f.ctx, 0)
		assert.Equal(t, []string{"tick 2", "tick 1"}, f.journal.Events())
	}
	assert.Equal(t, uint64(3), g.TickID())
}

func TestGraph_NoDisplayDrawsNothing(t *testing.T) {
	f := newFixture(t)
	f.node("value")
	g := f.construct()
	f.journal.Events()

	g.Draw(f.ctx)
	assert.Empty(t, f.journal.Events())
	assert.Equal(t, uint64(1), g.DrawID())
}

func TestGraph_ConstructionFailureLeavesTombstone(t *testing.T) {
	f := newFixture(t)
	missing := f.node("does_not_exist")
	screen := f.node("screen")
	l := f.link(missing, "out", screen, "in")

	g := f.construct()
	assert.True(t, g.Failed(missing))
	_, ok := g.Node(missing)
	assert.False(t, ok)
	in, out := g.SocketCounts(missing)
	assert.Zero(t, in)
	assert.Zero(t, out)
	assert.False(t, g.Wired(l.ID))
	assert.Contains(t, f.logs.String(), "Node construction failed")

	g.Tick(f.ctx, 0)
	assert.Contains(t, f.journal.Events(), "tick 2")

	g.RemoveNode(f.ctx, missing)
	assert.False(t, g.Failed(missing))
}

type failingInit struct{ node.Base }

func (failingInit) Init(context.Context, *node.Runtime) error { return errors.New("boom") }

func TestGraph_InitFailureKeepsNode(t *testing.T) {
	ctx, logs := testutil.Context(t)
	reg := testutil.Registry(t, &testutil.SimpleModule{
		Manifest: `
node_type "fragile" {
  output "out" {
    type = float
  }
}`,
		Behaviors: map[string]registry.Constructor{
			"fragile": func() node.Behavior { return &failingInit{} },
		},
	})
	m := graphmodel.New(reg.Library())
	n, err := m.AddNode(ctx, "fragile")
	require.NoError(t, err)

	g := Construct(ctx, m, reg, nil)
	_, ok := g.Node(n.ID)
	assert.True(t, ok)
	assert.False(t, g.Failed(n.ID))
	assert.Contains(t, logs.String(), "Node initialization failed")
	assert.NotPanics(t, func() { g.Tick(ctx, 0) })
}

func TestGraph_TypeMismatchIsNotWired(t *testing.T) {
	f := newFixture(t)
	txt := f.node("text")
	val := f.node("value")
	l := f.link(txt, "out", val, "in")

	g := f.construct()
	assert.False(t, g.Wired(l.ID))
	assert.Empty(t, g.Predecessors(val))
	assert.Contains(t, f.logs.String(), "socket type mismatch")
}

func TestGraph_DisabledElementsAreSkipped(t *testing.T) {
	f := newFixture(t)
	a := f.node("value")
	b := f.node("value")
	l, err := f.model.AddLink(f.ctx, graphmodel.LinkSpec{OutputNode: a, OutputSocket: "out", InputNode: b, InputSocket: "in", Disabled: true}, false)
	require.NoError(t, err)
	n, _ := f.model.Node(a)
	n.Enabled = false

	g := f.construct()
	_, ok := g.Node(a)
	assert.False(t, ok)
	assert.False(t, g.Failed(a))
	assert.False(t, g.Wired(l.ID))
}

func TestGraph_TriggerDelivery(t *testing.T) {
	f := newFixture(t)
	em := f.node("emitter")
	li := f.node("listener")
	l := f.link(em, "fire", li, "on")

	g := f.construct()
	f.journal.Events()
	assert.Equal(t, []Subscription{{Node: li, Input: 0}}, g.Subscribers(em, 0))

	g.Tick(f.ctx, 0)
	assert.Equal(t, []string{"fire 1", "trigger 2 input 0"}, f.journal.Events())
	rt, _ := g.Node(li)
	assert.Equal(t, 1.0, rt.Outputs[0].Float())

	require.NoError(t, g.Disconnect(f.ctx, l))
	assert.Empty(t, g.Subscribers(em, 0))
	g.Tick(f.ctx, 0)
	assert.Equal(t, []string{"fire 1"}, f.journal.Events())
}

func TestGraph_DisconnectRevertsToLiteral(t *testing.T) {
	f := newFixture(t)
	src := f.node("value")
	dst := f.node("value")
	l := f.link(src, "out", dst, "in")
	require.NoError(t, f.model.SetLiteral(f.ctx, src, "in", "5"))
	require.NoError(t, f.model.SetLiteral(f.ctx, dst, "in", "1"))

	g := f.construct()
	g.Tick(f.ctx, 0)
	rt, _ := g.Node(dst)
	assert.Equal(t, 5.0, rt.Input("in").Float())

	require.NoError(t, g.Disconnect(f.ctx, l))
	assert.Equal(t, 1.0, rt.Input("in").Float())
	assert.Empty(t, g.Predecessors(dst))

	require.NoError(t, g.Disconnect(f.ctx, l), "unwiring twice is a no-op")
}

func TestGraph_LinkParameterRemapsElement(t *testing.T) {
	f := newFixture(t)
	src := f.node("value")
	dst := f.node("value")
	l := f.link(src, "out", dst, "in")
	require.NoError(t, f.model.SetLiteral(f.ctx, src, "in", "0.5"))

	g := f.construct()
	g.Tick(f.ctx, 0)
	rt, _ := g.Node(dst)
	assert.Equal(t, 0.5, rt.Input("in").Float())

	require.NoError(t, g.SetLinkParameter(f.ctx, l, node.ParamOutMax, "4"))
	assert.Equal(t, 2.0, rt.Input("in").Float())

	require.NoError(t, g.SetLinkParameter(f.ctx, l, "label", "ignored"))
	require.NoError(t, g.ClearLinkParameter(f.ctx, l, node.ParamOutMax))
	assert.Equal(t, 0.5, rt.Input("in").Float())
}

func TestGraph_Destroy(t *testing.T) {
	f := newFixture(t)
	a := f.node("value")
	screen := f.node("screen")
	f.link(a, "out", screen, "in")

	g := f.construct()
	f.journal.Events()

	g.Destroy(f.ctx)
	assert.Equal(t, []string{"destroy 1", "destroy 2"}, f.journal.Events())
	assert.Zero(t, g.Len())
	_, ok := g.Display()
	assert.False(t, ok)
	assert.Empty(t, g.Snapshot().Wired)
}

func TestGraph_RemoveNodeWithWiredLinksIsLogged(t *testing.T) {
	f := newFixture(t)
	a := f.node("value")
	b := f.node("value")
	f.link(a, "out", b, "in")

	g := f.construct()
	g.RemoveNode(f.ctx, a)
	assert.Contains(t, f.logs.String(), "Removing a node whose links are still wired")
	_, ok := g.Node(a)
	assert.False(t, ok)
}

func TestGraph_LowestDisplayIDIsPresented(t *testing.T) {
	f := newFixture(t)
	src := f.node("value")
	first := f.node("screen")
	second := f.node("screen")
	l := f.link(src, "out", first, "in")
	f.link(src, "out", second, "in")
	require.NoError(t, f.model.SetLiteral(f.ctx, src, "in", "3"))

	g := f.construct()
	target := &presented{}
	g.SetTarget(target)
	display, ok := g.Display()
	require.True(t, ok)
	assert.Equal(t, first, display)
	assert.Contains(t, f.logs.String(), "more than one display node")

	require.NoError(t, g.Disconnect(f.ctx, l))
	g.RemoveNode(f.ctx, first)
	display, ok = g.Display()
	require.True(t, ok, "the remaining screen takes over")
	assert.Equal(t, second, display)

	g.Tick(f.ctx, 0)
	g.Draw(f.ctx)
	assert.Equal(t, []string{"3"}, target.values)

	third := f.node("screen")
	n, _ := f.model.Node(third)
	require.NoError(t, g.AddNode(f.ctx, n))
	display, _ = g.Display()
	assert.Equal(t, second, display, "a later screen does not steal the display")

	g.RemoveNode(f.ctx, second)
	display, ok = g.Display()
	require.True(t, ok)
	assert.Equal(t, third, display)
}

func TestGraph_RejectedLiteralResetsToDefault(t *testing.T) {
	f := newFixture(t)
	id := f.node("value")
	g := f.construct()
	rt, _ := g.Node(id)

	require.NoError(t, g.ApplyLiteral(f.ctx, id, "in", "2"))
	assert.Equal(t, 2.0, rt.Input("in").Float())

	require.Error(t, g.ApplyLiteral(f.ctx, id, "in", "abc"))
	assert.Equal(t, 0.0, rt.Input("in").Float(), "same value a rebuild would hold")
	assert.Contains(t, f.logs.String(), "Literal rejected")
}

func TestGraph_RejectedLinkParameterClearsField(t *testing.T) {
	f := newFixture(t)
	src := f.node("value")
	dst := f.node("value")
	l := f.link(src, "out", dst, "in")
	require.NoError(t, f.model.SetLiteral(f.ctx, src, "in", "0.5"))

	g := f.construct()
	rt, _ := g.Node(dst)
	require.NoError(t, g.SetLinkParameter(f.ctx, l, node.ParamOutMax, "4"))
	g.Tick(f.ctx, 0)
	assert.Equal(t, 2.0, rt.Input("in").Float())

	require.Error(t, g.SetLinkParameter(f.ctx, l, node.ParamOutMax, "NaN"))
	assert.Equal(t, 0.5, rt.Input("in").Float())
}
