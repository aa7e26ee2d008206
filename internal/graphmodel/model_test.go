package graphmodel

import (
	"context"
	"fmt"
	"testing"

	"github.com/specialistvlad/livegraph/internal/typelib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Listener that records every notification in order, along
// with whether the element was still in the model when it was notified.
type recorder struct {
	m      *Model
	events []string
}

func (r *recorder) NodeAdd(_ context.Context, n *Node) {
	r.events = append(r.events, fmt.Sprintf("node_add %d", n.ID))
}

func (r *recorder) NodeRemove(_ context.Context, n *Node) {
	_, present := r.m.Node(n.ID)
	r.events = append(r.events, fmt.Sprintf("node_remove %d present=%t links=%d", n.ID, present, len(r.m.LinksTouching(n.ID))))
}

func (r *recorder) LinkAdd(_ context.Context, l *Link) {
	r.events = append(r.events, fmt.Sprintf("link_add %d", l.ID))
}

func (r *recorder) LinkRemove(_ context.Context, l *Link) {
	_, present := r.m.Link(l.ID)
	r.events = append(r.events, fmt.Sprintf("link_remove %d present=%t", l.ID, present))
}

func (r *recorder) LiteralSet(_ context.Context, n *Node, socket, value string) {
	r.events = append(r.events, fmt.Sprintf("literal_set %d %s=%s", n.ID, socket, value))
}

func (r *recorder) LiteralClear(_ context.Context, n *Node, socket string) {
	r.events = append(r.events, fmt.Sprintf("literal_clear %d %s", n.ID, socket))
}

func (r *recorder) LinkParamSet(_ context.Context, l *Link, name, value string) {
	r.events = append(r.events, fmt.Sprintf("param_set %d %s=%s", l.ID, name, value))
}

func (r *recorder) LinkParamClear(_ context.Context, l *Link, name string) {
	r.events = append(r.events, fmt.Sprintf("param_clear %d %s", l.ID, name))
}

func testLibrary(t *testing.T) *typelib.Library {
	t.Helper()
	lib := typelib.New()
	require.NoError(t, lib.Register(&typelib.NodeType{
		Name:    "source",
		Outputs: []typelib.OutputSocket{{Name: "out", Type: typelib.TypeFloat}},
	}))
	require.NoError(t, lib.Register(&typelib.NodeType{
		Name: "sink",
		Inputs: []typelib.InputSocket{
			{Name: "sum", Type: typelib.TypeFloat, Default: "0", MultiInput: true},
			{Name: "single", Type: typelib.TypeFloat, Default: "0"},
		},
		Display: true,
	}))
	return lib
}

func newRecordedModel(t *testing.T) (*Model, *recorder) {
	t.Helper()
	m := New(testLibrary(t))
	rec := &recorder{m: m}
	m.SetListener(rec)
	return m, rec
}

func TestModel_IDsAreNeverReused(t *testing.T) {
	ctx := context.Background()
	m := New(testLibrary(t))

	a, err := m.AddNode(ctx, "source")
	require.NoError(t, err)
	b, err := m.AddNode(ctx, "sink")
	require.NoError(t, err)
	require.NoError(t, m.RemoveNode(ctx, b.ID))

	c, err := m.AddNode(ctx, "sink")
	require.NoError(t, err)
	assert.Equal(t, NodeID(1), a.ID)
	assert.Equal(t, NodeID(3), c.ID)
}

func TestModel_AddLinkRejectsDanglingEndpoints(t *testing.T) {
	ctx := context.Background()
	m := New(testLibrary(t))
	a, err := m.AddNode(ctx, "source")
	require.NoError(t, err)

	_, err = m.AddLink(ctx, LinkSpec{OutputNode: a.ID, OutputSocket: "out", InputNode: 42, InputSocket: "sum"}, false)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Empty(t, m.Links())
}

func TestModel_AddLinkResolvesIndices(t *testing.T) {
	ctx := context.Background()
	m := New(testLibrary(t))
	a, _ := m.AddNode(ctx, "source")
	b, _ := m.AddNode(ctx, "sink")

	l, err := m.AddLink(ctx, LinkSpec{OutputNode: a.ID, OutputSocket: "out", InputNode: b.ID, InputSocket: "single"}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, l.OutputIndex)
	assert.Equal(t, 1, l.InputIndex)
	assert.True(t, l.Resolved())

	bad, err := m.AddLink(ctx, LinkSpec{OutputNode: a.ID, OutputSocket: "nope", InputNode: b.ID, InputSocket: "sum"}, false)
	require.NoError(t, err, "an unresolved socket is reported, not fatal")
	assert.Equal(t, -1, bad.OutputIndex)
	assert.False(t, bad.Resolved())
}

func TestModel_RemoveNodeCascadesLinksFirst(t *testing.T) {
	ctx := context.Background()
	m, rec := newRecordedModel(t)

	a, _ := m.AddNode(ctx, "source")
	b, _ := m.AddNode(ctx, "sink")
	_, err := m.AddLink(ctx, LinkSpec{OutputNode: a.ID, OutputSocket: "out", InputNode: b.ID, InputSocket: "sum"}, false)
	require.NoError(t, err)
	_, err = m.AddLink(ctx, LinkSpec{OutputNode: a.ID, OutputSocket: "out", InputNode: b.ID, InputSocket: "single"}, false)
	require.NoError(t, err)

	rec.events = nil
	require.NoError(t, m.RemoveNode(ctx, a.ID))

	assert.Equal(t, []string{
		"link_remove 1 present=true",
		"link_remove 2 present=true",
		"node_remove 1 present=true links=0",
	}, rec.events)
	assert.Empty(t, m.Links())
	_, ok := m.Node(a.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, m.RemoveNode(ctx, a.ID), ErrNodeNotFound)
	assert.ErrorIs(t, m.RemoveLink(ctx, 1), ErrLinkNotFound)
}

func TestModel_ClearInputDuplicates(t *testing.T) {
	ctx := context.Background()

	t.Run("single input replaces the existing driver before adding", func(t *testing.T) {
		m, rec := newRecordedModel(t)
		a, _ := m.AddNode(ctx, "source")
		c, _ := m.AddNode(ctx, "source")
		b, _ := m.AddNode(ctx, "sink")

		_, err := m.AddLink(ctx, LinkSpec{OutputNode: a.ID, OutputSocket: "out", InputNode: b.ID, InputSocket: "single"}, true)
		require.NoError(t, err)
		rec.events = nil

		l, err := m.AddLink(ctx, LinkSpec{OutputNode: c.ID, OutputSocket: "out", InputNode: b.ID, InputSocket: "single"}, true)
		require.NoError(t, err)

		assert.Equal(t, []string{"link_remove 1 present=true", "link_add 2"}, rec.events)
		require.Len(t, m.LinksInto(b.ID, "single"), 1)
		assert.Equal(t, l.ID, m.LinksInto(b.ID, "single")[0].ID)
	})

	t.Run("multi input keeps every driver", func(t *testing.T) {
		m := New(testLibrary(t))
		a, _ := m.AddNode(ctx, "source")
		c, _ := m.AddNode(ctx, "source")
		b, _ := m.AddNode(ctx, "sink")

		_, err := m.AddLink(ctx, LinkSpec{OutputNode: a.ID, OutputSocket: "out", InputNode: b.ID, InputSocket: "sum"}, true)
		require.NoError(t, err)
		_, err = m.AddLink(ctx, LinkSpec{OutputNode: c.ID, OutputSocket: "out", InputNode: b.ID, InputSocket: "sum"}, true)
		require.NoError(t, err)
		assert.Len(t, m.LinksInto(b.ID, "sum"), 2)
	})

	t.Run("without the flag duplicates are kept", func(t *testing.T) {
		m := New(testLibrary(t))
		a, _ := m.AddNode(ctx, "source")
		b, _ := m.AddNode(ctx, "sink")

		for range 2 {
			_, err := m.AddLink(ctx, LinkSpec{OutputNode: a.ID, OutputSocket: "out", InputNode: b.ID, InputSocket: "single"}, false)
			require.NoError(t, err)
		}
		assert.Len(t, m.LinksInto(b.ID, "single"), 2)
	})
}

func TestModel_LiteralsAndParamsNotify(t *testing.T) {
	ctx := context.Background()
	m, rec := newRecordedModel(t)
	a, _ := m.AddNode(ctx, "source")
	b, _ := m.AddNode(ctx, "sink")
	l, err := m.AddLink(ctx, LinkSpec{OutputNode: a.ID, OutputSocket: "out", InputNode: b.ID, InputSocket: "sum"}, false)
	require.NoError(t, err)
	rec.events = nil

	require.NoError(t, m.SetLiteral(ctx, b.ID, "single", "0.5"))
	require.NoError(t, m.ClearLiteral(ctx, b.ID, "single"))
	require.NoError(t, m.ClearLiteral(ctx, b.ID, "single"))
	require.NoError(t, m.SetLinkParam(ctx, l.ID, "out_max", "10"))
	require.NoError(t, m.ClearLinkParam(ctx, l.ID, "out_max"))

	assert.Equal(t, []string{
		"literal_set 2 single=0.5",
		"literal_clear 2 single",
		"param_set 1 out_max=10",
		"param_clear 1 out_max",
	}, rec.events)

	assert.ErrorIs(t, m.SetLiteral(ctx, 99, "x", "1"), ErrNodeNotFound)
	assert.ErrorIs(t, m.SetLinkParam(ctx, 99, "x", "1"), ErrLinkNotFound)
}

func TestModel_ResourceValue(t *testing.T) {
	ctx := context.Background()
	m := New(testLibrary(t))
	a, _ := m.AddNode(ctx, "source")

	require.NoError(t, m.SetResourceValue(a.ID, "table", []float32{1, 2, 3}))
	blob, ok := m.Resource(a.ID, "table")
	assert.True(t, ok)
	assert.NotEmpty(t, blob)

	_, ok = m.Resource(a.ID, "missing")
	assert.False(t, ok)
	assert.ErrorIs(t, m.SetResource(77, "x", nil), ErrNodeNotFound)
}
