package wavetable

import (
	"testing"

	"github.com/specialistvlad/livegraph/internal/engine"
	"github.com/specialistvlad/livegraph/internal/graphmodel"
	"github.com/specialistvlad/livegraph/internal/resourcecache"
	"github.com/specialistvlad/livegraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_At(t *testing.T) {
	table := &Table{Samples: []float32{0, 1, 0, -1}}

	assert.InDelta(t, 0.0, table.At(0), 1e-9)
	assert.InDelta(t, 1.0, table.At(0.25), 1e-9)
	assert.InDelta(t, 0.5, table.At(0.125), 1e-9)
	assert.InDelta(t, -0.5, table.At(0.875), 1e-9, "interpolates across the wrap point")
	assert.InDelta(t, 1.0, table.At(1.25), 1e-9)
	assert.InDelta(t, -1.0, table.At(-0.25), 1e-9)
	assert.Equal(t, 0.0, (&Table{}).At(0.3))
}

func TestWavetable_SharesStoredTable(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.Registry(t, &Module{})
	m := graphmodel.New(reg.Library())

	n, err := m.AddNode(ctx, "wavetable")
	require.NoError(t, err)
	require.NoError(t, m.SetResourceValue(n.ID, ResourceName, &Table{Samples: []float32{0, 4, 0, -4}}))
	require.NoError(t, m.SetLiteral(ctx, n.ID, "phase", "0.25"))
	require.NoError(t, m.SetLiteral(ctx, n.ID, "gain", "0.5"))

	cache := resourcecache.New(m)
	RegisterResources(cache)

	g := engine.Construct(ctx, m, reg, cache)
	key := resourcecache.Key{Node: n.ID, Type: ResourceType, Name: ResourceName}
	assert.Equal(t, 1, cache.Refs(key))

	// A second graph over the same model shares the decoded table.
	g2 := engine.Construct(ctx, m, reg, cache)
	assert.Equal(t, 2, cache.Refs(key))

	g.Tick(ctx, 0.01)
	rt, ok := g.Node(n.ID)
	require.True(t, ok)
	assert.InDelta(t, 2.0, rt.Outputs[0].Peek().Float, 1e-9)

	g.Destroy(ctx)
	assert.Equal(t, 1, cache.Refs(key))
	g2.Destroy(ctx)
	assert.Equal(t, 0, cache.Len())
}

func TestWavetable_DefaultTable(t *testing.T) {
	ctx, _ := testutil.Context(t)
	reg := testutil.Registry(t, &Module{})
	m := graphmodel.New(reg.Library())
	n, _ := m.AddNode(ctx, "wavetable")
	require.NoError(t, m.SetLiteral(ctx, n.ID, "phase", "0.25"))

	cache := resourcecache.New(m)
	RegisterResources(cache)
	g := engine.Construct(ctx, m, reg, cache)
	g.Tick(ctx, 0.01)

	rt, _ := g.Node(n.ID)
	assert.InDelta(t, 1.0, rt.Outputs[0].Peek().Float, 1e-6)
}

func TestWavetable_WithoutCacheOutputsZero(t *testing.T) {
	ctx, logs := testutil.Context(t)
	reg := testutil.Registry(t, &Module{})
	m := graphmodel.New(reg.Library())
	n, _ := m.AddNode(ctx, "wavetable")

	g := engine.Construct(ctx, m, reg, nil)
	g.Tick(ctx, 0.01)

	rt, _ := g.Node(n.ID)
	assert.Equal(t, 0.0, rt.Outputs[0].Peek().Float)
	assert.Contains(t, logs.String(), ErrNoResources.Error())
	g.Destroy(ctx)
}
