package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemap_Apply(t *testing.T) {
	var r Remap
	assert.False(t, r.Active())
	assert.Equal(t, 3.0, r.Apply(3))

	require.NoError(t, r.Set(ParamOutMax, "10"))
	assert.True(t, r.Active())
	assert.InDelta(t, 5.0, r.Apply(0.5), 1e-9)

	require.NoError(t, r.Set(ParamInMin, "-1"))
	assert.InDelta(t, 7.5, r.Apply(0.5), 1e-9)

	require.NoError(t, r.Clear(ParamInMin))
	require.NoError(t, r.Clear(ParamOutMax))
	assert.Equal(t, Remap{}, r, "a fully cleared remap equals a never-set one")
}

func TestRemap_EmptyInputRangeIsIdentity(t *testing.T) {
	var r Remap
	require.NoError(t, r.Set(ParamInMax, "0"))
	assert.Equal(t, 0.25, r.Apply(0.25))
}

func TestRemap_UnknownField(t *testing.T) {
	var r Remap
	assert.Error(t, r.Set("gain", "1"))
	assert.Error(t, r.Clear("gain"))
	assert.Error(t, r.Set(ParamInMin, "x"))
	assert.False(t, IsRemapParam("gain"))
	assert.True(t, IsRemapParam(ParamOutMin))
}

func TestRemapFromParams(t *testing.T) {
	r, err := RemapFromParams(map[string]string{ParamOutMin: "1", ParamOutMax: "3", "label": "x"})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, r.Apply(0.5), 1e-9)

	_, err = RemapFromParams(map[string]string{ParamInMax: "nope"})
	assert.ErrorContains(t, err, ParamInMax)
}

func TestRemap_RejectsNonFiniteText(t *testing.T) {
	var r Remap
	for _, text := range []string{"NaN", "nan", "Inf", "+Inf", "-inf", "Infinity", "1e400"} {
		assert.Error(t, r.Set(ParamOutMax, text), text)
	}
	assert.False(t, r.Active(), "rejected text leaves the field unset")

	require.NoError(t, r.Set(ParamOutMax, " 2.5 "))
	assert.InDelta(t, 1.25, r.Apply(0.5), 1e-9)
}
