package typelib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func mixerType() *NodeType {
	return &NodeType{
		Name: "mixer",
		Inputs: []InputSocket{
			{Name: "a", Type: TypeFloat, Default: "0", MultiInput: true},
			{Name: "label", Type: TypeString},
		},
		Outputs: []OutputSocket{{Name: "out", Type: TypeFloat}},
	}
}

func TestParseValueType(t *testing.T) {
	for vt, name := range typeNames {
		t.Run(name, func(t *testing.T) {
			got, err := ParseValueType(name)
			require.NoError(t, err)
			assert.Equal(t, vt, got)
			assert.Equal(t, name, got.String())
		})
	}

	_, err := ParseValueType("quaternion")
	assert.ErrorContains(t, err, "unknown socket type")
}

func TestCompatible(t *testing.T) {
	assert.True(t, Compatible(TypeFloat, TypeFloat))
	assert.False(t, Compatible(TypeFloat, TypeInt))
	assert.True(t, Compatible(TypeAny, TypeImage))
	assert.False(t, Compatible(TypeTrigger, TypeFloat))
}

func TestValueType_CtyType(t *testing.T) {
	assert.Equal(t, cty.Number, TypeFloat.CtyType())
	assert.Equal(t, cty.Bool, TypeBool.CtyType())
	assert.Equal(t, cty.String, TypeColor.CtyType())
	assert.Equal(t, cty.DynamicPseudoType, TypeTexture.CtyType())
}

func TestLibrary_RegisterAndResolve(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Register(mixerType()))

	err := lib.Register(mixerType())
	assert.ErrorIs(t, err, ErrDuplicateType)

	assert.Equal(t, 0, lib.InputIndex("mixer", "a"))
	assert.Equal(t, 1, lib.InputIndex("mixer", "label"))
	assert.Equal(t, -1, lib.InputIndex("mixer", "b"))
	assert.Equal(t, -1, lib.InputIndex("nope", "a"))
	assert.Equal(t, 0, lib.OutputIndex("mixer", "out"))
	assert.True(t, lib.AcceptsMultiple("mixer", "a"))
	assert.False(t, lib.AcceptsMultiple("mixer", "label"))
	assert.Equal(t, []string{"mixer"}, lib.Names())
}

func TestLibrary_RegisterRejectsInvalidTypes(t *testing.T) {
	testCases := []struct {
		name string
		def  *NodeType
		want string
	}{
		{
			name: "missing name",
			def:  &NodeType{},
			want: "has no name",
		},
		{
			name: "duplicate input",
			def: &NodeType{Name: "x", Inputs: []InputSocket{
				{Name: "a", Type: TypeFloat}, {Name: "a", Type: TypeInt},
			}},
			want: "duplicate input",
		},
		{
			name: "multi input on string",
			def: &NodeType{Name: "x", Inputs: []InputSocket{
				{Name: "a", Type: TypeString, MultiInput: true},
			}},
			want: "cannot accept multiple drivers",
		},
		{
			name: "wildcard output",
			def:  &NodeType{Name: "x", Outputs: []OutputSocket{{Name: "o", Type: TypeAny}}},
			want: "cannot be of type any",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := New().Register(tc.def)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLibrary_DisplayTypes(t *testing.T) {
	lib := New()
	require.NoError(t, lib.Register(mixerType()))
	require.NoError(t, lib.Register(&NodeType{Name: "screen", Display: true}))
	assert.Equal(t, []string{"screen"}, lib.DisplayTypes())
}
