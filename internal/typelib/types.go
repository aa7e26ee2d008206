package typelib

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ValueType is the declared type of a socket.
type ValueType int

const (
	// TypeAny is the wildcard type. An input of this type adopts the type
	// and the memory of whatever output drives it.
	TypeAny ValueType = iota
	TypeFloat
	TypeInt
	TypeBool
	TypeColor
	TypeString
	TypeEnum
	TypeImage
	TypeTexture
	TypeChannels
	TypeTrigger
)

var typeNames = map[ValueType]string{
	TypeAny:      "any",
	TypeFloat:    "float",
	TypeInt:      "int",
	TypeBool:     "bool",
	TypeColor:    "color",
	TypeString:   "string",
	TypeEnum:     "enum",
	TypeImage:    "image",
	TypeTexture:  "texture",
	TypeChannels: "channels",
	TypeTrigger:  "trigger",
}

// String returns the keyword used for the type in manifests.
func (t ValueType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// ParseValueType resolves a manifest keyword such as "float" to its type.
func ParseValueType(name string) (ValueType, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return TypeAny, fmt.Errorf("unknown socket type %q", name)
}

// Validated reports whether connections to a socket of this type require an
// exact type match. Only the wildcard type skips validation.
func (t ValueType) Validated() bool {
	return t != TypeAny
}

// TextSettable reports whether values of this type round-trip through the
// canonical text encoding.
func (t ValueType) TextSettable() bool {
	switch t {
	case TypeFloat, TypeInt, TypeBool, TypeColor, TypeString, TypeEnum:
		return true
	default:
		return false
	}
}

// CtyType returns the cty type a literal of this socket type is converted
// to when it is read from a manifest. Types without a literal form map to
// cty.DynamicPseudoType.
func (t ValueType) CtyType() cty.Type {
	switch t {
	case TypeFloat, TypeInt:
		return cty.Number
	case TypeBool:
		return cty.Bool
	case TypeColor, TypeString, TypeEnum:
		return cty.String
	default:
		return cty.DynamicPseudoType
	}
}

// Compatible reports whether an output of type out may drive an input of
// type in.
func Compatible(in, out ValueType) bool {
	if !in.Validated() {
		return true
	}
	return in == out
}
