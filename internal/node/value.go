package node

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/livegraph/internal/typelib"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ErrNotSettable is returned when text is written to a value whose type has
// no text form.
var ErrNotSettable = errors.New("value type is not settable from text")

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Image is a block of pixels handed between image and texture sockets.
type Image struct {
	Width, Height int
	Pix           []byte
}

// Value is the tagged storage behind a plug. Type selects which field is
// meaningful; Release dispatches on it.
type Value struct {
	Type     typelib.ValueType
	Float    float64
	Int      int64
	Bool     bool
	Text     string
	Color    Color
	Image    *Image
	Channels []float32
}

// NewValue returns the zero value of a type.
func NewValue(t typelib.ValueType) Value {
	return Value{Type: t}
}

// Release drops whatever the value references so the storage can be
// collected. Scalar values are simply reset.
func (v *Value) Release() {
	switch v.Type {
	case typelib.TypeImage, typelib.TypeTexture:
		v.Image = nil
	case typelib.TypeChannels:
		v.Channels = nil
	case typelib.TypeString, typelib.TypeEnum:
		v.Text = ""
	}
	t := v.Type
	*v = Value{Type: t}
}

// Format renders the value in its canonical text encoding. The boolean
// result is false for types without a round-trippable text form, in which
// case the text only reports availability.
func (v *Value) Format() (string, bool) {
	switch v.Type {
	case typelib.TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64), true
	case typelib.TypeInt:
		return strconv.FormatInt(v.Int, 10), true
	case typelib.TypeBool:
		if v.Bool {
			return "1", true
		}
		return "0", true
	case typelib.TypeColor:
		return fmt.Sprintf("#%02x%02x%02x%02x", v.Color.R, v.Color.G, v.Color.B, v.Color.A), true
	case typelib.TypeString, typelib.TypeEnum:
		return v.Text, true
	case typelib.TypeImage, typelib.TypeTexture:
		if v.Image == nil {
			return "[empty]", false
		}
		return fmt.Sprintf("[%d x %d]", v.Image.Width, v.Image.Height), false
	case typelib.TypeChannels:
		return fmt.Sprintf("[%d ch]", len(v.Channels)), false
	default:
		return "", false
	}
}

// Parse sets the value from its canonical text encoding.
func (v *Value) Parse(text string) error {
	switch v.Type {
	case typelib.TypeFloat:
		f, err := parseNumber[float64](text)
		if err != nil {
			return err
		}
		v.Float = f
	case typelib.TypeInt:
		i, err := parseNumber[int64](text)
		if err != nil {
			return err
		}
		v.Int = i
	case typelib.TypeBool:
		switch strings.TrimSpace(text) {
		case "1", "true":
			v.Bool = true
		case "0", "false", "":
			v.Bool = false
		default:
			return fmt.Errorf("invalid bool literal %q", text)
		}
	case typelib.TypeColor:
		c, err := parseColor(text)
		if err != nil {
			return err
		}
		v.Color = c
	case typelib.TypeString, typelib.TypeEnum:
		v.Text = text
	default:
		return fmt.Errorf("%w: %s", ErrNotSettable, v.Type)
	}
	return nil
}

// parseNumber converts decimal text through cty so the result does not
// depend on the process locale.
func parseNumber[T float64 | int64](text string) (T, error) {
	var out T
	num, err := convert.Convert(cty.StringVal(strings.TrimSpace(text)), cty.Number)
	if err != nil {
		return out, fmt.Errorf("invalid number literal %q: %w", text, err)
	}
	if err := gocty.FromCtyValue(num, &out); err != nil {
		return out, fmt.Errorf("number literal %q out of range: %w", text, err)
	}
	return out, nil
}

func parseColor(text string) (Color, error) {
	s := strings.TrimPrefix(strings.TrimSpace(text), "#")
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return Color{}, fmt.Errorf("invalid color literal %q: want #rrggbb or #rrggbbaa", text)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color literal %q: %w", text, err)
	}
	return Color{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}
