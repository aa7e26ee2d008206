package node

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/livegraph/internal/typelib"
)

// LivenessWindow is the number of tick traversals a plug without a link
// stays referenced after it was last read.
const LivenessWindow = 60

var (
	// ErrTypeMismatch is returned when an output cannot drive an input.
	ErrTypeMismatch = errors.New("socket type mismatch")
	// ErrNotConnected is returned when disconnecting an output that does
	// not drive the input.
	ErrNotConnected = errors.New("output does not drive this input")
	// ErrDirection is returned when ConnectTo is called with the plug
	// directions swapped.
	ErrDirection = errors.New("connect requires an input and an output")
)

// Direction tells inputs and outputs apart.
type Direction int

const (
	Input Direction = iota
	Output
)

// element is one driver of an input. For float inputs the elements are
// summed; for any other type the most recently connected one wins.
type element struct {
	source *Value
	link   uint64
	remap  Remap
}

// Plug is one typed socket instance on a runtime.
type Plug struct {
	Name  string
	Index int
	Dir   Direction

	declared typelib.ValueType
	owner    *Runtime

	// own is the storage of an output, or the literal/default of an input.
	own Value
	// defaultText is the declared default restored by ResetLiteral.
	defaultText string

	elements []element
	agg      Value
	aggStamp uint64
	aggValid bool

	consumers int

	lastRead uint64
	wasRead  bool

	triggerStamp uint64
	triggered    bool
}

func newPlug(owner *Runtime, dir Direction, index int, name string, t typelib.ValueType) *Plug {
	return &Plug{
		Name:     name,
		Index:    index,
		Dir:      dir,
		declared: t,
		owner:    owner,
		own:      NewValue(t),
		agg:      NewValue(typelib.TypeFloat),
	}
}

// DeclaredType returns the type from the node's metadata.
func (p *Plug) DeclaredType() typelib.ValueType {
	return p.declared
}

// Type returns the effective type. A connected wildcard input reports the
// type of the output driving it.
func (p *Plug) Type() typelib.ValueType {
	if p.declared == typelib.TypeAny && len(p.elements) > 0 {
		return p.elements[len(p.elements)-1].source.Type
	}
	return p.declared
}

// Owner returns the runtime the plug belongs to.
func (p *Plug) Owner() *Runtime {
	return p.owner
}

// Drivers returns the number of outputs currently driving an input.
func (p *Plug) Drivers() int {
	return len(p.elements)
}

// IsConnected reports whether the plug has a structural link.
func (p *Plug) IsConnected() bool {
	if p.Dir == Output {
		return p.consumers > 0
	}
	return len(p.elements) > 0
}

// IsReferenced reports whether the plug is connected or was read within the
// last LivenessWindow tick traversals.
func (p *Plug) IsReferenced() bool {
	if p.IsConnected() {
		return true
	}
	if !p.wasRead {
		return false
	}
	now := p.owner.clock.tick()
	return now >= p.lastRead && now-p.lastRead < LivenessWindow
}

// Touch refreshes the liveness stamp without reading the value.
func (p *Plug) Touch() {
	p.lastRead = p.owner.clock.tick()
	p.wasRead = true
}

// ConnectTo makes out drive p. A wildcard input adopts out's type and
// memory. Any other input requires an exact type match; float inputs add an
// aggregation element per connection.
func (p *Plug) ConnectTo(out *Plug) error {
	return p.ConnectLink(out, 0, Remap{})
}

// ConnectLink is ConnectTo for an element tagged with a link id and given
// an initial remap. The remap only affects float inputs. Tag 0 means
// untagged.
func (p *Plug) ConnectLink(out *Plug, link uint64, r Remap) error {
	if p.Dir != Input || out.Dir != Output {
		return ErrDirection
	}
	if !typelib.Compatible(p.declared, out.declared) {
		return fmt.Errorf("%w: input %q is %s, output %q is %s", ErrTypeMismatch, p.Name, p.declared, out.Name, out.declared)
	}
	p.elements = append(p.elements, element{source: &out.own, link: link, remap: r})
	p.aggValid = false
	out.consumers++
	return nil
}

// Disconnect removes exactly one element driven by out. An input left
// without drivers reads its own storage again.
func (p *Plug) Disconnect(out *Plug) error {
	return p.DisconnectLink(out, 0)
}

// DisconnectLink removes the element driven by out with the given tag. Tag
// 0 matches any element driven by out.
func (p *Plug) DisconnectLink(out *Plug, link uint64) error {
	i, err := p.findElement(out, link)
	if err != nil {
		return err
	}
	p.elements = append(p.elements[:i], p.elements[i+1:]...)
	p.aggValid = false
	out.consumers--
	return nil
}

// findElement returns the index of the most recent element matching out
// and link.
func (p *Plug) findElement(out *Plug, link uint64) (int, error) {
	for i := len(p.elements) - 1; i >= 0; i-- {
		el := p.elements[i]
		if el.source == &out.own && (link == 0 || el.link == link) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: input %q, output %q", ErrNotConnected, p.Name, out.Name)
}

// SetRemapParam sets one remap field on the element driven by out.
func (p *Plug) SetRemapParam(out *Plug, link uint64, name, text string) error {
	i, err := p.findElement(out, link)
	if err != nil {
		return err
	}
	if err := p.elements[i].remap.Set(name, text); err != nil {
		return err
	}
	p.aggValid = false
	return nil
}

// ClearRemapParam unsets one remap field on the element driven by out.
func (p *Plug) ClearRemapParam(out *Plug, link uint64, name string) error {
	i, err := p.findElement(out, link)
	if err != nil {
		return err
	}
	if err := p.elements[i].remap.Clear(name); err != nil {
		return err
	}
	p.aggValid = false
	return nil
}

// RemapOf returns the remap of the element driven by out.
func (p *Plug) RemapOf(out *Plug, link uint64) (Remap, error) {
	i, err := p.findElement(out, link)
	if err != nil {
		return Remap{}, err
	}
	return p.elements[i].remap, nil
}

// Value returns the storage the plug currently reads and refreshes its
// liveness stamp.
func (p *Plug) Value() *Value {
	p.Touch()
	return p.resolve()
}

// Peek returns the effective storage without refreshing the liveness stamp.
func (p *Plug) Peek() *Value {
	return p.resolve()
}

func (p *Plug) resolve() *Value {
	if p.Dir == Output || len(p.elements) == 0 {
		return &p.own
	}
	if p.declared != typelib.TypeFloat {
		return p.elements[len(p.elements)-1].source
	}

	clock := p.owner.clock
	now := clock.tick()
	if p.aggValid && p.aggStamp == now && clock.ticking() {
		return &p.agg
	}
	var sum float64
	for _, el := range p.elements {
		sum += el.remap.Apply(el.source.Float)
	}
	p.agg.Float = sum
	p.aggStamp = now
	p.aggValid = clock.ticking()
	return &p.agg
}

// Float returns the effective float value.
func (p *Plug) Float() float64 { return p.Value().Float }

// Int returns the effective int value.
func (p *Plug) Int() int64 { return p.Value().Int }

// Bool returns the effective bool value.
func (p *Plug) Bool() bool { return p.Value().Bool }

// Text returns the effective string or enum value.
func (p *Plug) Text() string { return p.Value().Text }

// Color returns the effective color value.
func (p *Plug) Color() Color { return p.Value().Color }

// Image returns the effective image, or nil.
func (p *Plug) Image() *Image { return p.Value().Image }

// Channels returns the effective channel array.
func (p *Plug) Channels() []float32 { return p.Value().Channels }

// SetFloat writes the plug's own storage.
func (p *Plug) SetFloat(f float64) { p.own.Float = f }

// SetInt writes the plug's own storage.
func (p *Plug) SetInt(i int64) { p.own.Int = i }

// SetBool writes the plug's own storage.
func (p *Plug) SetBool(b bool) { p.own.Bool = b }

// SetText writes the plug's own storage.
func (p *Plug) SetText(s string) { p.own.Text = s }

// SetColor writes the plug's own storage.
func (p *Plug) SetColor(c Color) { p.own.Color = c }

// SetImage writes the plug's own storage.
func (p *Plug) SetImage(img *Image) { p.own.Image = img }

// SetChannels writes the plug's own storage.
func (p *Plug) SetChannels(ch []float32) { p.own.Channels = ch }

// SetLiteral parses text into the plug's own storage. For a connected input
// the literal takes effect once every driver is gone.
func (p *Plug) SetLiteral(text string) error {
	if p.declared == typelib.TypeAny {
		return fmt.Errorf("%w: wildcard input %q", ErrNotSettable, p.Name)
	}
	scratch := p.own
	if err := scratch.Parse(text); err != nil {
		return fmt.Errorf("plug %q: %w", p.Name, err)
	}
	p.own = scratch
	return nil
}

// ResetLiteral restores the declared default.
func (p *Plug) ResetLiteral() error {
	if p.declared == typelib.TypeAny || !p.declared.TextSettable() {
		p.own.Release()
		return nil
	}
	p.own.Release()
	if p.defaultText == "" {
		return nil
	}
	return p.own.Parse(p.defaultText)
}

// Format renders the effective value as text and refreshes the liveness
// stamp.
func (p *Plug) Format() (string, bool) {
	return p.Value().Format()
}

// WasTriggered reports whether this trigger output fired during the current
// tick traversal.
func (p *Plug) WasTriggered() bool {
	return p.triggered && p.triggerStamp == p.owner.clock.tick()
}

// release drops the storage held by the plug.
func (p *Plug) release() {
	p.own.Release()
	p.agg.Release()
	p.elements = nil
}
