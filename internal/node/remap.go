package node

import (
	"fmt"
	"math"
	"strings"
)

// Remap parameter names as they appear on links.
const (
	ParamInMin  = "in_min"
	ParamInMax  = "in_max"
	ParamOutMin = "out_min"
	ParamOutMax = "out_max"
)

var remapParams = [4]string{ParamInMin, ParamInMax, ParamOutMin, ParamOutMax}

// remapDefaults apply to fields that are not set.
var remapDefaults = [4]float64{0, 1, 0, 1}

// Remap linearly maps a driver's value from an input range to an output
// range. A Remap with no field set is the identity, indistinguishable from
// one that was never configured.
type Remap struct {
	vals [4]float64
	set  [4]bool
}

// IsRemapParam reports whether name is one of the four remap fields.
func IsRemapParam(name string) bool {
	return remapIndex(name) >= 0
}

func remapIndex(name string) int {
	for i, p := range remapParams {
		if p == name {
			return i
		}
	}
	return -1
}

// Active reports whether any field is set.
func (r Remap) Active() bool {
	return r.set != [4]bool{}
}

// Set assigns one field from text.
func (r *Remap) Set(name, text string) error {
	i := remapIndex(name)
	if i < 0 {
		return fmt.Errorf("unknown remap parameter %q", name)
	}
	f, err := parseNumber[float64](text)
	if err != nil {
		return fmt.Errorf("remap parameter %q: %w", name, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("remap parameter %q: %q is not a finite number", name, text)
	}
	r.vals[i] = f
	r.set[i] = true
	return nil
}

// Clear unsets one field.
func (r *Remap) Clear(name string) error {
	i := remapIndex(name)
	if i < 0 {
		return fmt.Errorf("unknown remap parameter %q", name)
	}
	r.vals[i] = 0
	r.set[i] = false
	return nil
}

func (r Remap) field(i int) float64 {
	if r.set[i] {
		return r.vals[i]
	}
	return remapDefaults[i]
}

// Apply maps v. An inactive remap, or one with an empty input range,
// returns v unchanged.
func (r Remap) Apply(v float64) float64 {
	if !r.Active() {
		return v
	}
	inMin, inMax, outMin, outMax := r.field(0), r.field(1), r.field(2), r.field(3)
	if inMax == inMin {
		return v
	}
	return outMin + (v-inMin)*(outMax-outMin)/(inMax-inMin)
}

// RemapFromParams builds a Remap from a link's parameters, ignoring
// parameters that are not remap fields. Malformed fields are skipped and
// reported together.
func RemapFromParams(params map[string]string) (Remap, error) {
	var r Remap
	var errs []string
	for _, name := range remapParams {
		text, ok := params[name]
		if !ok {
			continue
		}
		if err := r.Set(name, text); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return r, fmt.Errorf("invalid remap: %s", strings.Join(errs, "; "))
	}
	return r, nil
}
