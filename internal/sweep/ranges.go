package sweep

import (
	"fmt"
	"strconv"
	"strings"
)

// maxValues caps the length of a generated range.
const maxValues = 10000

// RangeSpec defines a floating-point parameter range for sweeping.
type RangeSpec struct {
	Min  float64
	Max  float64
	Step float64
}

// ParseRangeSpec parses a "min:max:step" string into a RangeSpec.
func ParseRangeSpec(s string) (RangeSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return RangeSpec{}, fmt.Errorf("invalid range format %q: expected min:max:step", s)
	}

	var vals [3]float64
	for i, name := range []string{"min", "max", "step"} {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return RangeSpec{}, fmt.Errorf("invalid %s value %q: %w", name, parts[i], err)
		}
		vals[i] = v
	}
	if vals[2] <= 0 {
		return RangeSpec{}, fmt.Errorf("step must be positive, got %f", vals[2])
	}
	if vals[0] > vals[1] {
		return RangeSpec{}, fmt.Errorf("min %f exceeds max %f", vals[0], vals[1])
	}
	return RangeSpec{Min: vals[0], Max: vals[1], Step: vals[2]}, nil
}

// Values expands the range inclusively. The last value is clamped to Max so
// accumulated rounding never overshoots it.
func (r RangeSpec) Values() []float64 {
	if r.Step <= 0 || r.Min > r.Max {
		return nil
	}
	n := int((r.Max-r.Min)/r.Step+1e-9) + 1
	if n > maxValues {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		v := r.Min + float64(i)*r.Step
		if v > r.Max {
			v = r.Max
		}
		out[i] = v
	}
	return out
}

// ParseValues accepts either a comma-separated list or a "min:max:step" range.
func ParseValues(s string) ([]float64, error) {
	if strings.Contains(s, ":") {
		r, err := ParseRangeSpec(s)
		if err != nil {
			return nil, err
		}
		vals := r.Values()
		if vals == nil {
			return nil, fmt.Errorf("range %q expands to more than %d values", s, maxValues)
		}
		return vals, nil
	}
	return ParseCSVFloat64s(s)
}
