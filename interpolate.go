package trellis

import "sort"

// Extrapolate controls Interpolate outside the input range.
type Extrapolate uint8

const (
	ExtrapolateExtend   Extrapolate = iota // continue the edge segment's slope
	ExtrapolateClamp                       // hold the edge output value
	ExtrapolateIdentity                    // return x unchanged
)

// Interpolate maps x through the piecewise-linear function defined by the
// ascending input breakpoints and their output values. input and output must
// have the same length of at least two.
func Interpolate(x float64, input, output []float64, mode Extrapolate) float64 {
	if len(input) < 2 || len(input) != len(output) {
		panic("trellis: Interpolate needs matching input/output of length >= 2")
	}
	last := len(input) - 1
	if x < input[0] || x > input[last] {
		switch mode {
		case ExtrapolateClamp:
			if x < input[0] {
				return output[0]
			}
			return output[last]
		case ExtrapolateIdentity:
			return x
		}
	}
	// Segment whose right breakpoint is the first one >= x, clamped to valid segments.
	i := sort.SearchFloat64s(input, x)
	if i < 1 {
		i = 1
	} else if i > last {
		i = last
	}
	x0, x1 := input[i-1], input[i]
	y0, y1 := output[i-1], output[i]
	if x1 == x0 {
		return y1
	}
	return y0 + (x-x0)/(x1-x0)*(y1-y0)
}

// MixColors linearly blends a toward b by t in [0, 1].
func MixColors(t float64, a, b Color) Color {
	t = clamp01(t)
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

// InterpolateColors maps x through color stops at the ascending input
// positions, clamping outside the range.
func InterpolateColors(x float64, input []float64, colors []Color) Color {
	if len(input) == 0 || len(input) != len(colors) {
		panic("trellis: InterpolateColors needs matching input/colors")
	}
	if x <= input[0] {
		return colors[0]
	}
	last := len(input) - 1
	if x >= input[last] {
		return colors[last]
	}
	i := sort.SearchFloat64s(input, x)
	x0, x1 := input[i-1], input[i]
	if x1 == x0 {
		return colors[i]
	}
	return MixColors((x-x0)/(x1-x0), colors[i-1], colors[i])
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
