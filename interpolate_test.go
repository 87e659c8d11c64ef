package trellis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	in := []float64{0, 10, 20}
	out := []float64{0, 100, 0}
	tests := []struct {
		name string
		x    float64
		mode Extrapolate
		want float64
	}{
		{"start", 0, ExtrapolateExtend, 0},
		{"inside first segment", 5, ExtrapolateExtend, 50},
		{"breakpoint", 10, ExtrapolateExtend, 100},
		{"inside second segment", 15, ExtrapolateExtend, 50},
		{"extend below", -5, ExtrapolateExtend, -50},
		{"extend above", 25, ExtrapolateExtend, -50},
		{"clamp below", -5, ExtrapolateClamp, 0},
		{"clamp above", 25, ExtrapolateClamp, 0},
		{"identity below", -5, ExtrapolateIdentity, -5},
		{"identity above", 25, ExtrapolateIdentity, 25},
		{"identity inside", 5, ExtrapolateIdentity, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Interpolate(tt.x, in, out, tt.mode), 1e-9)
		})
	}
}

func TestInterpolatePanicsOnMismatch(t *testing.T) {
	assert.Panics(t, func() { Interpolate(0, []float64{0}, []float64{0}, ExtrapolateClamp) })
	assert.Panics(t, func() { Interpolate(0, []float64{0, 1}, []float64{0}, ExtrapolateClamp) })
}

func TestMixColors(t *testing.T) {
	a := Color{0, 0, 0, 0}
	b := Color{1, 0.5, 0.2, 1}
	assert.Equal(t, a, MixColors(0, a, b))
	assert.Equal(t, b, MixColors(1, a, b))
	assert.Equal(t, b, MixColors(2, a, b), "t is clamped")
	mid := MixColors(0.5, a, b)
	assert.InDelta(t, 0.5, mid.R, 1e-9)
	assert.InDelta(t, 0.5, mid.A, 1e-9)
}

func TestInterpolateColors(t *testing.T) {
	in := []float64{0, 0.5, 1}
	colors := []Color{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}}

	assert.Equal(t, colors[0], InterpolateColors(-1, in, colors))
	assert.Equal(t, colors[2], InterpolateColors(2, in, colors))
	assert.Equal(t, colors[1], InterpolateColors(0.5, in, colors))
	got := InterpolateColors(0.75, in, colors)
	assert.InDelta(t, 0.5, got.G, 1e-9)
	assert.InDelta(t, 0.5, got.B, 1e-9)
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#fff", ColorWhite},
		{"#000000", ColorBlack},
		{"#ff000080", Color{1, 0, 0, 128.0 / 255}},
		{"red", Color{1, 0, 0, 1}},
		{" Transparent ", ColorTransparent},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	for _, bad := range []string{"", "#12", "#gggggg", "chartreuse-ish"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestColorHelpers(t *testing.T) {
	c := Color{1, 0.5, 0, 0.5}
	assert.Equal(t, Color{0.5, 0.25, 0, 0.5}, c.Premultiplied())
	assert.Equal(t, Color{1, 0.5, 0, 0.25}, c.WithAlpha(0.5))
	rgba := c.toRGBA()
	assert.Equal(t, uint8(127), rgba.R)
	assert.Equal(t, uint8(127), rgba.A)
}
