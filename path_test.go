package trellis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathBuilders(t *testing.T) {
	tests := []struct {
		name  string
		build func(p *Path)
		verbs []PathVerb
		bound Rect
	}{
		{
			name:  "rect",
			build: func(p *Path) { p.AddRect(Rect{10, 20, 30, 40}) },
			verbs: []PathVerb{VerbMove, VerbLine, VerbLine, VerbLine, VerbClose},
			bound: Rect{10, 20, 30, 40},
		},
		{
			name:  "rrect",
			build: func(p *Path) { p.AddRRect(Rect{0, 0, 100, 50}, 10, 10) },
			verbs: []PathVerb{VerbMove, VerbLine, VerbCubic, VerbLine, VerbCubic, VerbLine, VerbCubic, VerbLine, VerbCubic, VerbClose},
			bound: Rect{0, 0, 100, 50},
		},
		{
			name:  "rrect zero radius is a rect",
			build: func(p *Path) { p.AddRRect(Rect{0, 0, 10, 10}, 0, 5) },
			verbs: []PathVerb{VerbMove, VerbLine, VerbLine, VerbLine, VerbClose},
			bound: Rect{0, 0, 10, 10},
		},
		{
			name:  "circle",
			build: func(p *Path) { p.AddCircle(50, 50, 10) },
			verbs: []PathVerb{VerbMove, VerbCubic, VerbCubic, VerbCubic, VerbCubic, VerbClose},
			bound: Rect{40, 40, 20, 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPath()
			tt.build(p)
			assert.Equal(t, tt.verbs, p.Verbs())
			b := p.Bounds()
			assert.InDelta(t, tt.bound.X, b.X, 1e-4)
			assert.InDelta(t, tt.bound.Y, b.Y, 1e-4)
			assert.InDelta(t, tt.bound.Width, b.Width, 1e-4)
			assert.InDelta(t, tt.bound.Height, b.Height, 1e-4)
		})
	}
}

func TestRRectRadiusClamped(t *testing.T) {
	p := NewPath()
	p.AddRRect(Rect{0, 0, 20, 10}, 50, 50)
	// Radius clamps to half the size, so the first point is the top edge midpoint.
	pts := p.ops[0].pts
	assert.InDelta(t, 10, pts[0], 1e-6)
	assert.InDelta(t, 0, pts[1], 1e-6)
}

func TestPathTransform(t *testing.T) {
	p := NewPath()
	p.AddRect(Rect{0, 0, 10, 10})
	p.FillRule = FillEvenOdd
	q := p.Transform(Translate(5, 5).Multiply(Scale(2, 2)))

	assert.Equal(t, Rect{5, 5, 20, 20}, q.Bounds())
	assert.Equal(t, FillEvenOdd, q.FillRule)
	assert.Equal(t, Rect{0, 0, 10, 10}, p.Bounds(), "original untouched")
}

func TestPathMeshCaching(t *testing.T) {
	p := NewPath()
	p.AddRect(Rect{0, 0, 10, 10})

	fill := p.fillMesh()
	require.NotEmpty(t, fill.verts)
	require.NotEmpty(t, fill.inds)
	assert.Same(t, fill, p.fillMesh())

	paint := DefaultPaint
	paint.StrokeWidth = 2
	stroke := p.strokeMesh(paint.strokeOptions())
	require.NotEmpty(t, stroke.inds)
	assert.Same(t, stroke, p.strokeMesh(paint.strokeOptions()))

	p.LineTo(20, 20)
	assert.NotSame(t, fill, p.fillMesh(), "modifying the path drops cached meshes")
}

func TestParseSVGPath(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		verbs []PathVerb
		end   Vec2
	}{
		{"absolute", "M10 10 L20 10 L20 20 Z", []PathVerb{VerbMove, VerbLine, VerbLine, VerbClose}, Vec2{10, 10}},
		{"relative", "m10,10 l10,0 l0,10", []PathVerb{VerbMove, VerbLine, VerbLine}, Vec2{20, 20}},
		{"implicit lineto", "M0 0 10 0 10 10", []PathVerb{VerbMove, VerbLine, VerbLine}, Vec2{10, 10}},
		{"horizontal vertical", "M0 0 H15 V5 h-5 v-5", []PathVerb{VerbMove, VerbLine, VerbLine, VerbLine, VerbLine}, Vec2{10, 0}},
		{"cubic smooth", "M0 0 C0 10 10 10 10 0 S20 -10 20 0", []PathVerb{VerbMove, VerbCubic, VerbCubic}, Vec2{20, 0}},
		{"quad smooth", "M0 0 Q5 10 10 0 T20 0", []PathVerb{VerbMove, VerbQuad, VerbQuad}, Vec2{20, 0}},
		{"compact numbers", "M0-5L10-5", []PathVerb{VerbMove, VerbLine}, Vec2{10, -5}},
		{"two contours", "M0 0 L1 0 Z M5 5 L6 5 z", []PathVerb{VerbMove, VerbLine, VerbClose, VerbMove, VerbLine, VerbClose}, Vec2{5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseSVGPath(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.verbs, p.Verbs())
			assert.InDelta(t, tt.end.X, p.Current().X, 1e-4)
			assert.InDelta(t, tt.end.Y, p.Current().Y, 1e-4)
		})
	}
}

func TestParseSVGPathArc(t *testing.T) {
	p, err := ParseSVGPath("M0 0 A10 10 0 0 1 20 0")
	require.NoError(t, err)
	verbs := p.Verbs()
	require.Greater(t, len(verbs), 1)
	for _, v := range verbs[1:] {
		assert.Equal(t, VerbCubic, v)
	}
	assert.InDelta(t, 20, p.Current().X, 1e-4)
	assert.InDelta(t, 0, p.Current().Y, 1e-4)

	// Half circle of radius 10 bulging toward +y (sweep flag 1).
	b := p.Bounds()
	assert.InDelta(t, 10, b.Height, 0.5)
}

func TestParseSVGPathArcCompactFlags(t *testing.T) {
	p, err := ParseSVGPath("M0 0a5 5 0 1020 0")
	require.NoError(t, err)
	assert.InDelta(t, 20, p.Current().X, 1e-4)
}

func TestParseSVGPathErrors(t *testing.T) {
	for _, data := range []string{
		"",
		"10 10",
		"M10",
		"M0 0 L",
		"M0 0 Z 5 5",
		"M0 0 A5 5 0 2 0 1 1",
	} {
		_, err := ParseSVGPath(data)
		assert.Error(t, err, "%q", data)
	}
}
