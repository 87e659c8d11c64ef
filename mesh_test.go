package trellis

import (
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

// --- transformVertices ---

func TestTransformVerticesIdentity(t *testing.T) {
	src := []ebiten.Vertex{
		{DstX: 10, DstY: 20, SrcX: 0, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
		{DstX: 30, DstY: 40, SrcX: 1, SrcY: 1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	dst := make([]ebiten.Vertex, 2)
	transformVertices(src, dst, Identity, ColorWhite)

	if !approxEqual(float64(dst[0].DstX), 10, epsilon) || !approxEqual(float64(dst[0].DstY), 20, epsilon) {
		t.Errorf("identity: dst[0] = (%f,%f), want (10,20)", dst[0].DstX, dst[0].DstY)
	}
	if !approxEqual(float64(dst[1].DstX), 30, epsilon) || !approxEqual(float64(dst[1].DstY), 40, epsilon) {
		t.Errorf("identity: dst[1] = (%f,%f), want (30,40)", dst[1].DstX, dst[1].DstY)
	}
}

func TestTransformVerticesTranslation(t *testing.T) {
	src := []ebiten.Vertex{{ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}}
	dst := make([]ebiten.Vertex, 1)
	transformVertices(src, dst, Translate(100, 200), ColorWhite)

	if !approxEqual(float64(dst[0].DstX), 100, epsilon) || !approxEqual(float64(dst[0].DstY), 200, epsilon) {
		t.Errorf("translation: dst[0] = (%f,%f), want (100,200)", dst[0].DstX, dst[0].DstY)
	}
}

func TestTransformVerticesRotation90(t *testing.T) {
	src := []ebiten.Vertex{{DstX: 1, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}}
	dst := make([]ebiten.Vertex, 1)
	transformVertices(src, dst, Rotate(math.Pi/2), ColorWhite)

	// (1,0) rotated 90° → (0,1)
	if !approxEqual(float64(dst[0].DstX), 0, 0.001) || !approxEqual(float64(dst[0].DstY), 1, 0.001) {
		t.Errorf("rotation90: dst[0] = (%f,%f), want (0,1)", dst[0].DstX, dst[0].DstY)
	}
}

func TestTransformVerticesColorTint(t *testing.T) {
	src := []ebiten.Vertex{{ColorR: 1, ColorG: 0.8, ColorB: 0.5, ColorA: 1}}
	dst := make([]ebiten.Vertex, 1)
	transformVertices(src, dst, Identity, Color{0.5, 1.0, 0.8, 0.6})

	// Premultiplied: vertex * tint * alpha.
	want := [4]float64{0.3, 0.48, 0.24, 0.6}
	got := [4]float32{dst[0].ColorR, dst[0].ColorG, dst[0].ColorB, dst[0].ColorA}
	for i := range want {
		if !approxEqual(float64(got[i]), want[i], 0.001) {
			t.Errorf("channel %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestTransformVerticesPreservesUV(t *testing.T) {
	src := []ebiten.Vertex{
		{DstX: 10, DstY: 20, SrcX: 0.25, SrcY: 0.75, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1},
	}
	dst := make([]ebiten.Vertex, 1)
	transformVertices(src, dst, Affine{2, 0, 0, 2, 50, 50}, ColorWhite)

	if dst[0].SrcX != 0.25 || dst[0].SrcY != 0.75 {
		t.Errorf("UV changed: got (%f,%f), want (0.25, 0.75)", dst[0].SrcX, dst[0].SrcY)
	}
}

func TestTransformVerticesVertexAlpha(t *testing.T) {
	// Patch vertices carry their own alpha; it multiplies the paint's.
	src := []ebiten.Vertex{{ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 0.5}}
	dst := make([]ebiten.Vertex, 1)
	transformVertices(src, dst, Identity, Color{1, 1, 1, 0.8})

	if !approxEqual(float64(dst[0].ColorA), 0.4, 0.001) {
		t.Errorf("ColorA = %f, want 0.4", dst[0].ColorA)
	}
	if !approxEqual(float64(dst[0].ColorR), 0.4, 0.001) {
		t.Errorf("ColorR = %f, want 0.4", dst[0].ColorR)
	}
}

// --- computeMeshAABB ---

func TestComputeMeshAABBEmpty(t *testing.T) {
	aabb := computeMeshAABB(nil)
	if aabb.Width != 0 || aabb.Height != 0 {
		t.Errorf("empty AABB = %v, want zero", aabb)
	}
}

func TestComputeMeshAABBTriangle(t *testing.T) {
	verts := []ebiten.Vertex{
		{DstX: 10, DstY: 20},
		{DstX: 50, DstY: 20},
		{DstX: 30, DstY: 60},
	}
	aabb := computeMeshAABB(verts)
	if aabb != (Rect{X: 10, Y: 20, Width: 40, Height: 40}) {
		t.Errorf("AABB = %+v, want (10,20,40,40)", aabb)
	}
}

func TestComputeMeshAABBNegativeCoords(t *testing.T) {
	verts := []ebiten.Vertex{
		{DstX: -10, DstY: -20},
		{DstX: 10, DstY: 20},
	}
	aabb := computeMeshAABB(verts)
	if aabb != (Rect{X: -10, Y: -20, Width: 20, Height: 40}) {
		t.Errorf("AABB = %+v, want (-10,-20,20,40)", aabb)
	}
}

// --- growVertices ---

func TestGrowVerticesHighWater(t *testing.T) {
	buf := growVertices(nil, 8)
	if len(buf) != 8 {
		t.Fatalf("len = %d, want 8", len(buf))
	}
	small := growVertices(buf, 3)
	if len(small) != 3 || &small[0] != &buf[0] {
		t.Error("shrinking should reslice the same backing array")
	}
	big := growVertices(small, 16)
	if len(big) != 16 || cap(big) < 16 {
		t.Errorf("grow: len=%d cap=%d", len(big), cap(big))
	}
}

// --- ensureWhitePixel ---

func TestEnsureWhitePixelSingleton(t *testing.T) {
	a := ensureWhitePixel()
	b := ensureWhitePixel()
	if a != b {
		t.Error("ensureWhitePixel should return same image")
	}
	bounds := a.Bounds()
	if bounds.Dx() != 1 || bounds.Dy() != 1 {
		t.Errorf("white pixel size = %dx%d, want 1x1", bounds.Dx(), bounds.Dy())
	}
}

// --- Benchmark ---

func BenchmarkTransformVertices1000(b *testing.B) {
	src := make([]ebiten.Vertex, 1000)
	for i := range src {
		src[i] = ebiten.Vertex{
			DstX: float32(i), DstY: float32(i * 2),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1,
		}
	}
	dst := make([]ebiten.Vertex, 1000)
	m := Rotate(0.5).Multiply(Translate(100, 200))
	tint := Color{0.8, 0.9, 1.0, 0.7}
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		transformVertices(src, dst, m, tint)
	}
}
