package trellis

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Canvas receives drawing commands. Save and SaveLayer push state that the
// matching Restore pops; transforms and clips are relative to the current
// state. A Picture records commands; the engine canvas executes them.
type Canvas interface {
	Save()
	// SaveLayer redirects drawing into an offscreen layer that Restore
	// composites back with the given alpha and blend mode.
	SaveLayer(alpha float64, blend BlendMode)
	Restore()
	Concat(m Affine)
	ClipRect(r Rect)

	DrawPaint(p Paint)
	DrawPath(path *Path, p Paint)
	DrawImageRect(img *Image, src, dst Rect, p Paint)
	DrawVertices(verts []ebiten.Vertex, inds []uint16, p Paint)
	DrawPicture(pic *Picture)
}

// canvasState is one level of the save stack.
type canvasState struct {
	ctm    Affine
	clip   image.Rectangle
	target *ebiten.Image

	// Set when this level was pushed by SaveLayer.
	layer      *ebiten.Image
	layerAlpha float64
	layerBlend BlendMode
}

// imageCanvas draws onto an *ebiten.Image.
type imageCanvas struct {
	state   canvasState
	stack   []canvasState
	pool    *layerPool
	size    image.Rectangle
	scratch []ebiten.Vertex
	quad    [4]ebiten.Vertex
}

// newImageCanvas creates a canvas drawing into dst. Layers come from pool.
func newImageCanvas(dst *ebiten.Image, pool *layerPool) *imageCanvas {
	b := dst.Bounds()
	return &imageCanvas{
		state: canvasState{ctm: Identity, clip: b, target: dst},
		pool:  pool,
		size:  b,
	}
}

func (c *imageCanvas) Save() {
	c.stack = append(c.stack, c.state)
	c.state.layer = nil
}

func (c *imageCanvas) SaveLayer(alpha float64, blend BlendMode) {
	c.stack = append(c.stack, c.state)
	img := c.pool.Acquire(c.size.Dx(), c.size.Dy())
	c.state.layer = img
	c.state.layerAlpha = alpha
	c.state.layerBlend = blend
	c.state.target = img.SubImage(c.size).(*ebiten.Image)
}

func (c *imageCanvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	done := c.state
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	if done.layer == nil {
		return
	}
	if dst := c.target(); dst != nil {
		op := &ebiten.DrawImageOptions{Blend: done.layerBlend.EbitenBlend()}
		op.ColorScale.ScaleAlpha(float32(done.layerAlpha))
		dst.DrawImage(done.target, op)
	}
	c.pool.Release(done.layer)
}

func (c *imageCanvas) Concat(m Affine) {
	c.state.ctm = c.state.ctm.Multiply(m)
}

func (c *imageCanvas) ClipRect(r Rect) {
	d := c.state.ctm.mapRect(r)
	ir := image.Rect(
		int(math.Floor(d.X)), int(math.Floor(d.Y)),
		int(math.Ceil(d.X+d.Width)), int(math.Ceil(d.Y+d.Height)),
	)
	c.state.clip = c.state.clip.Intersect(ir)
}

// target returns the current draw target clipped to the current clip, or nil
// if the clip is empty.
func (c *imageCanvas) target() *ebiten.Image {
	if c.state.clip.Empty() {
		return nil
	}
	return c.state.target.SubImage(c.state.clip).(*ebiten.Image)
}

func (c *imageCanvas) DrawPaint(p Paint) {
	// Cover the clip, expressed in local space so shaders see local coordinates.
	r := c.state.clip
	inv := c.state.ctm.Invert()
	corners := [4][2]float64{
		{float64(r.Min.X), float64(r.Min.Y)},
		{float64(r.Max.X), float64(r.Min.Y)},
		{float64(r.Min.X), float64(r.Max.Y)},
		{float64(r.Max.X), float64(r.Max.Y)},
	}
	for i, pt := range corners {
		x, y := inv.Apply(pt[0], pt[1])
		c.quad[i] = ebiten.Vertex{DstX: float32(x), DstY: float32(y), ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
	}
	c.drawMesh(c.quad[:], quadIndices, p, c.state.ctm, ebiten.FillRuleFillAll)
}

var quadIndices = []uint16{0, 1, 2, 1, 3, 2}

func (c *imageCanvas) DrawPath(path *Path, p Paint) {
	if p.Style == StyleStroke {
		m := path.strokeMesh(p.strokeOptions())
		c.drawMesh(m.verts, m.inds, p, c.state.ctm, ebiten.FillRuleNonZero)
		return
	}
	rule := ebiten.FillRuleNonZero
	if path.FillRule == FillEvenOdd {
		rule = ebiten.FillRuleEvenOdd
	}
	m := path.fillMesh()
	c.drawMesh(m.verts, m.inds, p, c.state.ctm, rule)
}

func (c *imageCanvas) DrawVertices(verts []ebiten.Vertex, inds []uint16, p Paint) {
	c.drawMesh(verts, inds, p, c.state.ctm, ebiten.FillRuleFillAll)
}

// drawMesh transforms local vertices into device space and draws them with
// the paint's color, or its shader when one is bound.
func (c *imageCanvas) drawMesh(verts []ebiten.Vertex, inds []uint16, p Paint, m Affine, rule ebiten.FillRule) {
	dst := c.target()
	if dst == nil || len(inds) == 0 {
		return
	}
	tint := p.effectiveColor()
	if p.Shader != nil {
		tint = ColorWhite.WithAlpha(p.Opacity)
	}
	c.scratch = growVertices(c.scratch, len(verts))
	transformVertices(verts, c.scratch, m, tint)
	for i := range c.scratch {
		c.scratch[i].SrcX, c.scratch[i].SrcY = 0.5, 0.5
	}
	// Skip meshes entirely outside the clip.
	clip := c.state.clip
	bounds := computeMeshAABB(c.scratch)
	if !bounds.Intersects(Rect{float64(clip.Min.X), float64(clip.Min.Y), float64(clip.Dx()), float64(clip.Dy())}) {
		return
	}

	if p.Shader != nil {
		prog, err := p.Shader.program()
		if err != nil {
			return
		}
		dst.DrawTrianglesShader(c.scratch, inds, prog, &ebiten.DrawTrianglesShaderOptions{
			Uniforms:  p.Shader.uniformsFor(m),
			Blend:     p.BlendMode.EbitenBlend(),
			FillRule:  rule,
			AntiAlias: p.AntiAlias,
		})
		return
	}
	dst.DrawTriangles(c.scratch, inds, ensureWhitePixel(), &ebiten.DrawTrianglesOptions{
		ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha,
		Blend:          p.BlendMode.EbitenBlend(),
		FillRule:       rule,
		AntiAlias:      p.AntiAlias,
	})
}

func (c *imageCanvas) DrawImageRect(img *Image, src, dst Rect, p Paint) {
	target := c.target()
	if target == nil || src.Empty() || dst.Empty() {
		return
	}
	sub := img.ebitenImage().SubImage(image.Rect(
		int(src.X), int(src.Y), int(src.X+src.Width), int(src.Y+src.Height),
	)).(*ebiten.Image)

	op := &ebiten.DrawImageOptions{Blend: p.BlendMode.EbitenBlend()}
	op.GeoM.Scale(dst.Width/src.Width, dst.Height/src.Height)
	op.GeoM.Translate(dst.X, dst.Y)
	op.GeoM.Concat(geoM(c.state.ctm))
	op.ColorScale.ScaleAlpha(float32(p.Color.A * p.Opacity))
	if p.AntiAlias {
		op.Filter = ebiten.FilterLinear
	}
	target.DrawImage(sub, op)
}

func (c *imageCanvas) DrawPicture(pic *Picture) {
	c.Save()
	pic.Replay(c)
	c.Restore()
}

// finish pops any levels left open so layers are composited and released.
func (c *imageCanvas) finish() {
	for len(c.stack) > 0 {
		c.Restore()
	}
}

// geoM converts an affine matrix to an engine GeoM.
func geoM(m Affine) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(1, 0, m[1])
	g.SetElement(0, 1, m[2])
	g.SetElement(1, 1, m[3])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 2, m[5])
	return g
}
