package trellis

import (
	"github.com/chewxy/math32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// PathVerb identifies one path segment.
type PathVerb uint8

const (
	VerbMove  PathVerb = iota // start a new contour
	VerbLine                  // straight line
	VerbQuad                  // quadratic bezier (1 control point)
	VerbCubic                 // cubic bezier (2 control points)
	VerbClose                 // close the contour
)

// pathOp stores one segment; pts holds up to three float32 points.
type pathOp struct {
	verb PathVerb
	pts  [6]float32
}

// Path is a vector outline in local coordinates. It records its segments so
// it can be inspected, transformed and re-tessellated; the engine path and
// its tessellations are built lazily and cached until the path is modified.
type Path struct {
	ops      []pathOp
	FillRule FillRule

	start, cur [2]float32

	vp      *vector.Path
	fill    *mesh
	strokes map[vector.StrokeOptions]*mesh
}

// mesh is a tessellated triangle list in local coordinates.
type mesh struct {
	verts []ebiten.Vertex
	inds  []uint16
}

// NewPath creates an empty path.
func NewPath() *Path {
	return &Path{}
}

func (p *Path) push(verb PathVerb, pts ...float32) {
	op := pathOp{verb: verb}
	copy(op.pts[:], pts)
	p.ops = append(p.ops, op)
	p.vp = nil
	p.fill = nil
	p.strokes = nil
}

// MoveTo starts a new contour at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.start = [2]float32{float32(x), float32(y)}
	p.cur = p.start
	p.push(VerbMove, p.cur[0], p.cur[1])
}

// LineTo adds a line to (x, y).
func (p *Path) LineTo(x, y float64) {
	p.cur = [2]float32{float32(x), float32(y)}
	p.push(VerbLine, p.cur[0], p.cur[1])
}

// QuadTo adds a quadratic bezier with control point (cx, cy).
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.cur = [2]float32{float32(x), float32(y)}
	p.push(VerbQuad, float32(cx), float32(cy), p.cur[0], p.cur[1])
}

// CubicTo adds a cubic bezier with control points (c1x, c1y) and (c2x, c2y).
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.cur = [2]float32{float32(x), float32(y)}
	p.push(VerbCubic, float32(c1x), float32(c1y), float32(c2x), float32(c2y), p.cur[0], p.cur[1])
}

// Close closes the current contour.
func (p *Path) Close() {
	p.cur = p.start
	p.push(VerbClose)
}

// Len returns the number of segments.
func (p *Path) Len() int {
	return len(p.ops)
}

// Verbs returns the segment verbs in order.
func (p *Path) Verbs() []PathVerb {
	out := make([]PathVerb, len(p.ops))
	for i, op := range p.ops {
		out[i] = op.verb
	}
	return out
}

// Current returns the current point.
func (p *Path) Current() Vec2 {
	return Vec2{float64(p.cur[0]), float64(p.cur[1])}
}

// Bounds returns the bounding box of all points, control points included.
func (p *Path) Bounds() Rect {
	first := true
	var minX, minY, maxX, maxY float32
	for _, op := range p.ops {
		for i := 0; i < op.verb.points()*2; i += 2 {
			x, y := op.pts[i], op.pts[i+1]
			if first {
				minX, maxX, minY, maxY = x, x, y, y
				first = false
				continue
			}
			minX = math32.Min(minX, x)
			maxX = math32.Max(maxX, x)
			minY = math32.Min(minY, y)
			maxY = math32.Max(maxY, y)
		}
	}
	return Rect{float64(minX), float64(minY), float64(maxX - minX), float64(maxY - minY)}
}

func (v PathVerb) points() int {
	switch v {
	case VerbMove, VerbLine:
		return 1
	case VerbQuad:
		return 2
	case VerbCubic:
		return 3
	}
	return 0
}

// Transform returns a copy of p with every point mapped through m.
func (p *Path) Transform(m Affine) *Path {
	q := &Path{ops: make([]pathOp, len(p.ops)), FillRule: p.FillRule}
	for i, op := range p.ops {
		for j := 0; j < op.verb.points()*2; j += 2 {
			x, y := m.Apply(float64(op.pts[j]), float64(op.pts[j+1]))
			op.pts[j], op.pts[j+1] = float32(x), float32(y)
		}
		q.ops[i] = op
	}
	return q
}

// --- Shape builders ---

// AddRect adds a closed rectangle contour.
func (p *Path) AddRect(r Rect) {
	p.MoveTo(r.X, r.Y)
	p.LineTo(r.X+r.Width, r.Y)
	p.LineTo(r.X+r.Width, r.Y+r.Height)
	p.LineTo(r.X, r.Y+r.Height)
	p.Close()
}

// kappa is the cubic control distance that approximates a quarter circle.
const kappa = 0.5522847498

// AddRRect adds a rounded rectangle contour. Radii are clamped to half the
// rectangle's size; zero radii produce a plain rectangle.
func (p *Path) AddRRect(r Rect, rx, ry float64) {
	rx = min(max(rx, 0), r.Width/2)
	ry = min(max(ry, 0), r.Height/2)
	if rx == 0 || ry == 0 {
		p.AddRect(r)
		return
	}
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.Width, r.Y+r.Height
	kx, ky := rx*kappa, ry*kappa
	p.MoveTo(x0+rx, y0)
	p.LineTo(x1-rx, y0)
	p.CubicTo(x1-rx+kx, y0, x1, y0+ry-ky, x1, y0+ry)
	p.LineTo(x1, y1-ry)
	p.CubicTo(x1, y1-ry+ky, x1-rx+kx, y1, x1-rx, y1)
	p.LineTo(x0+rx, y1)
	p.CubicTo(x0+rx-kx, y1, x0, y1-ry+ky, x0, y1-ry)
	p.LineTo(x0, y0+ry)
	p.CubicTo(x0, y0+ry-ky, x0+rx-kx, y0, x0+rx, y0)
	p.Close()
}

// AddOval adds an ellipse inscribed in r.
func (p *Path) AddOval(r Rect) {
	cx, cy := r.X+r.Width/2, r.Y+r.Height/2
	rx, ry := r.Width/2, r.Height/2
	kx, ky := rx*kappa, ry*kappa
	p.MoveTo(cx+rx, cy)
	p.CubicTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	p.CubicTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	p.CubicTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	p.CubicTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	p.Close()
}

// AddCircle adds a circle centered at (cx, cy).
func (p *Path) AddCircle(cx, cy, r float64) {
	p.AddOval(Rect{cx - r, cy - r, 2 * r, 2 * r})
}

// AddArc appends an elliptical arc in SVG endpoint parameterization from the
// current point to (x, y), approximated with cubic beziers.
func (p *Path) AddArc(rx, ry, rotation float64, largeArc, sweep bool, x, y float64) {
	x0, y0 := p.cur[0], p.cur[1]
	x1, y1 := float32(x), float32(y)
	frx, fry := math32.Abs(float32(rx)), math32.Abs(float32(ry))
	if frx == 0 || fry == 0 || (x0 == x1 && y0 == y1) {
		p.LineTo(x, y)
		return
	}
	phi := float32(rotation) * math32.Pi / 180
	sinPhi, cosPhi := math32.Sin(phi), math32.Cos(phi)

	// Endpoint to center conversion.
	dx, dy := (x0-x1)/2, (y0-y1)/2
	x1p := cosPhi*dx + sinPhi*dy
	y1p := -sinPhi*dx + cosPhi*dy
	lambda := (x1p*x1p)/(frx*frx) + (y1p*y1p)/(fry*fry)
	if lambda > 1 {
		s := math32.Sqrt(lambda)
		frx *= s
		fry *= s
	}
	num := frx*frx*fry*fry - frx*frx*y1p*y1p - fry*fry*x1p*x1p
	den := frx*frx*y1p*y1p + fry*fry*x1p*x1p
	coef := float32(0)
	if den != 0 && num > 0 {
		coef = math32.Sqrt(num / den)
	}
	if largeArc == sweep {
		coef = -coef
	}
	cxp := coef * frx * y1p / fry
	cyp := -coef * fry * x1p / frx
	cx := cosPhi*cxp - sinPhi*cyp + (x0+x1)/2
	cy := sinPhi*cxp + cosPhi*cyp + (y0+y1)/2

	theta1 := math32.Atan2((y1p-cyp)/fry, (x1p-cxp)/frx)
	theta2 := math32.Atan2((-y1p-cyp)/fry, (-x1p-cxp)/frx)
	delta := theta2 - theta1
	if sweep && delta < 0 {
		delta += 2 * math32.Pi
	} else if !sweep && delta > 0 {
		delta -= 2 * math32.Pi
	}

	segments := int(math32.Ceil(math32.Abs(delta) / (math32.Pi / 2)))
	step := delta / float32(segments)
	t := 4.0 / 3.0 * math32.Tan(step/4)
	point := func(theta float32) (float32, float32, float32, float32) {
		ct, st := math32.Cos(theta), math32.Sin(theta)
		// position and derivative on the rotated ellipse
		px := cx + frx*ct*cosPhi - fry*st*sinPhi
		py := cy + frx*ct*sinPhi + fry*st*cosPhi
		dpx := -frx*st*cosPhi - fry*ct*sinPhi
		dpy := -frx*st*sinPhi + fry*ct*cosPhi
		return px, py, dpx, dpy
	}
	theta := theta1
	for i := 0; i < segments; i++ {
		ax, ay, adx, ady := point(theta)
		bx, by, bdx, bdy := point(theta + step)
		if i == segments-1 {
			bx, by = x1, y1
		}
		p.CubicTo(
			float64(ax+t*adx), float64(ay+t*ady),
			float64(bx-t*bdx), float64(by-t*bdy),
			float64(bx), float64(by),
		)
		theta += step
	}
}

// --- Engine bridge ---

// vectorPath returns the engine path, building it on first use.
func (p *Path) vectorPath() *vector.Path {
	if p.vp != nil {
		return p.vp
	}
	vp := &vector.Path{}
	for _, op := range p.ops {
		switch op.verb {
		case VerbMove:
			vp.MoveTo(op.pts[0], op.pts[1])
		case VerbLine:
			vp.LineTo(op.pts[0], op.pts[1])
		case VerbQuad:
			vp.QuadTo(op.pts[0], op.pts[1], op.pts[2], op.pts[3])
		case VerbCubic:
			vp.CubicTo(op.pts[0], op.pts[1], op.pts[2], op.pts[3], op.pts[4], op.pts[5])
		case VerbClose:
			vp.Close()
		}
	}
	p.vp = vp
	return vp
}

// fillMesh returns the cached fill tessellation.
func (p *Path) fillMesh() *mesh {
	if p.fill == nil {
		vs, is := p.vectorPath().AppendVerticesAndIndicesForFilling(nil, nil)
		p.fill = &mesh{verts: vs, inds: is}
	}
	return p.fill
}

// strokeMesh returns the cached stroke tessellation for op.
func (p *Path) strokeMesh(op vector.StrokeOptions) *mesh {
	if m, ok := p.strokes[op]; ok {
		return m
	}
	vs, is := p.vectorPath().AppendVerticesAndIndicesForStroke(nil, nil, &op)
	m := &mesh{verts: vs, inds: is}
	if p.strokes == nil {
		p.strokes = make(map[vector.StrokeOptions]*mesh)
	}
	p.strokes[op] = m
	return m
}
