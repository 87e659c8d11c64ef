package trellis

import "math"

// Affine is a 2D affine matrix [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// Identity is the identity affine matrix.
var Identity = Affine{1, 0, 0, 1, 0, 0}

// transformKeys are the group/shape props the local matrix is derived from.
var transformKeys = []string{
	"translateX", "translateY", "scaleX", "scaleY", "rotate",
	"skewX", "skewY", "originX", "originY", "matrix",
}

// localMatrix computes the node's local matrix from its resolved transform
// props. An explicit "matrix" prop wins over the component props.
//
// Composition order:
//
//	Translate(-origin) -> Scale -> Skew -> Rotate -> Translate(origin + translate)
func localMatrix(n *Node) Affine {
	if m, ok := n.resolved["matrix"].(Affine); ok {
		return m
	}
	sx := n.Float("scaleX", 1)
	sy := n.Float("scaleY", 1)
	sin, cos := math.Sincos(n.Float("rotate", 0))

	var tanSkewX, tanSkewY float64
	if v := n.Float("skewX", 0); v != 0 {
		tanSkewX = math.Tan(v)
	}
	if v := n.Float("skewY", 0); v != 0 {
		tanSkewY = math.Tan(v)
	}

	// After Scale * Translate(-origin), then Skew:
	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px := n.Float("originX", 0)
	py := n.Float("originY", 0)
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	// After Rotate:
	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	// Translate back to the origin, then apply the translation.
	return Affine{ra, rb, rc, rd, rtx + px + n.Float("translateX", 0), rty + py + n.Float("translateY", 0)}
}

// Multiply returns m * o (o is applied first).
func (m Affine) Multiply(o Affine) Affine {
	return Affine{
		m[0]*o[0] + m[2]*o[1],
		m[1]*o[0] + m[3]*o[1],
		m[0]*o[2] + m[2]*o[3],
		m[1]*o[2] + m[3]*o[3],
		m[0]*o[4] + m[2]*o[5] + m[4],
		m[1]*o[4] + m[3]*o[5] + m[5],
	}
}

// Invert returns the inverse matrix.
// Returns the identity matrix if the matrix is singular (determinant ~ 0).
func (m Affine) Invert() Affine {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return Identity
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms a point.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// IsIdentity reports whether m is exactly the identity.
func (m Affine) IsIdentity() bool {
	return m == Identity
}

// axisAligned reports whether m only scales and translates.
func (m Affine) axisAligned() bool {
	return m[1] == 0 && m[2] == 0
}

// Translate returns a translation matrix.
func Translate(x, y float64) Affine {
	return Affine{1, 0, 0, 1, x, y}
}

// Scale returns a scaling matrix.
func Scale(sx, sy float64) Affine {
	return Affine{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix (radians, clockwise in screen space).
func Rotate(radians float64) Affine {
	sin, cos := math.Sincos(radians)
	return Affine{cos, sin, -sin, cos, 0, 0}
}

// mapRect returns the bounding box of r transformed by m.
func (m Affine) mapRect(r Rect) Rect {
	x0, y0 := m.Apply(r.X, r.Y)
	x1, y1 := m.Apply(r.X+r.Width, r.Y)
	x2, y2 := m.Apply(r.X+r.Width, r.Y+r.Height)
	x3, y3 := m.Apply(r.X, r.Y+r.Height)
	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
