package trellis

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// Common colors.
var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorTransparent = Color{}
)

// Premultiplied returns the color with R, G and B scaled by A.
func (c Color) Premultiplied() Color {
	return Color{c.R * c.A, c.G * c.A, c.B * c.A, c.A}
}

// WithAlpha returns a copy of c with alpha multiplied by a.
func (c Color) WithAlpha(a float64) Color {
	c.A *= a
	return c
}

// toRGBA converts to a premultiplied 8-bit color for image.Fill.
func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R*c.A) * 255),
		G: uint8(clamp01(c.G*c.A) * 255),
		B: uint8(clamp01(c.B*c.A) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

// namedColors covers the CSS names most scene files use.
var namedColors = map[string]Color{
	"black":       ColorBlack,
	"white":       ColorWhite,
	"transparent": ColorTransparent,
	"red":         {1, 0, 0, 1},
	"green":       {0, 0.5, 0, 1},
	"lime":        {0, 1, 0, 1},
	"blue":        {0, 0, 1, 1},
	"yellow":      {1, 1, 0, 1},
	"cyan":        {0, 1, 1, 1},
	"magenta":     {1, 0, 1, 1},
	"orange":      {1, 0.647, 0, 1},
	"purple":      {0.5, 0, 0.5, 1},
	"gray":        {0.5, 0.5, 0.5, 1},
}

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa" or a basic CSS color name.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("parse color %q: unknown name", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("parse color %q: bad length", s)
	}
	var rgba [4]float64
	for i := range rgba {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		rgba[i] = float64(v) / 255
	}
	return Color{rgba[0], rgba[1], rgba[2], rgba[3]}, nil
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendErase                     // destination-out (punch transparent holes)
	BlendMask                      // clip destination to source alpha
	BlendBelow                     // destination-over (draw behind existing content)
	BlendNone                      // opaque copy (skip blending)
)

var blendModeNames = map[string]BlendMode{
	"normal":   BlendNormal,
	"srcOver":  BlendNormal,
	"add":      BlendAdd,
	"plus":     BlendAdd,
	"multiply": BlendMultiply,
	"screen":   BlendScreen,
	"erase":    BlendErase,
	"dstOut":   BlendErase,
	"mask":     BlendMask,
	"dstIn":    BlendMask,
	"below":    BlendBelow,
	"dstOver":  BlendBelow,
	"src":      BlendNone,
	"none":     BlendNone,
}

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendNormal:
		return ebiten.BlendSourceOver
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendMask:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorZero,
			BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
			BlendFactorDestinationRGB:   ebiten.BlendFactorSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendBelow:
		return ebiten.BlendDestinationOver
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// NodeKind distinguishes what a Node draws or declares.
type NodeKind uint8

const (
	KindGroup          NodeKind = iota // transform, clip, opacity and paint inheritance for children
	KindFill                           // fills the current clip with the paint
	KindRect                           // axis-aligned rectangle
	KindRRect                          // rounded rectangle
	KindCircle                         // circle from center and radius
	KindOval                           // ellipse inscribed in a rectangle
	KindLine                           // segment from p1 to p2, always stroked
	KindPath                           // arbitrary path (SVG path data or *Path)
	KindImage                          // decoded image fitted into a rectangle
	KindPatch                          // Coons patch with per-corner colors
	KindPicture                        // replays a recorded Picture
	KindPaint                          // declaration: an extra paint for the parent
	KindShader                         // declaration: Kage shader for the parent paint
	KindLinearGradient                 // declaration: linear gradient for the parent paint
	KindRadialGradient                 // declaration: radial gradient for the parent paint
)

var kindNames = [...]string{
	KindGroup:          "group",
	KindFill:           "fill",
	KindRect:           "rect",
	KindRRect:          "rrect",
	KindCircle:         "circle",
	KindOval:           "oval",
	KindLine:           "line",
	KindPath:           "path",
	KindImage:          "image",
	KindPatch:          "patch",
	KindPicture:        "picture",
	KindPaint:          "paint",
	KindShader:         "shader",
	KindLinearGradient: "linearGradient",
	KindRadialGradient: "radialGradient",
}

// String returns the scene-file name of the kind.
func (k NodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// ParseNodeKind returns the kind with the given scene-file name.
func ParseNodeKind(s string) (NodeKind, error) {
	for i, name := range kindNames {
		if name == s {
			return NodeKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// IsDeclaration reports whether nodes of this kind modify their parent's
// paint instead of drawing.
func (k NodeKind) IsDeclaration() bool {
	return k >= KindPaint
}

// PaintStyle selects whether shapes are filled or stroked.
type PaintStyle uint8

const (
	StyleFill   PaintStyle = iota // fill the interior
	StyleStroke                   // stroke the outline
)

// StrokeCap is the shape of open stroke ends.
type StrokeCap uint8

const (
	CapButt   StrokeCap = iota // flat, ends exactly at the endpoint
	CapRound                   // semicircle past the endpoint
	CapSquare                  // square past the endpoint
)

// StrokeJoin is the shape of stroke corners.
type StrokeJoin uint8

const (
	JoinMiter StrokeJoin = iota // sharp corner up to the miter limit
	JoinRound                   // rounded corner
	JoinBevel                   // cut-off corner
)

// FillRule decides which regions of a self-intersecting path are inside.
type FillRule uint8

const (
	FillNonZero FillRule = iota // winding
	FillEvenOdd                 // even-odd
)
