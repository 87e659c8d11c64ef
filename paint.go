package trellis

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Paint describes how geometry is filled or stroked.
type Paint struct {
	Color       Color
	Opacity     float64 // multiplies Color.A; inherited multiplicatively
	Style       PaintStyle
	StrokeWidth float64
	StrokeCap   StrokeCap
	StrokeJoin  StrokeJoin
	StrokeMiter float64
	BlendMode   BlendMode
	AntiAlias   bool
	Shader      *ShaderBinding
}

// DefaultPaint is the paint at the root of every scene: opaque black fill.
var DefaultPaint = Paint{
	Color:       ColorBlack,
	Opacity:     1,
	StrokeWidth: 1,
	StrokeMiter: 4,
	AntiAlias:   true,
}

// effectiveColor returns the color with opacity applied.
func (p *Paint) effectiveColor() Color {
	return p.Color.WithAlpha(p.Opacity)
}

func (p *Paint) strokeOptions() vector.StrokeOptions {
	op := vector.StrokeOptions{
		Width:      float32(p.StrokeWidth),
		MiterLimit: float32(p.StrokeMiter),
	}
	switch p.StrokeCap {
	case CapRound:
		op.LineCap = vector.LineCapRound
	case CapSquare:
		op.LineCap = vector.LineCapSquare
	default:
		op.LineCap = vector.LineCapButt
	}
	switch p.StrokeJoin {
	case JoinRound:
		op.LineJoin = vector.LineJoinRound
	case JoinBevel:
		op.LineJoin = vector.LineJoinBevel
	default:
		op.LineJoin = vector.LineJoinMiter
	}
	return op
}

// paintKeys are the props a node's own paint overrides are derived from.
var paintKeys = []string{
	"color", "opacity", "style", "strokeWidth", "strokeCap",
	"strokeJoin", "strokeMiter", "blendMode", "antiAlias",
}

// paintOverride is the subset of paint fields a node sets itself.
type paintOverride struct {
	color       *Color
	opacity     *float64
	style       *PaintStyle
	strokeWidth *float64
	strokeCap   *StrokeCap
	strokeJoin  *StrokeJoin
	strokeMiter *float64
	blendMode   *BlendMode
	antiAlias   *bool
}

// paintSpec is the cached paint resource: the node's own overrides plus the
// declaration children that compose into it.
type paintSpec struct {
	own    paintOverride
	shader *Node   // last Shader/gradient declaration child
	extras []*Node // Paint declaration children, drawn after the node's own paint
}

func buildPaintSpec(n *Node) (any, error) {
	own, err := readPaintOverride(n)
	if err != nil {
		return nil, err
	}
	spec := &paintSpec{own: own}
	for _, c := range n.children {
		switch c.Kind {
		case KindShader, KindLinearGradient, KindRadialGradient:
			spec.shader = c
		case KindPaint:
			spec.extras = append(spec.extras, c)
		}
	}
	return spec, nil
}

func readPaintOverride(n *Node) (paintOverride, error) {
	var o paintOverride
	if _, ok := n.resolved["color"]; ok {
		c, ok := toColor(n.resolved["color"])
		if !ok {
			return o, fmt.Errorf("color: unsupported value %v", n.resolved["color"])
		}
		o.color = &c
	}
	if v, ok := toFloat(n.resolved["opacity"]); ok {
		o.opacity = &v
	}
	if v, ok := toFloat(n.resolved["strokeWidth"]); ok {
		o.strokeWidth = &v
	}
	if v, ok := toFloat(n.resolved["strokeMiter"]); ok {
		o.strokeMiter = &v
	}
	if v, ok := n.resolved["antiAlias"].(bool); ok {
		o.antiAlias = &v
	}
	if v, ok := n.resolved["style"]; ok {
		s, err := parseStyle(v)
		if err != nil {
			return o, err
		}
		o.style = &s
	}
	if v, ok := n.resolved["strokeCap"]; ok {
		c, err := parseCap(v)
		if err != nil {
			return o, err
		}
		o.strokeCap = &c
	}
	if v, ok := n.resolved["strokeJoin"]; ok {
		j, err := parseJoin(v)
		if err != nil {
			return o, err
		}
		o.strokeJoin = &j
	}
	if v, ok := n.resolved["blendMode"]; ok {
		b, err := parseBlendMode(v)
		if err != nil {
			return o, err
		}
		o.blendMode = &b
	}
	return o, nil
}

// apply returns base with the override's fields set. Opacity multiplies.
func (o *paintOverride) apply(base Paint) Paint {
	if o.color != nil {
		base.Color = *o.color
	}
	if o.opacity != nil {
		base.Opacity *= *o.opacity
	}
	if o.style != nil {
		base.Style = *o.style
	}
	if o.strokeWidth != nil {
		base.StrokeWidth = *o.strokeWidth
	}
	if o.strokeCap != nil {
		base.StrokeCap = *o.strokeCap
	}
	if o.strokeJoin != nil {
		base.StrokeJoin = *o.strokeJoin
	}
	if o.strokeMiter != nil {
		base.StrokeMiter = *o.strokeMiter
	}
	if o.blendMode != nil {
		base.BlendMode = *o.blendMode
	}
	if o.antiAlias != nil {
		base.AntiAlias = *o.antiAlias
	}
	return base
}

// paints returns the node's main paint derived from inherited, followed by
// one paint per Paint declaration child.
func (n *Node) paints(inherited Paint) []Paint {
	spec, _ := n.resourceValue(resPaint).(*paintSpec)
	if spec == nil {
		return []Paint{inherited}
	}
	main := spec.own.apply(inherited)
	if spec.shader != nil {
		main.Shader = spec.shader.shaderBinding()
	}
	out := []Paint{main}
	for _, extra := range spec.extras {
		out = append(out, extra.paints(main)[0])
	}
	return out
}

func parseStyle(v any) (PaintStyle, error) {
	switch v := v.(type) {
	case PaintStyle:
		return v, nil
	case string:
		switch v {
		case "fill":
			return StyleFill, nil
		case "stroke":
			return StyleStroke, nil
		}
	}
	return 0, fmt.Errorf("style: unsupported value %v", v)
}

func parseCap(v any) (StrokeCap, error) {
	switch v := v.(type) {
	case StrokeCap:
		return v, nil
	case string:
		switch v {
		case "butt":
			return CapButt, nil
		case "round":
			return CapRound, nil
		case "square":
			return CapSquare, nil
		}
	}
	return 0, fmt.Errorf("strokeCap: unsupported value %v", v)
}

func parseJoin(v any) (StrokeJoin, error) {
	switch v := v.(type) {
	case StrokeJoin:
		return v, nil
	case string:
		switch v {
		case "miter":
			return JoinMiter, nil
		case "round":
			return JoinRound, nil
		case "bevel":
			return JoinBevel, nil
		}
	}
	return 0, fmt.Errorf("strokeJoin: unsupported value %v", v)
}

func parseBlendMode(v any) (BlendMode, error) {
	switch v := v.(type) {
	case BlendMode:
		return v, nil
	case string:
		if b, ok := blendModeNames[v]; ok {
			return b, nil
		}
	}
	return 0, fmt.Errorf("blendMode: unsupported value %v", v)
}

func parseFillRule(v any) (FillRule, error) {
	switch v := v.(type) {
	case nil:
		return FillNonZero, nil
	case FillRule:
		return v, nil
	case string:
		switch v {
		case "winding", "nonZero":
			return FillNonZero, nil
		case "evenOdd":
			return FillEvenOdd, nil
		}
	}
	return 0, fmt.Errorf("fillType: unsupported value %v", v)
}
