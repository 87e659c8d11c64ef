package trellis

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// Shader is a Kage fragment program. It is compiled on first draw and the
// compiled program is cached until Dispose. A Shader passed to a node as its
// "source" is borrowed: every node drawing it shares one compiled program.
type Shader struct {
	src      []byte
	compiled *ebiten.Shader
	err      error
	// owned shaders are compiled from a source string by a node and disposed
	// with it.
	owned bool
}

// NewShader wraps Kage source. Compilation is deferred to the first draw so
// shaders can be declared before the engine is running.
func NewShader(src string) *Shader {
	return &Shader{src: []byte(src)}
}

// Source returns the Kage source.
func (s *Shader) Source() string {
	return string(s.src)
}

func (s *Shader) program() (*ebiten.Shader, error) {
	if s.compiled == nil && s.err == nil {
		s.compiled, s.err = ebiten.NewShader(s.src)
		if s.err != nil {
			s.err = fmt.Errorf("compile shader: %w", s.err)
			logger.Warn("trellis: shader disabled", "err", s.err)
		}
	}
	return s.compiled, s.err
}

// release disposes the shader only when the node that built it owns it.
func (s *Shader) release() {
	if s.owned {
		s.Dispose()
	}
}

// Dispose releases the compiled program.
func (s *Shader) Dispose() {
	if s.compiled != nil {
		s.compiled.Deallocate()
		s.compiled = nil
	}
	s.err = nil
}

// --- Gradients ---

// GradientKind selects the gradient geometry.
type GradientKind uint8

const (
	GradientLinear GradientKind = iota
	GradientRadial
)

// maxGradientStops is the size of the stop arrays in the gradient program.
const maxGradientStops = 8

// Gradient is a linear or radial color ramp in the drawing node's local
// coordinates. Linear gradients run from Start to End; radial gradients are
// centered at Start with the given Radius.
type Gradient struct {
	Kind      GradientKind
	Start     Vec2
	End       Vec2
	Radius    float64
	Colors    []Color
	Positions []float64
}

var errGradientColors = errors.New("gradient needs at least two colors")

func buildGradient(n *Node) (any, error) {
	g := &Gradient{Colors: n.Colors("colors")}
	if len(g.Colors) < 2 {
		return nil, errGradientColors
	}
	if len(g.Colors) > maxGradientStops {
		return nil, fmt.Errorf("gradient has %d colors, at most %d supported", len(g.Colors), maxGradientStops)
	}
	switch n.Kind {
	case KindLinearGradient:
		g.Kind = GradientLinear
		g.Start = n.Vec2Prop("start", Vec2{})
		g.End = n.Vec2Prop("end", Vec2{})
	case KindRadialGradient:
		g.Kind = GradientRadial
		g.Start = n.Vec2Prop("c", Vec2{})
		g.Radius = n.Float("r", 0)
	}
	g.Positions = n.Floats("positions")
	if g.Positions == nil {
		g.Positions = make([]float64, len(g.Colors))
		for i := range g.Positions {
			g.Positions[i] = float64(i) / float64(len(g.Colors)-1)
		}
	} else if len(g.Positions) != len(g.Colors) {
		return nil, fmt.Errorf("gradient has %d colors but %d positions", len(g.Colors), len(g.Positions))
	}
	return g, nil
}

const gradientShaderSrc = `//kage:unit pixels
package main

var Inverse [6]float
var Mode float
var Start vec2
var End vec2
var Radius float
var Count float
var Stops [8]float
var Colors [8]vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	p := vec2(Inverse[0]*dst.x+Inverse[2]*dst.y+Inverse[4], Inverse[1]*dst.x+Inverse[3]*dst.y+Inverse[5])
	t := 0.0
	if Mode < 0.5 {
		d := End - Start
		l := dot(d, d)
		if l > 0 {
			t = dot(p-Start, d) / l
		}
	} else if Radius > 0 {
		t = length(p-Start) / Radius
	}
	t = clamp(t, 0, 1)
	c := Colors[0]
	for i := 1; i < 8; i++ {
		if float(i) < Count && t > Stops[i-1] {
			lo := Stops[i-1]
			hi := Stops[i]
			f := 1.0
			if hi > lo {
				f = clamp((t-lo)/(hi-lo), 0, 1)
			}
			c = mix(Colors[i-1], Colors[i], f)
		}
	}
	return c * color.a
}
`

var gradientShader = NewShader(gradientShaderSrc)

func (g *Gradient) uniforms(ctm Affine) map[string]any {
	inv := ctm.Invert()
	var stops [maxGradientStops]float32
	var colors [maxGradientStops * 4]float32
	for i, c := range g.Colors {
		stops[i] = float32(g.Positions[i])
		p := c.Premultiplied()
		colors[i*4+0] = float32(p.R)
		colors[i*4+1] = float32(p.G)
		colors[i*4+2] = float32(p.B)
		colors[i*4+3] = float32(p.A)
	}
	return map[string]any{
		"Inverse": []float32{
			float32(inv[0]), float32(inv[1]), float32(inv[2]),
			float32(inv[3]), float32(inv[4]), float32(inv[5]),
		},
		"Mode":   float32(g.Kind),
		"Start":  []float32{float32(g.Start.X), float32(g.Start.Y)},
		"End":    []float32{float32(g.End.X), float32(g.End.Y)},
		"Radius": float32(g.Radius),
		"Count":  float32(len(g.Colors)),
		"Stops":  stops[:],
		"Colors": colors[:],
	}
}

// --- Binding ---

// ShaderBinding attaches a program and its uniforms to a paint.
type ShaderBinding struct {
	shader   *Shader
	gradient *Gradient
	uniforms map[string]any
}

// Gradient returns the bound gradient, or nil for a custom shader.
func (b *ShaderBinding) Gradient() *Gradient {
	return b.gradient
}

// Uniforms returns the custom shader uniforms.
func (b *ShaderBinding) Uniforms() map[string]any {
	return b.uniforms
}

func (b *ShaderBinding) program() (*ebiten.Shader, error) {
	if b.gradient != nil {
		return gradientShader.program()
	}
	return b.shader.program()
}

func (b *ShaderBinding) uniformsFor(ctm Affine) map[string]any {
	if b.gradient != nil {
		return b.gradient.uniforms(ctm)
	}
	return b.uniforms
}

// shaderBinding builds the binding for a Shader or gradient declaration.
// Custom shader uniforms are every resolved prop except "source".
func (n *Node) shaderBinding() *ShaderBinding {
	switch n.Kind {
	case KindShader:
		s, _ := n.resourceValue(resShader).(*Shader)
		if s == nil {
			return nil
		}
		u := make(map[string]any, len(n.resolved))
		for k, v := range n.resolved {
			if k == "source" {
				continue
			}
			if uv, ok := uniformValue(v); ok {
				u[k] = uv
			}
		}
		return &ShaderBinding{shader: s, uniforms: u}
	case KindLinearGradient, KindRadialGradient:
		g, _ := n.resourceValue(resShader).(*Gradient)
		if g == nil {
			return nil
		}
		return &ShaderBinding{gradient: g}
	}
	return nil
}

func buildShader(n *Node) (any, error) {
	switch v := n.resolved["source"].(type) {
	case *Shader:
		return v, nil
	case string:
		s := NewShader(v)
		s.owned = true
		return s, nil
	case nil:
		return nil, errors.New("shader: missing source")
	default:
		return nil, fmt.Errorf("shader: unsupported source %T", v)
	}
}

// uniformValue converts a resolved prop into a Kage uniform value.
func uniformValue(v any) (any, bool) {
	switch v := v.(type) {
	case float32, []float32, int32, []int32:
		return v, true
	case int:
		return float32(v), true
	case bool:
		if v {
			return float32(1), true
		}
		return float32(0), true
	case Vec2:
		return []float32{float32(v.X), float32(v.Y)}, true
	case Color:
		p := v.Premultiplied()
		return []float32{float32(p.R), float32(p.G), float32(p.B), float32(p.A)}, true
	case []float64:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = float32(f)
		}
		return out, true
	}
	if f, ok := toFloat(v); ok {
		return float32(f), true
	}
	return nil, false
}
