package trellis

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

// SceneFile is a scene loaded from YAML: named observable values, the
// animations that drive them, and the element tree bound to them.
//
//	values:
//	  progress: {type: number, initial: 0}
//	animations:
//	  - value: progress
//	    timing: {from: 0, to: 1, duration: 2s, easing: inOutSine, repeat: yoyo}
//	root:
//	  kind: group
//	  children:
//	    - kind: circle
//	      props:
//	        cx: 100
//	        cy: 100
//	        r: {value: progress, map: {input: [0, 1], output: [10, 60]}}
//
// A prop is either a literal or {value: name}, optionally mapped through
// {input, output, extrapolate} or {input, colors}.
type SceneFile struct {
	Values map[string]Source
	Root   *Element

	animations []animationDecl
}

type sceneDecl struct {
	Values     map[string]valueDecl `yaml:"values"`
	Animations []animationDecl      `yaml:"animations"`
	Root       *elementDecl         `yaml:"root"`
}

type valueDecl struct {
	Type    string `yaml:"type"`
	Initial any    `yaml:"initial"`
}

type animationDecl struct {
	Value  string        `yaml:"value"`
	Timing *timingDecl   `yaml:"timing"`
	Spring *SpringConfig `yaml:"spring"`
	Decay  *DecayConfig  `yaml:"decay"`
}

type timingDecl struct {
	// A missing from starts at the value's current state.
	From       *float64 `yaml:"from"`
	To         float64  `yaml:"to"`
	Duration   string   `yaml:"duration"`
	Easing     string   `yaml:"easing"`
	Repeat     string   `yaml:"repeat"`
	Iterations int      `yaml:"iterations"`
}

type elementDecl struct {
	Kind     string         `yaml:"kind"`
	Key      string         `yaml:"key"`
	Props    map[string]any `yaml:"props"`
	Children []*elementDecl `yaml:"children"`
}

var errNoRoot = errors.New("scene has no root element")

// LoadScene reads and parses the scene file at path.
func LoadScene(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	s, err := ParseScene(data)
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", path, err)
	}
	return s, nil
}

// ParseScene parses a YAML scene.
func ParseScene(data []byte) (*SceneFile, error) {
	var decl sceneDecl
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if decl.Root == nil {
		return nil, errNoRoot
	}
	s := &SceneFile{Values: make(map[string]Source, len(decl.Values))}
	for name, vd := range decl.Values {
		v, err := newDeclaredValue(vd)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", name, err)
		}
		s.Values[name] = v
	}
	for i, ad := range decl.Animations {
		if err := s.checkAnimation(ad); err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
	}
	s.animations = decl.Animations
	root, err := s.element(decl.Root)
	if err != nil {
		return nil, err
	}
	s.Root = root
	return s, nil
}

func newDeclaredValue(vd valueDecl) (Source, error) {
	switch vd.Type {
	case "number", "":
		f, ok := toFloat(vd.Initial)
		if !ok && vd.Initial != nil {
			return nil, fmt.Errorf("initial %v is not a number", vd.Initial)
		}
		return NewValue(f), nil
	case "color":
		c, ok := toColor(vd.Initial)
		if !ok && vd.Initial != nil {
			return nil, fmt.Errorf("initial %v is not a color", vd.Initial)
		}
		return NewValue(c), nil
	case "point":
		p, ok := toVec2(vd.Initial)
		if !ok && vd.Initial != nil {
			return nil, fmt.Errorf("initial %v is not a point", vd.Initial)
		}
		return NewValue(p), nil
	case "bool":
		b, _ := vd.Initial.(bool)
		return NewValue(b), nil
	case "string":
		s, _ := vd.Initial.(string)
		return NewValue(s), nil
	}
	return nil, fmt.Errorf("unknown value type %q", vd.Type)
}

// Number returns the named number value, or nil.
func (s *SceneFile) Number(name string) *Value[float64] {
	v, _ := s.Values[name].(*Value[float64])
	return v
}

func (s *SceneFile) checkAnimation(ad animationDecl) error {
	if s.Number(ad.Value) == nil {
		return fmt.Errorf("%q is not a number value", ad.Value)
	}
	n := 0
	for _, set := range []bool{ad.Timing != nil, ad.Spring != nil, ad.Decay != nil} {
		if set {
			n++
		}
	}
	if n != 1 {
		return errors.New("need exactly one of timing, spring or decay")
	}
	if ad.Timing != nil {
		if _, err := ad.Timing.config(); err != nil {
			return err
		}
	}
	return nil
}

// Start runs every declared animation on clock. A later animation on the
// same value replaces the earlier one.
func (s *SceneFile) Start(clock *Clock) []*Animation {
	anims := make([]*Animation, 0, len(s.animations))
	for _, ad := range s.animations {
		target := s.Number(ad.Value)
		switch {
		case ad.Timing != nil:
			cfg, _ := ad.Timing.config()
			if ad.Timing.From == nil {
				anims = append(anims, RunTimingTo(target, clock, cfg.To, cfg))
			} else {
				anims = append(anims, RunTiming(target, clock, cfg))
			}
		case ad.Spring != nil:
			anims = append(anims, RunSpring(target, clock, *ad.Spring))
		case ad.Decay != nil:
			anims = append(anims, RunDecay(target, clock, *ad.Decay))
		}
	}
	return anims
}

func (td *timingDecl) config() (TimingConfig, error) {
	cfg := TimingConfig{To: td.To, Iterations: td.Iterations}
	if td.From != nil {
		cfg.From = *td.From
	}
	if td.Duration != "" {
		d, err := time.ParseDuration(td.Duration)
		if err != nil {
			return cfg, fmt.Errorf("duration: %w", err)
		}
		cfg.Duration = d
	}
	if td.Easing != "" {
		fn, ok := easings[td.Easing]
		if !ok {
			return cfg, fmt.Errorf("unknown easing %q", td.Easing)
		}
		cfg.Easing = fn
	}
	switch td.Repeat {
	case "", "none":
		cfg.Repeat = RepeatNone
	case "loop":
		cfg.Repeat = RepeatLoop
	case "yoyo":
		cfg.Repeat = RepeatYoyo
	default:
		return cfg, fmt.Errorf("unknown repeat %q", td.Repeat)
	}
	return cfg, nil
}

func (s *SceneFile) element(d *elementDecl) (*Element, error) {
	kind, err := ParseNodeKind(d.Kind)
	if err != nil {
		return nil, err
	}
	el := &Element{Kind: kind, Key: d.Key, Props: make(Props, len(d.Props))}
	for key, raw := range d.Props {
		p, err := s.prop(raw)
		if err != nil {
			return nil, fmt.Errorf("%s prop %q: %w", d.Kind, key, err)
		}
		el.Props[key] = p
	}
	for _, cd := range d.Children {
		child, err := s.element(cd)
		if err != nil {
			return nil, err
		}
		el.Children = append(el.Children, child)
	}
	return el, nil
}

// prop converts a decoded YAML prop into a literal or binding.
func (s *SceneFile) prop(raw any) (Prop, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return Lit(raw), nil
	}
	name, ok := m["value"].(string)
	if !ok {
		return Lit(raw), nil
	}
	src, ok := s.Values[name]
	if !ok {
		return Prop{}, fmt.Errorf("unknown value %q", name)
	}
	mapping, ok := m["map"].(map[string]any)
	if !ok {
		return Bind(src), nil
	}
	num, ok := src.(*Value[float64])
	if !ok {
		return Prop{}, fmt.Errorf("value %q: only number values can be mapped", name)
	}
	input := floatList(mapping["input"])
	if len(input) < 2 || !slices.IsSorted(input) {
		return Prop{}, errors.New("map input needs at least two ascending numbers")
	}
	if rawColors, ok := mapping["colors"].([]any); ok {
		colors := make([]Color, len(rawColors))
		for i, rc := range rawColors {
			c, ok := toColor(rc)
			if !ok {
				return Prop{}, fmt.Errorf("map colors: %v is not a color", rc)
			}
			colors[i] = c
		}
		if len(colors) != len(input) {
			return Prop{}, errors.New("map input and colors differ in length")
		}
		return Select(Observable[float64](num), func(x float64) Color {
			return InterpolateColors(x, input, colors)
		}), nil
	}
	output := floatList(mapping["output"])
	if len(output) != len(input) {
		return Prop{}, errors.New("map input and output differ in length")
	}
	mode := ExtrapolateExtend
	switch mapping["extrapolate"] {
	case nil, "extend":
	case "clamp":
		mode = ExtrapolateClamp
	case "identity":
		mode = ExtrapolateIdentity
	default:
		return Prop{}, fmt.Errorf("unknown extrapolate %v", mapping["extrapolate"])
	}
	return Select(Observable[float64](num), func(x float64) float64 {
		return Interpolate(x, input, output, mode)
	}), nil
}

func floatList(v any) []float64 {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(list))
	for _, e := range list {
		f, ok := toFloat(e)
		if !ok {
			return nil
		}
		out = append(out, f)
	}
	return out
}

// easings maps scene-file easing names to gween easing functions.
var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inQuad":       ease.InQuad,
	"outQuad":      ease.OutQuad,
	"inOutQuad":    ease.InOutQuad,
	"inCubic":      ease.InCubic,
	"outCubic":     ease.OutCubic,
	"inOutCubic":   ease.InOutCubic,
	"inQuart":      ease.InQuart,
	"outQuart":     ease.OutQuart,
	"inOutQuart":   ease.InOutQuart,
	"inSine":       ease.InSine,
	"outSine":      ease.OutSine,
	"inOutSine":    ease.InOutSine,
	"inExpo":       ease.InExpo,
	"outExpo":      ease.OutExpo,
	"inOutExpo":    ease.InOutExpo,
	"inCirc":       ease.InCirc,
	"outCirc":      ease.OutCirc,
	"inOutCirc":    ease.InOutCirc,
	"inBack":       ease.InBack,
	"outBack":      ease.OutBack,
	"inOutBack":    ease.InOutBack,
	"inElastic":    ease.InElastic,
	"outElastic":   ease.OutElastic,
	"inOutElastic": ease.InOutElastic,
	"inBounce":     ease.InBounce,
	"outBounce":    ease.OutBounce,
	"inOutBounce":  ease.InOutBounce,
}
