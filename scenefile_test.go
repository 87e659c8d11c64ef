package trellis

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testScene = `
values:
  t: {type: number, initial: 0.5}
  tint: {type: color, initial: "#ff0000"}
  center: {type: point, initial: [10, 20]}
  on: {type: bool, initial: true}
  label: {type: string, initial: hi}
animations:
  - value: t
    timing: {from: 0, to: 1, duration: 100ms, easing: inOutQuad, repeat: loop, iterations: 2}
root:
  kind: group
  key: top
  props: {translateX: 5}
  children:
    - kind: circle
      props:
        c: {value: center}
        r: {value: t, map: {input: [0, 1], output: [10, 20]}}
        color: {value: t, map: {input: [0, 1], colors: [black, white]}}
        visible: {value: on}
    - kind: rect
      props:
        x: {value: t, map: {input: [0, 1], output: [0, 100], extrapolate: clamp}}
        clip: {x: 1}
`

func TestParseScene(t *testing.T) {
	s, err := ParseScene([]byte(testScene))
	require.NoError(t, err)

	require.Len(t, s.Values, 5)
	assert.Equal(t, 0.5, s.Number("t").Get())
	assert.Equal(t, Color{1, 0, 0, 1}, s.Values["tint"].AnyValue())
	assert.Equal(t, Vec2{10, 20}, s.Values["center"].AnyValue())
	assert.Equal(t, true, s.Values["on"].AnyValue())
	assert.Equal(t, "hi", s.Values["label"].AnyValue())
	assert.Nil(t, s.Number("tint"))
	assert.Nil(t, s.Number("missing"))

	root := s.Root
	assert.Equal(t, KindGroup, root.Kind)
	assert.Equal(t, "top", root.Key)
	assert.Equal(t, 5, root.Props["translateX"].Literal())
	require.Len(t, root.Children, 2)

	circle := root.Children[0]
	assert.Equal(t, KindCircle, circle.Kind)
	assert.Same(t, s.Values["center"], circle.Props["c"].Source())
	assert.Equal(t, 15.0, circle.Props["r"].current())
	assert.Equal(t, Color{0.5, 0.5, 0.5, 1}, circle.Props["color"].current())
	assert.Equal(t, true, circle.Props["visible"].current())

	rect := root.Children[1]
	assert.Equal(t, 50.0, rect.Props["x"].current())
	// A map without "value" stays a literal.
	assert.False(t, rect.Props["clip"].IsBound())
}

func TestSceneMappedPropsFollowValue(t *testing.T) {
	s, err := ParseScene([]byte(testScene))
	require.NoError(t, err)
	r, _ := newTestRoot(t)
	require.NoError(t, r.Render(s.Root))

	rect := r.Container().ChildAt(0).ChildAt(1)
	s.Number("t").Set(2)
	v, _ := rect.Get("x")
	assert.Equal(t, 100.0, v, "clamped")

	circle := r.Container().ChildAt(0).ChildAt(0)
	v, _ = circle.Get("r")
	assert.Equal(t, 30.0, v, "extended")
}

func TestSceneStartAnimations(t *testing.T) {
	s, err := ParseScene([]byte(testScene))
	require.NoError(t, err)

	clock := NewClock()
	anims := s.Start(clock)
	require.Len(t, anims, 1)
	assert.Equal(t, 0.0, s.Number("t").Get(), "timing starts at from")

	tickN(clock, 30, 10*time.Millisecond)
	assert.True(t, anims[0].Done(), "two loop iterations")
	assert.Equal(t, 1.0, s.Number("t").Get())
}

func TestSceneSpringAndDecay(t *testing.T) {
	s, err := ParseScene([]byte(`
values:
  a: {initial: 0}
  b: {type: number}
animations:
  - value: a
    spring: {from: 10, to: 0, stiffness: 200, damping: 20}
  - value: b
    decay: {from: 0, velocity: 1000}
root: {kind: fill}
`))
	require.NoError(t, err)
	clock := NewClock()
	anims := s.Start(clock)
	require.Len(t, anims, 2)
	assert.Equal(t, 10.0, s.Number("a").Get())

	tickN(clock, 600, 10*time.Millisecond)
	assert.True(t, anims[0].Done())
	assert.Equal(t, 0.0, s.Number("a").Get())
	assert.Greater(t, s.Number("b").Get(), 100.0)
}

func TestSceneAnimationsShareValue(t *testing.T) {
	s, err := ParseScene([]byte(`
values:
  a: {initial: 4}
  b: {initial: 4}
animations:
  - value: a
    timing: {from: 0, to: 10, duration: 1s}
  - value: a
    timing: {to: 1, duration: 1s}
  - value: b
    timing: {to: 8, duration: 1s}
root: {kind: fill}
`))
	require.NoError(t, err)
	clock := NewClock()
	anims := s.Start(clock)
	require.Len(t, anims, 3)

	assert.True(t, anims[0].Done(), "replaced by the second animation on a")
	assert.Same(t, anims[1], s.Number("a").Animation())
	assert.Equal(t, 2, clock.Len())
	assert.Equal(t, 0.0, s.Number("a").Get())
	assert.Equal(t, 4.0, s.Number("b").Get(), "no from starts at the current value")

	clock.Tick(500 * time.Millisecond)
	assert.InDelta(t, 0.5, s.Number("a").Get(), 1e-6)
	assert.InDelta(t, 6, s.Number("b").Get(), 1e-5)
}

func TestParseSceneErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"no root", `values: {}`, "no root"},
		{"bad yaml", `root: [`, "parse scene"},
		{"unknown kind", `root: {kind: hexagon}`, "hexagon"},
		{"unknown type", "values: {a: {type: vector}}\nroot: {kind: fill}", "unknown value type"},
		{"bad number", "values: {a: {initial: abc}}\nroot: {kind: fill}", "not a number"},
		{"bad color", "values: {a: {type: color, initial: nope}}\nroot: {kind: fill}", "not a color"},
		{"unknown value", "root: {kind: rect, props: {x: {value: nope}}}", `unknown value "nope"`},
		{
			"animate color",
			"values: {c: {type: color}}\nanimations: [{value: c, timing: {to: 1}}]\nroot: {kind: fill}",
			"not a number value",
		},
		{
			"two drivers",
			"values: {a: {}}\nanimations: [{value: a, timing: {to: 1}, decay: {velocity: 1}}]\nroot: {kind: fill}",
			"exactly one",
		},
		{
			"no driver",
			"values: {a: {}}\nanimations: [{value: a}]\nroot: {kind: fill}",
			"exactly one",
		},
		{
			"bad duration",
			"values: {a: {}}\nanimations: [{value: a, timing: {duration: soon}}]\nroot: {kind: fill}",
			"duration",
		},
		{
			"bad easing",
			"values: {a: {}}\nanimations: [{value: a, timing: {easing: wobble}}]\nroot: {kind: fill}",
			"unknown easing",
		},
		{
			"bad repeat",
			"values: {a: {}}\nanimations: [{value: a, timing: {repeat: forever}}]\nroot: {kind: fill}",
			"unknown repeat",
		},
		{
			"unsorted input",
			"values: {a: {}}\nroot: {kind: rect, props: {x: {value: a, map: {input: [1, 0], output: [0, 1]}}}}",
			"ascending",
		},
		{
			"short input",
			"values: {a: {}}\nroot: {kind: rect, props: {x: {value: a, map: {input: [0], output: [0]}}}}",
			"at least two",
		},
		{
			"length mismatch",
			"values: {a: {}}\nroot: {kind: rect, props: {x: {value: a, map: {input: [0, 1], output: [0]}}}}",
			"differ in length",
		},
		{
			"colors mismatch",
			"values: {a: {}}\nroot: {kind: rect, props: {color: {value: a, map: {input: [0, 1], colors: [red]}}}}",
			"differ in length",
		},
		{
			"bad map color",
			"values: {a: {}}\nroot: {kind: rect, props: {color: {value: a, map: {input: [0, 1], colors: [red, nope]}}}}",
			"not a color",
		},
		{
			"map non-number",
			"values: {p: {type: point}}\nroot: {kind: rect, props: {c: {value: p, map: {input: [0, 1], output: [0, 1]}}}}",
			"only number values",
		},
		{
			"bad extrapolate",
			"values: {a: {}}\nroot: {kind: rect, props: {x: {value: a, map: {input: [0, 1], output: [0, 1], extrapolate: wrap}}}}",
			"unknown extrapolate",
		},
		{
			"nested error",
			"root: {kind: group, children: [{kind: blob}]}",
			"blob",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseScene([]byte(c.yaml))
			require.Error(t, err)
			assert.ErrorContains(t, err, c.want)
		})
	}
}

func TestLoadScene(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScene), 0o644))
	s, err := LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, KindGroup, s.Root.Kind)

	_, err = LoadScene(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "load scene")

	require.NoError(t, os.WriteFile(path, []byte("values: {}"), 0o644))
	_, err = LoadScene(path)
	assert.ErrorIs(t, err, errNoRoot)
	assert.ErrorContains(t, err, path)
}

func TestGallerySceneLoads(t *testing.T) {
	s, err := LoadScene(filepath.Join("examples", "gallery", "gallery.yaml"))
	require.NoError(t, err)

	h := NewHost(800, 600)
	r := NewRoot(h)
	require.NoError(t, r.Render(s.Root))
	anims := s.Start(h.Clock())
	assert.NotEmpty(t, anims)
	assert.True(t, h.Step(16*time.Millisecond))
	assert.True(t, h.Step(16*time.Millisecond), "animations keep the scene dirty")
	assert.Positive(t, h.Picture().Len())
	require.NoError(t, r.Deps().Check())
}

func TestEasingNames(t *testing.T) {
	for name, fn := range easings {
		assert.NotNil(t, fn, name)
		assert.InDelta(t, 0, fn(0, 0, 1, 1), 1e-4, name)
		assert.InDelta(t, 1, fn(1, 0, 1, 1), 1e-4, name)
	}
}
