package trellis

// Typed accessors over a node's resolved prop snapshot. Each returns def
// when the key is absent or its value has an unexpected type.

// Float returns the resolved key as a float64.
func (n *Node) Float(key string, def float64) float64 {
	if f, ok := toFloat(n.resolved[key]); ok {
		return f
	}
	return def
}

// ColorProp returns the resolved key as a Color. Strings are parsed with ParseColor.
func (n *Node) ColorProp(key string, def Color) Color {
	if c, ok := toColor(n.resolved[key]); ok {
		return c
	}
	return def
}

// Vec2Prop returns the resolved key as a Vec2.
func (n *Node) Vec2Prop(key string, def Vec2) Vec2 {
	if v, ok := toVec2(n.resolved[key]); ok {
		return v
	}
	return def
}

// StringProp returns the resolved key as a string.
func (n *Node) StringProp(key, def string) string {
	if s, ok := n.resolved[key].(string); ok {
		return s
	}
	return def
}

// BoolProp returns the resolved key as a bool.
func (n *Node) BoolProp(key string, def bool) bool {
	if b, ok := n.resolved[key].(bool); ok {
		return b
	}
	return def
}

// Floats returns the resolved key as a float64 slice, or nil.
func (n *Node) Floats(key string) []float64 {
	switch v := n.resolved[key].(type) {
	case []float64:
		return v
	case []any:
		out := make([]float64, 0, len(v))
		for _, e := range v {
			f, ok := toFloat(e)
			if !ok {
				return nil
			}
			out = append(out, f)
		}
		return out
	}
	return nil
}

// Colors returns the resolved key as a Color slice, or nil.
func (n *Node) Colors(key string) []Color {
	switch v := n.resolved[key].(type) {
	case []Color:
		return v
	case []string:
		out := make([]Color, 0, len(v))
		for _, s := range v {
			c, err := ParseColor(s)
			if err != nil {
				return nil
			}
			out = append(out, c)
		}
		return out
	case []any:
		out := make([]Color, 0, len(v))
		for _, e := range v {
			c, ok := toColor(e)
			if !ok {
				return nil
			}
			out = append(out, c)
		}
		return out
	}
	return nil
}

// RectProp returns the resolved key as a Rect.
func (n *Node) RectProp(key string) (Rect, bool) {
	switch v := n.resolved[key].(type) {
	case Rect:
		return v, true
	case []float64:
		if len(v) == 4 {
			return Rect{v[0], v[1], v[2], v[3]}, true
		}
	case []any:
		if f := n.Floats(key); len(f) == 4 {
			return Rect{f[0], f[1], f[2], f[3]}, true
		}
	}
	return Rect{}, false
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint8:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toColor(v any) (Color, bool) {
	switch v := v.(type) {
	case Color:
		return v, true
	case string:
		c, err := ParseColor(v)
		return c, err == nil
	case []float64:
		switch len(v) {
		case 3:
			return Color{v[0], v[1], v[2], 1}, true
		case 4:
			return Color{v[0], v[1], v[2], v[3]}, true
		}
	case []any:
		f := make([]float64, len(v))
		for i, e := range v {
			x, ok := toFloat(e)
			if !ok {
				return Color{}, false
			}
			f[i] = x
		}
		return toColor(f)
	}
	return Color{}, false
}

func toVec2(v any) (Vec2, bool) {
	switch v := v.(type) {
	case Vec2:
		return v, true
	case [2]float64:
		return Vec2{v[0], v[1]}, true
	case []float64:
		if len(v) == 2 {
			return Vec2{v[0], v[1]}, true
		}
	case []any:
		if len(v) == 2 {
			x, okX := toFloat(v[0])
			y, okY := toFloat(v[1])
			return Vec2{x, y}, okX && okY
		}
	}
	return Vec2{}, false
}
