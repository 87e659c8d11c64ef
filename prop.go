package trellis

import (
	"reflect"
	"slices"
)

// Prop is one node property: either a literal, or a binding to an observable
// value (optionally mapped through a selector). Bound props are resolved to a
// plain snapshot once per update and re-resolved only when the value changes.
type Prop struct {
	lit any
	src Source
	sel func(any) any
}

// Lit returns a literal prop.
func Lit(v any) Prop {
	return Prop{lit: v}
}

// Bind returns a prop that reads src.
func Bind(src Source) Prop {
	return Prop{src: src}
}

// Select returns a prop that reads fn(src.Get()).
func Select[T, U any](src Observable[T], fn func(T) U) Prop {
	return Prop{src: src, sel: func(v any) any { return fn(v.(T)) }}
}

// Source returns the bound value, or nil for a literal.
func (p Prop) Source() Source {
	return p.src
}

// IsBound reports whether the prop reads an observable value.
func (p Prop) IsBound() bool {
	return p.src != nil
}

// Literal returns the literal value (nil for bound props).
func (p Prop) Literal() any {
	return p.lit
}

// current returns the prop's value right now.
func (p Prop) current() any {
	if p.src == nil {
		return p.lit
	}
	return p.apply(p.src.AnyValue())
}

// apply maps a freshly notified value through the selector, if any.
func (p Prop) apply(v any) any {
	if p.sel != nil {
		return p.sel(v)
	}
	return v
}

// equalProps reports whether a and b resolve the same way. Selector props are
// never equal to anything but themselves since functions are not comparable.
func equalProps(a, b Prop) bool {
	if a.src != nil || b.src != nil {
		if a.src == nil || b.src == nil || a.src.ValueID() != b.src.ValueID() {
			return false
		}
		return a.sel == nil && b.sel == nil
	}
	return reflect.DeepEqual(a.lit, b.lit)
}

// sameSnapshot reports whether two resolved values are interchangeable.
// Comparable values (pointers included) compare with ==, the rest deeply.
func sameSnapshot(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// Props maps property keys to props.
type Props map[string]Prop

// PropsOf converts a plain map into Props: Prop values are kept, Source
// values become bindings, anything else becomes a literal.
func PropsOf(m map[string]any) Props {
	props := make(Props, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case Prop:
			props[k] = v
		case Source:
			props[k] = Bind(v)
		default:
			props[k] = Lit(v)
		}
	}
	return props
}

// sortedKeys returns the keys in lexical order so resolution, and therefore
// subscription order, is deterministic.
func (ps Props) sortedKeys() []string {
	keys := make([]string, 0, len(ps))
	for k := range ps {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// diffProps returns the keys whose props differ between old and next,
// including keys present in only one of them.
func diffProps(old, next Props) []string {
	var changed []string
	for k, np := range next {
		if op, ok := old[k]; !ok || !equalProps(op, np) {
			changed = append(changed, k)
		}
	}
	for k := range old {
		if _, ok := next[k]; !ok {
			changed = append(changed, k)
		}
	}
	slices.Sort(changed)
	return changed
}

// sameBindings reports whether old and next read exactly the same values
// under the same keys. Selectors and literals may differ.
func sameBindings(old, next Props) bool {
	for k, np := range next {
		if !sameSource(old[k].src, np.src) {
			return false
		}
	}
	for k, op := range old {
		if _, ok := next[k]; !ok && op.src != nil {
			return false
		}
	}
	return true
}

func sameSource(a, b Source) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ValueID() == b.ValueID()
}
