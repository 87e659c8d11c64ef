package trellis

// Derived is a read-only value recomputed from other values. It subscribes to
// each dependency once and notifies its own listeners after every recompute.
type Derived[T any] struct {
	id        uint64
	v         T
	fn        func() T
	unsubs    []func()
	listeners listenerList[T]
}

// Derive creates a value holding fn(), recomputed whenever any of deps
// changes. Call Dispose to detach from deps.
func Derive[T any](fn func() T, deps ...Source) *Derived[T] {
	d := &Derived[T]{id: nextValueID(), fn: fn, v: fn()}
	for _, dep := range deps {
		d.unsubs = append(d.unsubs, dep.AddAnyListener(func(any) { d.recompute() }))
	}
	return d
}

func (d *Derived[T]) recompute() {
	d.v = d.fn()
	d.listeners.notify(d.v)
}

// ValueID implements Source.
func (d *Derived[T]) ValueID() uint64 { return d.id }

// Get returns the last computed value.
func (d *Derived[T]) Get() T { return d.v }

// AnyValue implements Source.
func (d *Derived[T]) AnyValue() any { return d.v }

// AddListener registers fn for recomputes.
func (d *Derived[T]) AddListener(fn func(T)) (unsubscribe func()) {
	return d.listeners.add(fn)
}

// AddAnyListener implements Source.
func (d *Derived[T]) AddAnyListener(fn func(any)) (unsubscribe func()) {
	return d.listeners.add(func(x T) { fn(x) })
}

// Dispose detaches from every dependency. The value keeps its last result.
func (d *Derived[T]) Dispose() {
	for _, u := range d.unsubs {
		u()
	}
	d.unsubs = nil
}
