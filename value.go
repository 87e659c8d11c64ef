package trellis

import "slices"

// Source is the type-erased identity of an observable value. The dependency
// manager and host view only ever see values through this interface, so they
// never inspect the value's type.
type Source interface {
	// ValueID returns the process-unique identity of the value.
	ValueID() uint64
	// AnyValue returns the current value.
	AnyValue() any
	// AddAnyListener registers fn and returns a capability that removes
	// exactly that registration. The capability is idempotent.
	AddAnyListener(fn func(any)) (unsubscribe func())
}

// Observable is a readable value of type T with change notification.
type Observable[T any] interface {
	Source
	Get() T
	AddListener(fn func(T)) (unsubscribe func())
}

// valueIDCounter is a plain counter (no atomic, trellis is single-threaded).
var valueIDCounter uint64

func nextValueID() uint64 {
	valueIDCounter++
	return valueIDCounter
}

// listenerList is an ordered listener sequence that tolerates additions and
// removals while it is being notified: notify iterates a snapshot and skips
// entries removed after the snapshot was taken.
type listenerList[T any] struct {
	entries []*listenerEntry[T]
}

type listenerEntry[T any] struct {
	fn      func(T)
	removed bool
}

func (l *listenerList[T]) add(fn func(T)) func() {
	e := &listenerEntry[T]{fn: fn}
	l.entries = append(l.entries, e)
	return func() {
		if e.removed {
			return
		}
		e.removed = true
		if i := slices.Index(l.entries, e); i >= 0 {
			l.entries = slices.Delete(l.entries, i, i+1)
		}
	}
}

func (l *listenerList[T]) notify(v T) {
	if len(l.entries) == 0 {
		return
	}
	snapshot := slices.Clone(l.entries)
	for _, e := range snapshot {
		if !e.removed {
			e.fn(v)
		}
	}
}

func (l *listenerList[T]) len() int {
	return len(l.entries)
}

// Value is a mutable cell of type T. Set stores the new value and
// synchronously notifies every listener in registration order, even when the
// new value equals the old one. Equality between values is identity-based.
//
// A value has a single animation slot: starting an animation on it cancels
// the one already running.
type Value[T any] struct {
	id        uint64
	v         T
	listeners listenerList[T]
	animation *Animation
}

// NewValue creates a value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{id: nextValueID(), v: initial}
}

// ValueID implements Source.
func (v *Value[T]) ValueID() uint64 {
	return v.id
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	return v.v
}

// AnyValue implements Source.
func (v *Value[T]) AnyValue() any {
	return v.v
}

// Set stores x and notifies listeners with it. Listeners may call Set on
// other values, or add and remove listeners on this one.
func (v *Value[T]) Set(x T) {
	v.v = x
	v.listeners.notify(x)
}

// Modify applies fn to the current value and sets the result.
func (v *Value[T]) Modify(fn func(T) T) {
	v.Set(fn(v.v))
}

// AddListener registers fn. The returned function removes exactly this
// registration; calling it more than once is a no-op.
func (v *Value[T]) AddListener(fn func(T)) (unsubscribe func()) {
	return v.listeners.add(fn)
}

// AddAnyListener implements Source.
func (v *Value[T]) AddAnyListener(fn func(any)) (unsubscribe func()) {
	return v.listeners.add(func(x T) { fn(x) })
}

// Animation returns the animation currently driving the value, or nil.
func (v *Value[T]) Animation() *Animation {
	return v.animation
}

// CancelAnimation cancels the animation driving the value, if any. The value
// keeps its last set state.
func (v *Value[T]) CancelAnimation() {
	if a := v.animation; a != nil {
		a.Cancel()
	}
}

// attachAnimation places a in the animation slot. The slot is cleared when a
// completes or is cancelled.
func (v *Value[T]) attachAnimation(a *Animation) *Animation {
	v.animation = a
	a.release = func() {
		if v.animation == a {
			v.animation = nil
		}
	}
	return a
}

// NumListeners returns the number of live listener registrations.
func (v *Value[T]) NumListeners() int {
	return v.listeners.len()
}
