package trellis

import "time"

// Clock is the per-frame tick source. The host calls Tick once per update;
// subscribers (animations, clock values) run in subscription order and may
// cancel themselves or others from inside the callback.
//
// There is no global clock. Each Host owns one.
type Clock struct {
	subs    listenerList[time.Duration]
	elapsed time.Duration
	frames  uint64
}

// NewClock creates a stopped clock with no subscribers.
func NewClock() *Clock {
	return &Clock{}
}

// Subscribe registers fn to be called with the frame delta on every Tick.
// The returned cancel function is idempotent.
func (c *Clock) Subscribe(fn func(dt time.Duration)) (cancel func()) {
	return c.subs.add(fn)
}

// Tick advances the clock by dt and notifies subscribers.
func (c *Clock) Tick(dt time.Duration) {
	c.elapsed += dt
	c.frames++
	c.subs.notify(dt)
}

// Len returns the number of live subscriptions.
func (c *Clock) Len() int {
	return c.subs.len()
}

// Elapsed returns the total time ticked so far.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// Frame returns the number of ticks so far.
func (c *Clock) Frame() uint64 {
	return c.frames
}

// ClockValue is an observable holding the milliseconds elapsed since Start,
// advanced by a Clock. Stop freezes it; Start resumes from the frozen value.
type ClockValue struct {
	*Value[float64]
	cancel func()
}

// NewClockValue creates a stopped clock value at zero.
func NewClockValue() *ClockValue {
	return &ClockValue{Value: NewValue(0.0)}
}

// Start attaches to c. No-op if already running.
func (cv *ClockValue) Start(c *Clock) {
	if cv.cancel != nil {
		return
	}
	cv.cancel = c.Subscribe(func(dt time.Duration) {
		cv.Set(cv.Get() + float64(dt)/float64(time.Millisecond))
	})
}

// Stop detaches from the clock, leaving the value where it is.
func (cv *ClockValue) Stop() {
	if cv.cancel == nil {
		return
	}
	cv.cancel()
	cv.cancel = nil
}

// Running reports whether the value is attached to a clock.
func (cv *ClockValue) Running() bool {
	return cv.cancel != nil
}
