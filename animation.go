package trellis

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// RepeatMode controls what a timing animation does when it reaches its end.
type RepeatMode uint8

const (
	RepeatNone RepeatMode = iota // stop at To
	RepeatLoop                   // jump back to From and run again
	RepeatYoyo                   // run back toward From, then forward again
)

// TimingConfig describes a duration-based animation between two values.
type TimingConfig struct {
	From, To float64
	Duration time.Duration
	// Easing defaults to ease.Linear.
	Easing ease.TweenFunc
	Repeat RepeatMode
	// Iterations limits how many legs a repeating animation runs.
	// Zero repeats until cancelled.
	Iterations int
}

// SpringConfig describes a damped spring pulling From toward To.
type SpringConfig struct {
	From      float64 `yaml:"from"`
	To        float64 `yaml:"to"`
	Velocity  float64 `yaml:"velocity"`  // initial velocity in units per second
	Mass      float64 `yaml:"mass"`      // default 1
	Stiffness float64 `yaml:"stiffness"` // default 100
	Damping   float64 `yaml:"damping"`   // default 10
	// The spring settles when both displacement and speed drop below these.
	RestDisplacement float64 `yaml:"restDisplacement"` // default 0.001
	RestSpeed        float64 `yaml:"restSpeed"`        // default 0.001
}

// DecayConfig describes motion that starts at Velocity and slows down.
type DecayConfig struct {
	From         float64 `yaml:"from"`
	Velocity     float64 `yaml:"velocity"`     // units per second
	Deceleration float64 `yaml:"deceleration"` // velocity factor per millisecond, default 0.998
	RestSpeed    float64 `yaml:"restSpeed"`    // default 0.5 units per second
}

// Animation drives successive Set calls on a value from clock ticks until it
// completes or is cancelled. Completion and cancellation both release the
// clock subscription.
//
// There is no global animation manager. Each animation subscribes to the
// Clock passed to its constructor and occupies its target's animation slot
// until it stops.
type Animation struct {
	step    func(dt time.Duration) bool
	cancel  func()
	release func()
	done    bool
	// OnDone runs once when the animation completes on its own.
	// It does not run on Cancel.
	OnDone func()
}

func startAnimation(clock *Clock, step func(dt time.Duration) bool) *Animation {
	a := &Animation{step: step}
	a.cancel = clock.Subscribe(a.tick)
	return a
}

func (a *Animation) tick(dt time.Duration) {
	if a.done {
		return
	}
	if a.step(dt) {
		a.finish()
		if a.OnDone != nil {
			a.OnDone()
		}
	}
}

func (a *Animation) finish() {
	a.done = true
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.release != nil {
		a.release()
		a.release = nil
	}
}

// Cancel stops the animation and leaves the value at its last set state.
// Safe to call more than once, after completion, and from inside a listener
// of the animated value.
func (a *Animation) Cancel() {
	if a.done {
		return
	}
	a.finish()
}

// Done reports whether the animation completed or was cancelled.
func (a *Animation) Done() bool {
	return a.done
}

// RunTiming animates target from cfg.From to cfg.To over cfg.Duration.
// Any animation already driving target is cancelled first, then target is set
// to cfg.From.
func RunTiming(target *Value[float64], clock *Clock, cfg TimingConfig) *Animation {
	target.CancelAnimation()
	target.Set(cfg.From)
	return target.attachAnimation(startAnimation(clock, tweenStep(cfg, target.Set)))
}

// RunTimingTo animates target from its current state to `to`, ignoring
// cfg.From and cfg.To. Any animation already driving target is cancelled and
// the new one picks up where it left the value.
func RunTimingTo(target *Value[float64], clock *Clock, to float64, cfg TimingConfig) *Animation {
	target.CancelAnimation()
	cfg.From, cfg.To = target.Get(), to
	return target.attachAnimation(startAnimation(clock, tweenStep(cfg, target.Set)))
}

// RunColorTiming animates target from one color to another, easing the mix
// factor with cfg (From and To are ignored).
func RunColorTiming(target *Value[Color], clock *Clock, from, to Color, cfg TimingConfig) *Animation {
	target.CancelAnimation()
	cfg.From, cfg.To = 0, 1
	target.Set(from)
	return target.attachAnimation(startAnimation(clock, tweenStep(cfg, func(t float64) {
		target.Set(MixColors(t, from, to))
	})))
}

// tweenStep builds the per-tick step for a gween-backed timing animation.
func tweenStep(cfg TimingConfig, set func(float64)) func(time.Duration) bool {
	if cfg.Easing == nil {
		cfg.Easing = ease.Linear
	}
	if cfg.Duration <= 0 {
		return func(time.Duration) bool {
			set(cfg.To)
			return true
		}
	}
	from, to := cfg.From, cfg.To
	tw := gween.New(float32(from), float32(to), float32(cfg.Duration.Seconds()), cfg.Easing)
	legs := 0
	return func(dt time.Duration) bool {
		val, finished := tw.Update(float32(dt.Seconds()))
		if !finished {
			set(float64(val))
			return false
		}
		// Land exactly on the leg's end rather than the float32 approximation.
		set(to)
		legs++
		if cfg.Repeat == RepeatNone || (cfg.Iterations > 0 && legs >= cfg.Iterations) {
			return true
		}
		switch cfg.Repeat {
		case RepeatLoop:
			tw.Reset()
		case RepeatYoyo:
			from, to = to, from
			tw = gween.New(float32(from), float32(to), float32(cfg.Duration.Seconds()), cfg.Easing)
		}
		return false
	}
}

// springSubstep keeps integration stable for stiff springs at low frame rates.
const springSubstep = time.Millisecond

// RunSpring animates target with a damped harmonic oscillator.
func RunSpring(target *Value[float64], clock *Clock, cfg SpringConfig) *Animation {
	if cfg.Mass <= 0 {
		cfg.Mass = 1
	}
	if cfg.Stiffness <= 0 {
		cfg.Stiffness = 100
	}
	if cfg.Damping < 0 {
		cfg.Damping = 0
	} else if cfg.Damping == 0 {
		cfg.Damping = 10
	}
	if cfg.RestDisplacement <= 0 {
		cfg.RestDisplacement = 0.001
	}
	if cfg.RestSpeed <= 0 {
		cfg.RestSpeed = 0.001
	}
	target.CancelAnimation()
	x, v := cfg.From, cfg.Velocity
	target.Set(x)
	return target.attachAnimation(startAnimation(clock, func(dt time.Duration) bool {
		for remaining := dt; remaining > 0; remaining -= springSubstep {
			h := min(remaining, springSubstep).Seconds()
			force := -cfg.Stiffness*(x-cfg.To) - cfg.Damping*v
			v += force / cfg.Mass * h
			x += v * h
		}
		if math.Abs(x-cfg.To) < cfg.RestDisplacement && math.Abs(v) < cfg.RestSpeed {
			target.Set(cfg.To)
			return true
		}
		target.Set(x)
		return false
	}))
}

// RunDecay animates target from cfg.From with a decaying velocity, stopping
// once the speed drops below cfg.RestSpeed.
func RunDecay(target *Value[float64], clock *Clock, cfg DecayConfig) *Animation {
	if cfg.Deceleration <= 0 || cfg.Deceleration >= 1 {
		cfg.Deceleration = 0.998
	}
	if cfg.RestSpeed <= 0 {
		cfg.RestSpeed = 0.5
	}
	target.CancelAnimation()
	x, v := cfg.From, cfg.Velocity
	target.Set(x)
	return target.attachAnimation(startAnimation(clock, func(dt time.Duration) bool {
		ms := float64(dt) / float64(time.Millisecond)
		k := math.Pow(cfg.Deceleration, ms)
		// Exact integral of v*k^t over the frame.
		if lnk := math.Log(cfg.Deceleration); lnk != 0 {
			x += v / 1000 * (k - 1) / lnk
		}
		v *= k
		target.Set(x)
		return math.Abs(v) < cfg.RestSpeed
	}))
}
