package trellis

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink collects redraw events.
type recordingSink struct {
	events []RedrawEvent
}

func (s *recordingSink) EmitRedraw(e RedrawEvent) {
	s.events = append(s.events, e)
}

func TestHostStartsClean(t *testing.T) {
	h := NewHost(100, 50)
	assert.False(t, h.Step(time.Millisecond))
	assert.Equal(t, 0, h.RedrawCount())
	w, ht := h.Layout(1920, 1080)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, ht)
}

func TestHostSetRootRedrawsOnce(t *testing.T) {
	h := NewHost(10, 10)
	h.SetRoot(resolveTree(node(KindGroup, nil, node(KindFill, nil))))
	assert.True(t, h.Step(time.Millisecond))
	assert.False(t, h.Step(time.Millisecond))
	assert.Equal(t, 1, h.RedrawCount())
	assert.Equal(t, 1, h.Picture().Len())
}

func TestHostRedrawsOncePerStep(t *testing.T) {
	h := NewHost(10, 10)
	a, b := NewValue(0.0), NewValue(Color{})
	h.RegisterValues([]Source{a, b})

	a.Set(1)
	a.Set(2)
	b.Set(ColorWhite)
	assert.True(t, h.Step(time.Millisecond))
	assert.Equal(t, 1, h.RedrawCount())

	assert.False(t, h.Step(time.Millisecond), "no change, no redraw")

	// Unchanged values still count: every Set notifies.
	a.Set(2)
	assert.True(t, h.Step(time.Millisecond))
	assert.Equal(t, 2, h.RedrawCount())
}

func TestHostUnregister(t *testing.T) {
	h := NewHost(10, 10)
	v := NewValue(0.0)
	unregister := h.RegisterValues([]Source{v})
	assert.Equal(t, 1, h.Registrations())
	assert.Equal(t, 1, v.NumListeners())

	unregister()
	unregister()
	assert.Equal(t, 0, h.Registrations())
	assert.Equal(t, 0, v.NumListeners())

	v.Set(5)
	assert.False(t, h.Step(time.Millisecond))
}

func TestHostAnimationDrivesRedraws(t *testing.T) {
	h := NewHost(10, 10)
	v := NewValue(0.0)
	h.RegisterValues([]Source{v})
	anim := RunTiming(v, h.Clock(), TimingConfig{From: 0, To: 1, Duration: 25 * time.Millisecond})

	redraws := 0
	for range 10 {
		if h.Step(10 * time.Millisecond) {
			redraws++
		}
	}
	assert.True(t, anim.Done())
	assert.Equal(t, 1.0, v.Get())
	// One redraw per step while the animation runs, none after.
	assert.Equal(t, 3, redraws)
	assert.Equal(t, 0, h.Clock().Len())
}

func TestHostRedrawSink(t *testing.T) {
	h := NewHost(10, 10)
	sink := &recordingSink{}
	h.SetRedrawSink(sink)
	h.SetRoot(resolveTree(node(KindFill, nil)))

	h.Step(16 * time.Millisecond)
	h.Step(16 * time.Millisecond)
	h.Invalidate()
	h.Step(16 * time.Millisecond)

	require.Len(t, sink.events, 2)
	assert.Equal(t, RedrawEvent{Frame: 1, Elapsed: 16 * time.Millisecond, Redraws: 1, Ops: 1}, sink.events[0])
	assert.Equal(t, uint64(3), sink.events[1].Frame)
	assert.Equal(t, 2, sink.events[1].Redraws)
}

func TestHostUpdateRunsUpdateFunc(t *testing.T) {
	h := NewHost(10, 10)
	calls := 0
	h.SetUpdateFunc(func() error {
		calls++
		return nil
	})
	require.NoError(t, h.Update())
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), h.Clock().Frame())

	errStop := errors.New("stop")
	h.SetUpdateFunc(func() error { return errStop })
	assert.ErrorIs(t, h.Update(), errStop)
	assert.Equal(t, uint64(1), h.Clock().Frame(), "failed update does not step")
}

func TestHostDisposeDropsRegistrations(t *testing.T) {
	h := NewHost(10, 10)
	v := NewValue(0.0)
	h.RegisterValues([]Source{v})
	h.RegisterValues([]Source{v})
	assert.Equal(t, 2, v.NumListeners())

	h.Dispose()
	assert.Equal(t, 0, h.Registrations())
	assert.Equal(t, 0, v.NumListeners())
}

func TestRunConfigApply(t *testing.T) {
	h := NewHost(10, 10)
	defer h.SetDebugMode(false)

	RunConfig{ClearColor: "#102030", ShowFPS: true, Debug: true}.apply(h)
	assert.InDelta(t, 0x10/255.0, h.ClearColor.R, 1e-9)
	assert.InDelta(t, 0x30/255.0, h.ClearColor.B, 1e-9)
	assert.True(t, h.showFPS)
	assert.True(t, h.debug)
	assert.True(t, globalDebug)
}
