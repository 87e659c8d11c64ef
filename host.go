package trellis

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RedrawSink is the interface for optional redraw observers (the ECS bridge).
type RedrawSink interface {
	EmitRedraw(event RedrawEvent)
}

// RedrawEvent describes one redraw of a host.
type RedrawEvent struct {
	Frame   uint64        // clock frame the redraw happened in
	Elapsed time.Duration // clock time at the redraw
	Redraws int           // total redraws so far, this one included
	Ops     int           // recorded picture commands
}

// Host is the Ebitengine host view: it owns the drawing tree's root, the
// clock animations run on and the recorded scene picture. It implements
// ebiten.Game and HostView.
//
// Each Update steps the clock once. If any registered value changed during
// the step, or the tree was invalidated, the scene is re-recorded exactly
// once; Draw replays the last recording every frame.
type Host struct {
	// ClearColor fills the screen before the picture is replayed.
	ClearColor Color

	root    *Node
	clock   *Clock
	picture *Picture
	pool    layerPool
	sink    RedrawSink
	update  func() error

	width, height int
	showFPS       bool

	registrations map[int][]func()
	nextReg       int

	dirty   bool
	redraws int
	debug   bool
}

// NewHost creates a host with a logical screen of the given size.
func NewHost(width, height int) *Host {
	return &Host{
		ClearColor:    ColorWhite,
		clock:         NewClock(),
		picture:       NewPicture(),
		width:         width,
		height:        height,
		registrations: make(map[int][]func()),
	}
}

// SetRoot replaces the drawing tree and schedules a redraw.
func (h *Host) SetRoot(n *Node) {
	h.root = n
	h.dirty = true
}

// Root returns the drawing tree's root, or nil.
func (h *Host) Root() *Node {
	return h.root
}

// Clock returns the clock stepped by Update.
func (h *Host) Clock() *Clock {
	return h.clock
}

// Picture returns the last recorded scene picture.
func (h *Host) Picture() *Picture {
	return h.picture
}

// RedrawCount returns how many times the scene has been recorded.
func (h *Host) RedrawCount() int {
	return h.redraws
}

// Registrations returns the number of live value registrations.
func (h *Host) Registrations() int {
	return len(h.registrations)
}

// RegisterValues makes a change to any of values schedule a redraw. The
// returned function removes the registration; calling it again is a no-op.
func (h *Host) RegisterValues(values []Source) (unregister func()) {
	id := h.nextReg
	h.nextReg++
	unsubs := make([]func(), len(values))
	for i, v := range values {
		unsubs[i] = v.AddAnyListener(func(any) { h.dirty = true })
	}
	h.registrations[id] = unsubs
	if h.debug {
		logger.Debug("trellis: registered values", "registration", id, "values", len(values))
	}
	return func() {
		unsubs, ok := h.registrations[id]
		if !ok {
			return
		}
		for _, u := range unsubs {
			u()
		}
		delete(h.registrations, id)
	}
}

// Invalidate schedules a redraw on the next step.
func (h *Host) Invalidate() {
	h.dirty = true
}

// Step advances the clock by dt and redraws at most once. It reports whether
// a redraw happened.
func (h *Host) Step(dt time.Duration) bool {
	h.clock.Tick(dt)
	if !h.dirty {
		return false
	}
	h.redraw()
	return true
}

func (h *Host) redraw() {
	h.dirty = false

	var stats redrawStats
	var t0 time.Time
	if h.debug {
		t0 = time.Now()
	}

	recordInto(h.picture, h.root)
	h.redraws++

	if h.debug {
		stats.recordTime = time.Since(t0)
		stats.ops = h.picture.Len()
		stats.nodes = countNodes(h.root)
		stats.values = len(h.registrations)
		h.debugLog(stats)
	}
	if h.sink != nil {
		h.sink.EmitRedraw(RedrawEvent{
			Frame:   h.clock.Frame(),
			Elapsed: h.clock.Elapsed(),
			Redraws: h.redraws,
			Ops:     h.picture.Len(),
		})
	}
}

// SetUpdateFunc sets a function called at the start of every Update.
func (h *Host) SetUpdateFunc(fn func() error) {
	h.update = fn
}

// SetRedrawSink sets the optional redraw observer.
func (h *Host) SetRedrawSink(sink RedrawSink) {
	h.sink = sink
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-redraw stats are logged at debug level.
func (h *Host) SetDebugMode(enabled bool) {
	h.debug = enabled
	globalDebug = enabled
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	if h.update != nil {
		if err := h.update(); err != nil {
			return err
		}
	}
	h.Step(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(h.ClearColor.toRGBA())
	c := newImageCanvas(screen, &h.pool)
	h.picture.Replay(c)
	c.finish()
	if h.showFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nredraws: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(), h.redraws))
	}
}

// Layout implements ebiten.Game. The logical screen size is fixed.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	return h.width, h.height
}

// Dispose releases the layer pool and forgets every registration.
func (h *Host) Dispose() {
	for id, unsubs := range h.registrations {
		for _, u := range unsubs {
			u()
		}
		delete(h.registrations, id)
	}
	h.pool.Dispose()
}
