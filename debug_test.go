package trellis

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// captureLog routes the package logger into a buffer for the test's duration.
func captureLog(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

// ---- Debug mode tests ------------------------------------------------------

func TestDebugMode_DisposedNodePanics(t *testing.T) {
	h := NewHost(10, 10)
	h.SetDebugMode(true)
	defer h.SetDebugMode(false)

	parent := NewNode(KindGroup, nil)
	child := NewNode(KindRect, nil)
	child.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild with disposed node, got none")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	parent.AddChild(child)
}

func TestDebugMode_DisposedParentPanics(t *testing.T) {
	h := NewHost(10, 10)
	h.SetDebugMode(true)
	defer h.SetDebugMode(false)

	parent := NewNode(KindGroup, nil)
	parent.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChildAt to disposed parent, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	parent.AddChildAt(NewNode(KindRect, nil), 0)
}

func TestReleaseMode_DisposedNodeNoPanic(t *testing.T) {
	parent := NewNode(KindGroup, nil)
	child := NewNode(KindRect, nil)
	child.Dispose()

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("release mode should not panic on disposed node, got: %v", r)
		}
	}()
	parent.AddChild(child)
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	buf := captureLog(t, slog.LevelWarn)
	globalDebug = true
	defer func() { globalDebug = false }()

	n := NewNode(KindGroup, nil)
	for range debugMaxTreeDepth + 1 {
		child := NewNode(KindGroup, nil)
		n.AddChild(child)
		n = child
	}

	if !strings.Contains(buf.String(), "tree depth exceeds threshold") {
		t.Errorf("expected tree depth warning, got: %q", buf.String())
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	buf := captureLog(t, slog.LevelWarn)
	globalDebug = true
	defer func() { globalDebug = false }()

	parent := NewNode(KindGroup, nil)
	for range debugMaxChildCount + 1 {
		parent.AddChild(NewNode(KindRect, nil))
	}

	if !strings.Contains(buf.String(), "child count exceeds threshold") {
		t.Errorf("expected child count warning, got: %q", buf.String())
	}
}

func TestDebugMode_RedrawStatsLogged(t *testing.T) {
	buf := captureLog(t, slog.LevelDebug)
	h := NewHost(10, 10)
	h.SetDebugMode(true)
	defer h.SetDebugMode(false)

	root := NewNode(KindGroup, nil)
	root.AddChild(NewNode(KindFill, PropsOf(map[string]any{"color": "red"})))
	h.SetRoot(root)
	h.Step(time.Millisecond)

	out := buf.String()
	for _, want := range []string{"trellis: redraw", "ops=1", "nodes=2"} {
		if !strings.Contains(out, want) {
			t.Errorf("debug log missing %q: %q", want, out)
		}
	}
}

func TestResourceBuildFailureLogged(t *testing.T) {
	buf := captureLog(t, slog.LevelWarn)
	n := NewNode(KindCircle, PropsOf(map[string]any{"r": -1.0}))
	n.Resolve()

	if got := n.resourceValue(resGeometry); got != nil {
		t.Errorf("failed build should yield nil, got %v", got)
	}
	if n.resourceErr(resGeometry) == nil {
		t.Error("resourceErr should report the build failure")
	}
	if !strings.Contains(buf.String(), "resource build failed") {
		t.Errorf("expected warning, got: %q", buf.String())
	}
}

func TestCountNodes(t *testing.T) {
	if got := countNodes(nil); got != 0 {
		t.Errorf("countNodes(nil) = %d, want 0", got)
	}
	root := NewNode(KindGroup, nil)
	a := NewNode(KindGroup, nil)
	root.AddChild(a)
	a.AddChild(NewNode(KindRect, nil))
	root.AddChild(NewNode(KindRect, nil))
	if got := countNodes(root); got != 4 {
		t.Errorf("countNodes = %d, want 4", got)
	}
}
