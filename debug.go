package trellis

import (
	"fmt"
	"log/slog"
	"time"
)

// logger receives warnings (failed resource builds, shader errors, tree
// warnings) and, in debug mode, per-redraw stats.
var logger = slog.Default()

// SetLogger replaces the package logger. A nil logger restores slog.Default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger = l
}

// globalDebug enables tree checks and debug logging everywhere. It is turned
// on by Host.SetDebugMode.
var globalDebug bool

// redrawStats holds timing and size metrics for one redraw.
// Only populated when the host is in debug mode.
type redrawStats struct {
	recordTime time.Duration
	ops        int
	nodes      int
	values     int
}

// debugLog logs redraw stats.
func (h *Host) debugLog(stats redrawStats) {
	if !h.debug {
		return
	}
	logger.Debug("trellis: redraw",
		"redraws", h.redraws,
		"record", stats.recordTime,
		"ops", stats.ops,
		"nodes", stats.nodes,
		"values", stats.values)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. In release mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("trellis debug: %s on disposed node %s", op, n))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logger.Warn("trellis: tree depth exceeds threshold",
			"depth", depth, "threshold", debugMaxTreeDepth, "node", n.String())
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		logger.Warn("trellis: child count exceeds threshold",
			"node", n.String(), "children", len(n.children), "threshold", debugMaxChildCount)
	}
}

// countNodes returns the number of nodes in the subtree rooted at n.
func countNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, c := range n.children {
		count += countNodes(c)
	}
	return count
}
