package trellis

import "errors"

var (
	// ErrInconsistent reports that dependency bookkeeping no longer matches
	// the subscriptions it mirrors. Continuing would leak or dangle native
	// listeners, so callers should treat it as fatal.
	ErrInconsistent = errors.New("trellis: dependency bookkeeping inconsistent")

	// ErrNoHostView reports a redraw registration attempted while no host
	// view is attached.
	ErrNoHostView = errors.New("trellis: no host view attached")
)
