package trellis

// Element describes one node of a declarative scene tree. Elements are plain
// descriptions; a Root turns them into Nodes and keeps the Nodes in sync
// across renders.
type Element struct {
	Kind     NodeKind
	Key      string
	Props    Props
	Children []*Element
}

// E is shorthand for building an Element.
func E(kind NodeKind, props Props, children ...*Element) *Element {
	return &Element{Kind: kind, Props: props, Children: children}
}

// WithKey sets the element's reconciliation key and returns it.
func (e *Element) WithKey(key string) *Element {
	e.Key = key
	return e
}

// SceneHost is the host a Root mounts into.
type SceneHost interface {
	HostView
	SetRoot(n *Node)
	Invalidate()
}

// Root owns a mounted scene: a container node attached to a host, and the
// dependency manager tracking every mounted node.
//
// Render diffs the new element tree against the mounted nodes. Children are
// matched by key, or by position and kind when unkeyed. Matched nodes get
// their props replaced and their dependencies re-subscribed if anything
// changed; unmatched elements are mounted and unmatched nodes unmounted.
type Root struct {
	host      SceneHost
	deps      *DependencyManager
	container *Node
}

// NewRoot creates an empty root and attaches its container to host.
func NewRoot(host SceneHost) *Root {
	r := &Root{
		host:      host,
		deps:      NewDependencyManager(),
		container: NewNode(KindGroup, nil),
	}
	r.container.Key = "root"
	r.deps.Attach(host)
	host.SetRoot(r.container)
	return r
}

// Deps returns the root's dependency manager.
func (r *Root) Deps() *DependencyManager {
	return r.deps
}

// Container returns the root container node.
func (r *Root) Container() *Node {
	return r.container
}

// Render mounts or updates the scene to match el. A nil el unmounts
// everything but keeps the root attached. The host's redraw registration is
// replaced with the new set of distinct values.
func (r *Root) Render(el *Element) error {
	var els []*Element
	if el != nil {
		els = []*Element{el}
	}
	if err := r.reconcileChildren(r.container, els); err != nil {
		return err
	}
	if err := r.deps.Update(); err != nil {
		return err
	}
	r.host.Invalidate()
	return nil
}

// Unmount tears the scene down: every node is unsubscribed and disposed, the
// redraw registration is dropped and the host is detached.
func (r *Root) Unmount() error {
	for len(r.container.children) > 0 {
		if err := r.unmount(r.container.children[len(r.container.children)-1]); err != nil {
			return err
		}
	}
	if err := r.deps.Remove(); err != nil {
		return err
	}
	r.deps.Detach()
	r.host.Invalidate()
	return nil
}

func (r *Root) reconcileChildren(parent *Node, els []*Element) error {
	old := make([]*Node, len(parent.children))
	copy(old, parent.children)

	keyed := make(map[string]*Node)
	var unkeyed []*Node
	for _, c := range old {
		if c.Key != "" {
			keyed[c.Key] = c
		} else {
			unkeyed = append(unkeyed, c)
		}
	}

	used := make(map[*Node]bool, len(old))
	next := make([]*Node, 0, len(els))
	ui := 0
	for _, el := range els {
		if el == nil {
			continue
		}
		var match *Node
		if el.Key != "" {
			if n, ok := keyed[el.Key]; ok && n.Kind == el.Kind && !used[n] {
				match = n
			}
		} else if ui < len(unkeyed) {
			c := unkeyed[ui]
			ui++
			if c.Kind == el.Kind {
				match = c
			}
		}

		if match != nil {
			used[match] = true
			if err := r.update(match, el); err != nil {
				return err
			}
		} else {
			n, err := r.mount(el)
			if err != nil {
				return err
			}
			match = n
		}
		next = append(next, match)
	}

	for _, c := range old {
		if !used[c] {
			if err := r.unmount(c); err != nil {
				return err
			}
		}
	}

	for i, n := range next {
		if n.Parent != parent {
			parent.AddChildAt(n, i)
		} else if parent.indexOf(n) != i {
			parent.SetChildIndex(n, i)
		}
	}
	return nil
}

func (r *Root) mount(el *Element) (*Node, error) {
	n := NewNode(el.Kind, el.Props)
	n.Key = el.Key
	if err := r.reconcileChildren(n, el.Children); err != nil {
		return nil, err
	}
	if err := r.deps.SubscribeNode(n, n.Resolve()); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *Root) update(n *Node, el *Element) error {
	old := n.props
	if changed := n.SetProps(el.Props); len(changed) > 0 && !sameBindings(old, n.props) {
		if err := r.deps.SubscribeNode(n, n.Resolve()); err != nil {
			return err
		}
	}
	return r.reconcileChildren(n, el.Children)
}

// unmount unsubscribes and disposes n and its subtree, children first.
func (r *Root) unmount(n *Node) error {
	for len(n.children) > 0 {
		if err := r.unmount(n.children[len(n.children)-1]); err != nil {
			return err
		}
	}
	if err := r.deps.UnsubscribeNode(n); err != nil {
		return err
	}
	n.Dispose()
	return nil
}
