package trellis

import "fmt"

// --- ID counter ---

// nodeIDCounter is a plain counter (no atomic, trellis is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// --- Node ---

// Node is one element of the retained drawing tree: a shape, group, image or
// declaration. A single flat struct is used for all kinds; the kind selects
// which props are read and which resources are built.
//
// Props may be literals or bindings to observable values. Resolve produces
// the plain snapshot the draw path reads plus one SubscriptionInfo per bound
// prop. Cached resources (paint, geometry, matrix, shader, image) are built
// lazily on first draw and invalidated per prop key.
type Node struct {
	// Identity
	ID   uint32
	Kind NodeKind
	// Key identifies the node among its siblings during reconciliation.
	Key string

	// Hierarchy
	Parent   *Node
	children []*Node

	props     Props
	resolved  map[string]any
	resources map[resourceKind]*resource

	// Internal
	disposed bool
}

// NewNode creates a node of the given kind. props may be nil.
func NewNode(kind NodeKind, props Props) *Node {
	if props == nil {
		props = Props{}
	}
	n := &Node{
		ID:       nextNodeID(),
		Kind:     kind,
		props:    props,
		resolved: make(map[string]any, len(props)),
	}
	n.resources = newResources(kind)
	return n
}

// String returns a short description for logs and panics.
func (n *Node) String() string {
	if n.Key != "" {
		return fmt.Sprintf("%s#%d(%s)", n.Kind, n.ID, n.Key)
	}
	return fmt.Sprintf("%s#%d", n.Kind, n.ID)
}

// --- Props ---

// Props returns the node's declared props. The returned map MUST NOT be mutated.
func (n *Node) Props() Props {
	return n.props
}

// SetProps replaces the declared props and invalidates the resources that
// depend on any key whose resolved value changed. It returns the changed keys.
// When a key is bound to a different value (see sameBindings) the caller must
// call Resolve and re-subscribe the node for the new binding to take effect.
func (n *Node) SetProps(props Props) []string {
	if props == nil {
		props = Props{}
	}
	changed := diffProps(n.props, props)
	n.props = props
	for _, key := range changed {
		p, ok := props[key]
		if !ok {
			delete(n.resolved, key)
			n.invalidate(key)
			continue
		}
		prev, had := n.resolved[key]
		next := p.current()
		n.resolved[key] = next
		// A fresh selector that maps to the same snapshot leaves resources alone.
		if !had || !sameSnapshot(prev, next) {
			n.invalidate(key)
		}
	}
	return changed
}

// Resolve snapshots every prop into its plain value and returns one
// SubscriptionInfo per bound prop. Each info's listener re-resolves its key
// and invalidates the resources that depend on it.
func (n *Node) Resolve() []SubscriptionInfo {
	var infos []SubscriptionInfo
	for _, key := range n.props.sortedKeys() {
		p := n.props[key]
		n.resolved[key] = p.current()
		if p.src != nil {
			infos = append(infos, SubscriptionInfo{
				Value:    p.src,
				Key:      key,
				Listener: n.propListener(key, p.src.ValueID()),
			})
		}
	}
	return infos
}

// propListener re-resolves key through whatever prop is declared when the
// value fires, so a selector swapped by SetProps applies without
// re-subscribing. Notifications from a value key is no longer bound to are
// ignored.
func (n *Node) propListener(key string, src uint64) func(any) {
	return func(v any) {
		if n.disposed {
			return
		}
		p, ok := n.props[key]
		if !ok || p.src == nil || p.src.ValueID() != src {
			return
		}
		n.resolved[key] = p.apply(v)
		n.invalidate(key)
	}
}

// Get returns the resolved value for key.
func (n *Node) Get(key string) (any, bool) {
	v, ok := n.resolved[key]
	return v, ok
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("trellis: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("trellis: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.detachChild(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	n.childrenChanged(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("trellis: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChildAt (parent)")
		debugCheckDisposed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("trellis: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.detachChild(child)
	}
	if index < 0 || index > len(n.children) {
		panic("trellis: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	n.childrenChanged(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("trellis: child's parent is not this node")
	}
	n.detachChild(child)
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	if index < 0 || index >= len(n.children) {
		panic("trellis: child index out of range")
	}
	child := n.children[index]
	n.detachChild(child)
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.detachChild(n.children[len(n.children)-1])
	}
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// SetChildIndex moves child to a new index among its siblings.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.Parent != n {
		panic("trellis: child's parent is not this node")
	}
	nc := len(n.children)
	if index < 0 || index >= nc {
		panic("trellis: child index out of range")
	}
	oldIndex := n.indexOf(child)
	if oldIndex == index {
		return
	}
	// Shift elements to fill the gap and open the target slot.
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
	n.childrenChanged(child)
}

// --- Disposal ---

// Dispose removes this node from its parent, releases its resources, marks it
// as disposed and recursively disposes all descendants. Disposing does not
// touch dependency tracking; unsubscribe the node first.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.releaseResources()
	n.props = nil
	n.resolved = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// detachChild removes child from n.children and clears child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) detachChild(child *Node) {
	i := n.indexOf(child)
	if i < 0 {
		return
	}
	copy(n.children[i:], n.children[i+1:])
	n.children[len(n.children)-1] = nil
	n.children = n.children[:len(n.children)-1]
	child.Parent = nil
	n.childrenChanged(child)
}

// childrenChanged invalidates the paint when a declaration child is added,
// removed or reordered, since declarations compose into it.
func (n *Node) childrenChanged(child *Node) {
	if child.Kind.IsDeclaration() {
		n.invalidateResource(resPaint)
	}
}
