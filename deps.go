package trellis

import (
	"fmt"
	"slices"
)

// SubscriptionInfo records that one node prop reads one value: when Value
// changes, Listener re-resolves Key on the node.
type SubscriptionInfo struct {
	Value    Source
	Key      string
	Listener func(any)
}

// HostView is the drawable surface side of the redraw contract. It triggers
// at most one redraw per scheduling tick in which any registered value
// changed. A Host is the Ebitengine implementation.
type HostView interface {
	RegisterValues(values []Source) (unregister func())
}

// forwarder is one in-process fan-out entry of a subscription. Entries are
// matched by identity on removal.
type forwarder struct {
	node     uint32
	key      string
	listener func(any)
	removed  bool
}

// subscription is the single native listener registration held for a value
// while at least one node depends on it.
type subscription struct {
	value       Source
	unsubscribe func()
	forwarders  []*forwarder
}

// dispatch fans a change out to every forwarder, in subscription order. It
// iterates a snapshot and skips forwarders removed mid-dispatch, so a
// listener may unsubscribe its own node (or any other) re-entrantly.
func (s *subscription) dispatch(v any) {
	snapshot := slices.Clone(s.forwarders)
	for _, f := range snapshot {
		if !f.removed {
			f.listener(v)
		}
	}
}

// trackedNode is the per-node record needed to reverse its subscriptions.
type trackedNode struct {
	node  *Node
	infos []SubscriptionInfo
	fwds  []*forwarder
}

// DependencyManager maps nodes to the values their resolved props read, and
// values to the per-node listeners that must run when they change. Each
// distinct value is subscribed to exactly once no matter how many nodes or
// props depend on it; fan-out happens in-process.
//
// The manager also owns the single redraw registration with its host view.
// It is not safe for concurrent use.
type DependencyManager struct {
	host       HostView
	unregister func()

	nodes  map[uint32]*trackedNode
	values map[uint64]*subscription

	stats DependencyStats
}

// DependencyStats counts native registrations made through a manager.
type DependencyStats struct {
	Subscribes       int // value listener registrations
	Unsubscribes     int // value listener removals
	Registrations    int // host redraw registrations
	Unregistrations  int // host redraw unregistrations
	TrackedNodes     int // nodes with live dependencies
	TrackedValues    int // values with live subscriptions
	ForwardListeners int // per-node forwarders across all values
}

// NewDependencyManager creates an empty manager with no host view.
func NewDependencyManager() *DependencyManager {
	return &DependencyManager{
		nodes:  make(map[uint32]*trackedNode),
		values: make(map[uint64]*subscription),
	}
}

// Attach sets the host view that Update registers values with.
func (m *DependencyManager) Attach(host HostView) {
	m.host = host
}

// Detach drops the current redraw registration and forgets the host view.
func (m *DependencyManager) Detach() {
	m.dropRegistration()
	m.host = nil
}

// SubscribeNode installs dependency tracking for n's resolved props. Values
// without a subscription get one (a single AddAnyListener call); every
// info's listener is appended to its value's fan-out list. The full list is
// recorded against the node for UnsubscribeNode.
//
// If n is already tracked, its previous dependencies are detached first
// without releasing its resources. With an empty list and no previous
// tracking, SubscribeNode does nothing.
func (m *DependencyManager) SubscribeNode(n *Node, infos []SubscriptionInfo) error {
	if _, ok := m.nodes[n.ID]; ok {
		if err := m.detachNode(n.ID); err != nil {
			return err
		}
	}
	if len(infos) == 0 {
		return nil
	}
	t := &trackedNode{
		node:  n,
		infos: slices.Clone(infos),
		fwds:  make([]*forwarder, len(infos)),
	}
	for i, info := range infos {
		id := info.Value.ValueID()
		sub, ok := m.values[id]
		if !ok {
			sub = &subscription{value: info.Value}
			sub.unsubscribe = info.Value.AddAnyListener(sub.dispatch)
			m.values[id] = sub
			m.stats.Subscribes++
		}
		f := &forwarder{node: n.ID, key: info.Key, listener: info.Listener}
		sub.forwarders = append(sub.forwarders, f)
		t.fwds[i] = f
	}
	m.nodes[n.ID] = t
	if globalDebug {
		logger.Debug("trellis: subscribed node", "node", n.String(), "deps", len(infos), "values", len(m.values))
	}
	return nil
}

// UnsubscribeNode reverses SubscribeNode: each of the node's listeners is
// removed from its value's fan-out list, and a value whose list becomes
// empty has its listener registration removed and its subscription deleted.
// The node's resources are then released and its record deleted.
// No-op if the node is not tracked.
func (m *DependencyManager) UnsubscribeNode(n *Node) error {
	if _, ok := m.nodes[n.ID]; !ok {
		return nil
	}
	if err := m.detachNode(n.ID); err != nil {
		return err
	}
	n.releaseResources()
	if globalDebug {
		logger.Debug("trellis: unsubscribed node", "node", n.String(), "values", len(m.values))
	}
	return nil
}

// detachNode removes the node's forwarders and its record, tearing down
// subscriptions that become empty.
func (m *DependencyManager) detachNode(id uint32) error {
	t := m.nodes[id]
	for i, info := range t.infos {
		vid := info.Value.ValueID()
		sub, ok := m.values[vid]
		if !ok {
			return fmt.Errorf("%w: node %d key %q: no subscription for value %d",
				ErrInconsistent, id, info.Key, vid)
		}
		f := t.fwds[i]
		idx := slices.Index(sub.forwarders, f)
		if idx < 0 {
			return fmt.Errorf("%w: node %d key %q: listener missing from value %d",
				ErrInconsistent, id, info.Key, vid)
		}
		f.removed = true
		sub.forwarders = slices.Delete(sub.forwarders, idx, idx+1)
		if len(sub.forwarders) > 0 {
			continue
		}
		if sub.unsubscribe == nil {
			return fmt.Errorf("%w: value %d has no unsubscribe capability", ErrInconsistent, vid)
		}
		sub.unsubscribe()
		sub.unsubscribe = nil
		m.stats.Unsubscribes++
		delete(m.values, vid)
		if _, still := m.values[vid]; still {
			return fmt.Errorf("%w: value %d subscription not deleted", ErrInconsistent, vid)
		}
	}
	delete(m.nodes, id)
	if _, still := m.nodes[id]; still {
		return fmt.Errorf("%w: node %d record not deleted", ErrInconsistent, id)
	}
	return nil
}

// Update replaces the redraw registration with one covering the current set
// of distinct values. Call it after the tree is (re)attached to the host view.
func (m *DependencyManager) Update() error {
	if m.host == nil {
		return ErrNoHostView
	}
	m.dropRegistration()
	m.unregister = m.host.RegisterValues(m.Values())
	m.stats.Registrations++
	return nil
}

func (m *DependencyManager) dropRegistration() {
	if m.unregister == nil {
		return
	}
	m.unregister()
	m.unregister = nil
	m.stats.Unregistrations++
}

// Remove tears everything down: the redraw registration, then every tracked
// node. It leaves no value listener registered and is safe to call repeatedly.
func (m *DependencyManager) Remove() error {
	m.dropRegistration()
	for _, id := range m.trackedIDs() {
		t, ok := m.nodes[id]
		if !ok {
			continue
		}
		if err := m.UnsubscribeNode(t.node); err != nil {
			return err
		}
	}
	clear(m.nodes)
	clear(m.values)
	return nil
}

// Values returns the distinct values with live subscriptions, ordered by
// value ID.
func (m *DependencyManager) Values() []Source {
	ids := make([]uint64, 0, len(m.values))
	for id := range m.values {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Source, len(ids))
	for i, id := range ids {
		out[i] = m.values[id].value
	}
	return out
}

// IsTracked reports whether n has live dependencies.
func (m *DependencyManager) IsTracked(n *Node) bool {
	_, ok := m.nodes[n.ID]
	return ok
}

// ListenerCount returns the number of per-node listeners fanned out from v.
func (m *DependencyManager) ListenerCount(v Source) int {
	if sub, ok := m.values[v.ValueID()]; ok {
		return len(sub.forwarders)
	}
	return 0
}

// Stats returns registration counters and current sizes.
func (m *DependencyManager) Stats() DependencyStats {
	s := m.stats
	s.TrackedNodes = len(m.nodes)
	s.TrackedValues = len(m.values)
	for _, sub := range m.values {
		s.ForwardListeners += len(sub.forwarders)
	}
	return s
}

// Check verifies that every tracked node's listeners are present in their
// value's fan-out list and that every fan-out entry traces back to exactly
// one tracked node record.
func (m *DependencyManager) Check() error {
	owned := make(map[*forwarder]uint32)
	for id, t := range m.nodes {
		if len(t.infos) != len(t.fwds) {
			return fmt.Errorf("%w: node %d has %d infos but %d listeners",
				ErrInconsistent, id, len(t.infos), len(t.fwds))
		}
		for i, info := range t.infos {
			sub, ok := m.values[info.Value.ValueID()]
			if !ok || !slices.Contains(sub.forwarders, t.fwds[i]) {
				return fmt.Errorf("%w: node %d key %q not subscribed", ErrInconsistent, id, info.Key)
			}
			owned[t.fwds[i]] = id
		}
	}
	for vid, sub := range m.values {
		if len(sub.forwarders) == 0 {
			return fmt.Errorf("%w: value %d has an empty subscription", ErrInconsistent, vid)
		}
		if sub.unsubscribe == nil {
			return fmt.Errorf("%w: value %d has no unsubscribe capability", ErrInconsistent, vid)
		}
		for _, f := range sub.forwarders {
			if id, ok := owned[f]; !ok || id != f.node {
				return fmt.Errorf("%w: value %d has an orphaned listener for node %d",
					ErrInconsistent, vid, f.node)
			}
		}
	}
	return nil
}

func (m *DependencyManager) trackedIDs() []uint32 {
	ids := make([]uint32, 0, len(m.nodes))
	for id := range m.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
