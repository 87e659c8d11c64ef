package trellis

// resourceKind names a cached derived resource of a node.
type resourceKind uint8

const (
	resMatrix   resourceKind = iota // local transform
	resPaint                        // own paint overrides plus declaration children
	resGeometry                     // path or mesh
	resShader                       // compiled shader or gradient description
	resImage                        // decoded image
)

var resourceKindNames = [...]string{"matrix", "paint", "geometry", "shader", "image"}

func (k resourceKind) String() string {
	return resourceKindNames[k]
}

// resourceSpec declares which prop keys a resource is derived from and how to
// build it from the node's resolved snapshot.
type resourceSpec struct {
	keys  []string
	build func(n *Node) (any, error)
}

// resource is a lazily built cache entry. It is valid only while none of its
// keys has changed since it was built.
type resource struct {
	spec   resourceSpec
	value  any
	err    error
	valid  bool
	builds int
}

// disposer is implemented by resources holding engine memory.
type disposer interface {
	Dispose()
}

func newResources(kind NodeKind) map[resourceKind]*resource {
	specs := kindResources[kind]
	if len(specs) == 0 {
		return nil
	}
	m := make(map[resourceKind]*resource, len(specs))
	for k, spec := range specs {
		m[k] = &resource{spec: spec}
	}
	return m
}

func (r *resource) dependsOn(key string) bool {
	for _, k := range r.spec.keys {
		if k == key {
			return true
		}
	}
	return false
}

// releaser is implemented by resources a node may borrow from the caller.
// release disposes them only when the node owns them.
type releaser interface {
	release()
}

func (r *resource) drop() {
	if r.valid {
		switch v := r.value.(type) {
		case releaser:
			v.release()
		case disposer:
			v.Dispose()
		}
	}
	r.value = nil
	r.err = nil
	r.valid = false
}

// resourceValue returns the cached resource, building it first if needed.
// Returns nil if the node has no such resource or its build failed.
func (n *Node) resourceValue(kind resourceKind) any {
	r := n.resources[kind]
	if r == nil {
		return nil
	}
	if !r.valid {
		r.value, r.err = r.spec.build(n)
		r.valid = true
		r.builds++
		if r.err != nil {
			r.value = nil
			logger.Warn("trellis: resource build failed",
				"node", n.String(), "resource", kind.String(), "err", r.err)
		}
	}
	return r.value
}

// resourceErr returns the error from the last build of the resource, if any.
func (n *Node) resourceErr(kind resourceKind) error {
	if r := n.resources[kind]; r != nil {
		return r.err
	}
	return nil
}

// resourceBuilds reports how many times the resource has been built.
func (n *Node) resourceBuilds(kind resourceKind) int {
	if r := n.resources[kind]; r != nil {
		return r.builds
	}
	return 0
}

// invalidate drops every resource derived from key. A declaration also
// invalidates its parent's paint, which composes it.
func (n *Node) invalidate(key string) {
	for _, r := range n.resources {
		if r.valid && r.dependsOn(key) {
			r.drop()
		}
	}
	if n.Kind.IsDeclaration() && n.Parent != nil {
		n.Parent.invalidateResource(resPaint)
	}
}

// invalidateResource drops one resource regardless of keys.
func (n *Node) invalidateResource(kind resourceKind) {
	if r := n.resources[kind]; r != nil && r.valid {
		r.drop()
	}
	if kind == resPaint && n.Kind.IsDeclaration() && n.Parent != nil {
		n.Parent.invalidateResource(resPaint)
	}
}

// releaseResources drops every resource this node holds.
func (n *Node) releaseResources() {
	for _, r := range n.resources {
		r.drop()
	}
}
