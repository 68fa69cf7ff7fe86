// package entity implements the scene's entity hierarchy as an arena of
// nodes addressed by stable handles. Parent/child/sibling relations are
// stored as handle fields rather than pointers, which keeps the graph
// cycle-free and makes recursive active-state propagation straightforward.
package entity

import (
	"github.com/strata-engine/strata/common"
)

// Handle identifies an entity in a Hierarchy. Handles stay valid until the
// entity is destroyed; destroyed slots are recycled for new entities.
type Handle int

// Nil represents an invalid entity.
const Nil Handle = 0

// Component is attached behavior notified of the owning entity's lifecycle.
// Renderers implement Component to register themselves with the scene while
// their entity is active in the hierarchy.
type Component interface {
	// OnActivate is called when the owning entity becomes active in the
	// hierarchy (its own flag, every ancestor's flag, and the owning
	// scene's engine-active flag are all set).
	//
	// Parameters:
	//   - h: the hierarchy the entity lives in
	//   - e: the owning entity
	OnActivate(h *Hierarchy, e Handle)

	// OnDeactivate is called when the owning entity stops being active in
	// the hierarchy.
	//
	// Parameters:
	//   - h: the hierarchy the entity lives in
	//   - e: the owning entity
	OnDeactivate(h *Hierarchy, e Handle)

	// OnDestroy is called once when the owning entity is destroyed, after
	// any deactivation.
	//
	// Parameters:
	//   - h: the hierarchy the entity lives in
	//   - e: the owning entity
	OnDestroy(h *Hierarchy, e Handle)
}

// Owner is the scene-level collaborator a root entity belongs to. The
// hierarchy only needs to know whether the owner is currently active in
// the engine; richer scene behavior is reached by type assertion.
type Owner interface {
	// ActiveInEngine reports whether the owning scene is active.
	//
	// Returns:
	//   - bool: true if active
	ActiveInEngine() bool
}

// node is one arena slot.
type node struct {
	alive bool

	name     string
	layer    common.Layer
	position [3]float32

	// active is the entity's own flag; activeInHierarchy is the derived
	// flag (own flag AND parent chain AND owning scene active).
	active            bool
	activeInHierarchy bool

	// isRoot marks scene root entities; siblingIndex is the position in
	// the owning scene's root list (-1 otherwise). Both maintained by the
	// scene.
	isRoot       bool
	siblingIndex int

	parent     Handle
	children   []Handle
	components []Component
	owner      Owner
}

// Hierarchy is an arena of entity nodes. Scenes backed by the same
// hierarchy can move entities between each other without copying; a scene
// may also own a private hierarchy when no transfers are needed.
type Hierarchy struct {
	nodes []node
	free  []Handle
}

// NewHierarchy creates an empty hierarchy. Slot zero is reserved for Nil.
//
// Returns:
//   - *Hierarchy: the new hierarchy
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		nodes: make([]node, 1),
	}
}

// New allocates an entity with the given name. New entities start with
// their own active flag set, on the default layer, detached from any
// parent or scene.
//
// Parameters:
//   - name: the entity's name
//
// Returns:
//   - Handle: the new entity
func (h *Hierarchy) New(name string) Handle {
	var e Handle
	if n := len(h.free); n > 0 {
		e = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		h.nodes = append(h.nodes, node{})
		e = Handle(len(h.nodes) - 1)
	}
	h.nodes[e] = node{
		alive:        true,
		name:         name,
		layer:        common.LayerDefault,
		active:       true,
		siblingIndex: -1,
	}
	return e
}

// Valid reports whether a handle refers to a live entity.
//
// Parameters:
//   - e: the handle to check
//
// Returns:
//   - bool: true if live
func (h *Hierarchy) Valid(e Handle) bool {
	return e > Nil && int(e) < len(h.nodes) && h.nodes[e].alive
}

func (h *Hierarchy) node(e Handle) *node {
	if !h.Valid(e) {
		return nil
	}
	return &h.nodes[e]
}

// Name returns the entity's name, or the empty string for invalid handles.
func (h *Hierarchy) Name(e Handle) string {
	if n := h.node(e); n != nil {
		return n.name
	}
	return ""
}

// SetName sets the entity's name.
func (h *Hierarchy) SetName(e Handle, name string) {
	if n := h.node(e); n != nil {
		n.name = name
	}
}

// Layer returns the entity's culling layer.
func (h *Hierarchy) Layer(e Handle) common.Layer {
	if n := h.node(e); n != nil {
		return n.layer
	}
	return 0
}

// SetLayer sets the entity's culling layer.
func (h *Hierarchy) SetLayer(e Handle, layer common.Layer) {
	if n := h.node(e); n != nil {
		n.layer = layer
	}
}

// Position returns the entity's world position.
func (h *Hierarchy) Position(e Handle) [3]float32 {
	if n := h.node(e); n != nil {
		return n.position
	}
	return [3]float32{}
}

// SetPosition sets the entity's world position.
func (h *Hierarchy) SetPosition(e Handle, x, y, z float32) {
	if n := h.node(e); n != nil {
		n.position = [3]float32{x, y, z}
	}
}

// Active returns the entity's own active flag.
func (h *Hierarchy) Active(e Handle) bool {
	if n := h.node(e); n != nil {
		return n.active
	}
	return false
}

// ActiveInHierarchy returns the derived active flag: the entity's own flag
// combined with its ancestor chain and the owning scene's engine-active
// state.
func (h *Hierarchy) ActiveInHierarchy(e Handle) bool {
	if n := h.node(e); n != nil {
		return n.activeInHierarchy
	}
	return false
}

// Parent returns the entity's parent, or Nil.
func (h *Hierarchy) Parent(e Handle) Handle {
	if n := h.node(e); n != nil {
		return n.parent
	}
	return Nil
}

// Children returns the entity's children in sibling order. The returned
// slice is the hierarchy's backing storage; callers must not mutate it.
func (h *Hierarchy) Children(e Handle) []Handle {
	if n := h.node(e); n != nil {
		return n.children
	}
	return nil
}

// IsRoot reports whether the entity is a scene root.
func (h *Hierarchy) IsRoot(e Handle) bool {
	if n := h.node(e); n != nil {
		return n.isRoot
	}
	return false
}

// SiblingIndex returns the entity's position among its scene's roots, or
// -1 when the entity is not a root.
func (h *Hierarchy) SiblingIndex(e Handle) int {
	if n := h.node(e); n != nil {
		return n.siblingIndex
	}
	return -1
}

// Owner returns the scene collaborator the entity belongs to, or nil.
func (h *Hierarchy) Owner(e Handle) Owner {
	if n := h.node(e); n != nil {
		return n.owner
	}
	return nil
}

// AddComponent attaches a component to the entity. If the entity is
// already active in the hierarchy the component's OnActivate fires
// immediately.
//
// Parameters:
//   - e: the entity
//   - c: the component to attach
func (h *Hierarchy) AddComponent(e Handle, c Component) {
	n := h.node(e)
	if n == nil {
		return
	}
	n.components = append(n.components, c)
	if n.activeInHierarchy {
		c.OnActivate(h, e)
	}
}

// Components returns the entity's attached components. The returned slice
// is backing storage; callers must not mutate it.
func (h *Hierarchy) Components(e Handle) []Component {
	if n := h.node(e); n != nil {
		return n.components
	}
	return nil
}

// SetActive sets the entity's own active flag and propagates the derived
// active-in-hierarchy state through the subtree when the effective state
// changes.
//
// Parameters:
//   - e: the entity
//   - active: the new own flag
func (h *Hierarchy) SetActive(e Handle, active bool) {
	n := h.node(e)
	if n == nil || n.active == active {
		return
	}
	n.active = active

	want := active && h.parentChainActive(e)
	if want != n.activeInHierarchy {
		h.ProcessActive(e, want)
	}
}

// parentChainActive reports whether everything above the entity permits it
// to be active: for roots, the owning scene's engine-active flag; for
// children, the parent's derived flag. Detached non-root entities are
// never active.
func (h *Hierarchy) parentChainActive(e Handle) bool {
	n := h.node(e)
	if n.isRoot {
		return n.owner != nil && n.owner.ActiveInEngine()
	}
	if n.parent == Nil {
		return false
	}
	return h.nodes[n.parent].activeInHierarchy
}

// ProcessActive sets the entity's derived active flag and recursively
// propagates it: activation descends into children whose own flag is set,
// deactivation descends into children currently active in the hierarchy.
// Idempotent: processing an entity already in the requested state is a
// no-op, so repeated scene activations notify components exactly once.
//
// Parameters:
//   - e: the subtree root
//   - active: the new derived state
func (h *Hierarchy) ProcessActive(e Handle, active bool) {
	n := h.node(e)
	if n == nil || n.activeInHierarchy == active {
		return
	}
	n.activeInHierarchy = active

	for _, c := range n.components {
		if active {
			c.OnActivate(h, e)
		} else {
			c.OnDeactivate(h, e)
		}
	}

	for _, child := range n.children {
		cn := &h.nodes[child]
		if active {
			if cn.active {
				h.ProcessActive(child, true)
			}
		} else {
			if cn.activeInHierarchy {
				h.ProcessActive(child, false)
			}
		}
	}
}

// SetParent reparents child under parent, appending it to the parent's
// child list and re-deriving the child's active state. Reparenting to Nil
// detaches the child.
//
// Parameters:
//   - child: the entity to reparent
//   - parent: the new parent, or Nil
func (h *Hierarchy) SetParent(child, parent Handle) {
	n := h.node(child)
	if n == nil || child == parent {
		return
	}
	h.Detach(child)
	if parent != Nil {
		p := h.node(parent)
		if p == nil {
			return
		}
		n.parent = parent
		p.children = append(p.children, child)
		// Children adopt the parent's owner so scene searches see them.
		h.SetOwnerRecursive(child, p.owner)
	}

	want := n.active && h.parentChainActive(child)
	if want != n.activeInHierarchy {
		h.ProcessActive(child, want)
	}
}

// Detach removes the entity from its parent's child list. Root entities
// are unaffected; scenes remove roots through their own root management.
//
// Parameters:
//   - e: the entity to detach
func (h *Hierarchy) Detach(e Handle) {
	n := h.node(e)
	if n == nil || n.parent == Nil {
		return
	}
	p := &h.nodes[n.parent]
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = Nil
}

// SetRootFlag marks or unmarks the entity as a scene root. Maintained by
// scene root management.
func (h *Hierarchy) SetRootFlag(e Handle, root bool) {
	if n := h.node(e); n != nil {
		n.isRoot = root
		if !root {
			n.siblingIndex = -1
		}
	}
}

// SetSiblingIndex records the entity's position in its scene's root list.
// Maintained by scene root management.
func (h *Hierarchy) SetSiblingIndex(e Handle, index int) {
	if n := h.node(e); n != nil {
		n.siblingIndex = index
	}
}

// SetOwnerRecursive reassigns the owning scene reference for the entity
// and all its descendants.
//
// Parameters:
//   - e: the subtree root
//   - o: the new owner (nil clears)
func (h *Hierarchy) SetOwnerRecursive(e Handle, o Owner) {
	n := h.node(e)
	if n == nil {
		return
	}
	n.owner = o
	for _, child := range n.children {
		h.SetOwnerRecursive(child, o)
	}
}

// Destroy deactivates (if needed) and frees the entity and its whole
// subtree, firing each component's OnDestroy. The handle and all subtree
// handles become invalid.
//
// Parameters:
//   - e: the entity to destroy
func (h *Hierarchy) Destroy(e Handle) {
	n := h.node(e)
	if n == nil {
		return
	}
	if n.activeInHierarchy {
		h.ProcessActive(e, false)
	}

	// Children detach themselves from e as they are destroyed; always
	// take index 0 until none remain.
	for len(n.children) > 0 {
		h.Destroy(n.children[0])
	}

	for _, c := range n.components {
		c.OnDestroy(h, e)
	}

	h.Detach(e)
	h.nodes[e] = node{}
	h.free = append(h.free, e)
}
