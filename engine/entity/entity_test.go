package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-engine/strata/common"
)

type stubOwner struct{ active bool }

func (o *stubOwner) ActiveInEngine() bool { return o.active }

type countingComponent struct {
	activated, deactivated, destroyed int
}

func (c *countingComponent) OnActivate(h *Hierarchy, e Handle)   { c.activated++ }
func (c *countingComponent) OnDeactivate(h *Hierarchy, e Handle) { c.deactivated++ }
func (c *countingComponent) OnDestroy(h *Hierarchy, e Handle)    { c.destroyed++ }

// newActiveRoot creates a root entity owned by an engine-active owner, in
// the state scene root management would leave it.
func newActiveRoot(h *Hierarchy, name string) Handle {
	e := h.New(name)
	h.SetRootFlag(e, true)
	h.SetOwnerRecursive(e, &stubOwner{active: true})
	h.ProcessActive(e, true)
	return e
}

func TestHierarchyNewDefaults(t *testing.T) {
	h := NewHierarchy()
	e := h.New("thing")

	require.True(t, h.Valid(e))
	assert.Equal(t, "thing", h.Name(e))
	assert.Equal(t, common.LayerDefault, h.Layer(e))
	assert.True(t, h.Active(e))
	assert.False(t, h.ActiveInHierarchy(e))
	assert.False(t, h.IsRoot(e))
	assert.Equal(t, -1, h.SiblingIndex(e))
	assert.Equal(t, Nil, h.Parent(e))
	assert.Nil(t, h.Owner(e))
}

func TestHierarchyInvalidHandles(t *testing.T) {
	h := NewHierarchy()
	assert.False(t, h.Valid(Nil))
	assert.False(t, h.Valid(Handle(99)))
	assert.Equal(t, "", h.Name(Handle(99)))
	assert.Equal(t, [3]float32{}, h.Position(Handle(99)))
}

func TestHierarchyRecyclesSlots(t *testing.T) {
	h := NewHierarchy()
	a := h.New("a")
	h.Destroy(a)
	require.False(t, h.Valid(a))

	b := h.New("b")
	assert.Equal(t, a, b)
	assert.True(t, h.Valid(b))
	assert.Equal(t, "b", h.Name(b))
}

func TestSetParentAndDetach(t *testing.T) {
	h := NewHierarchy()
	parent := h.New("parent")
	child := h.New("child")

	h.SetParent(child, parent)
	assert.Equal(t, parent, h.Parent(child))
	require.Equal(t, []Handle{child}, h.Children(parent))

	// Parenting to itself is ignored.
	h.SetParent(parent, parent)
	assert.Equal(t, Nil, h.Parent(parent))

	h.Detach(child)
	assert.Equal(t, Nil, h.Parent(child))
	assert.Empty(t, h.Children(parent))
}

func TestSetParentAdoptsOwner(t *testing.T) {
	h := NewHierarchy()
	root := newActiveRoot(h, "root")
	child := h.New("child")
	grandchild := h.New("grandchild")
	h.SetParent(grandchild, child)

	h.SetParent(child, root)
	assert.Same(t, h.Owner(root), h.Owner(child))
	assert.Same(t, h.Owner(root), h.Owner(grandchild))
}

func TestActivationPropagatesThroughSubtree(t *testing.T) {
	h := NewHierarchy()
	root := newActiveRoot(h, "root")
	child := h.New("child")
	comp := &countingComponent{}
	h.AddComponent(child, comp)

	// Parenting under an active root activates the child.
	h.SetParent(child, root)
	require.True(t, h.ActiveInHierarchy(child))
	assert.Equal(t, 1, comp.activated)

	h.SetActive(child, false)
	assert.False(t, h.ActiveInHierarchy(child))
	assert.True(t, h.ActiveInHierarchy(root))
	assert.Equal(t, 1, comp.deactivated)

	h.SetActive(child, true)
	assert.Equal(t, 2, comp.activated)

	// Setting the same state again fires nothing.
	h.SetActive(child, true)
	assert.Equal(t, 2, comp.activated)
}

func TestDeactivatingParentSkipsInactiveChild(t *testing.T) {
	h := NewHierarchy()
	root := newActiveRoot(h, "root")
	child := h.New("child")
	comp := &countingComponent{}
	h.AddComponent(child, comp)
	h.SetParent(child, root)
	h.SetActive(child, false)
	require.Equal(t, 1, comp.deactivated)

	// The child is already inactive; the root's deactivation must not
	// notify it again.
	h.ProcessActive(root, false)
	assert.Equal(t, 1, comp.deactivated)

	// Reactivating the root does not wake a child whose own flag is off.
	h.ProcessActive(root, true)
	assert.Equal(t, 1, comp.activated)
}

func TestProcessActiveIsIdempotent(t *testing.T) {
	h := NewHierarchy()
	e := h.New("root")
	h.SetRootFlag(e, true)
	h.SetOwnerRecursive(e, &stubOwner{active: true})
	comp := &countingComponent{}
	h.AddComponent(e, comp)

	h.ProcessActive(e, true)
	h.ProcessActive(e, true)
	assert.Equal(t, 1, comp.activated)
}

func TestSetActiveDetachedEntityStaysInactive(t *testing.T) {
	h := NewHierarchy()
	e := h.New("floating")
	comp := &countingComponent{}
	h.AddComponent(e, comp)

	// No root flag, no parent: the entity can never become active.
	h.SetActive(e, false)
	h.SetActive(e, true)
	assert.False(t, h.ActiveInHierarchy(e))
	assert.Equal(t, 0, comp.activated)
}

func TestAddComponentOnActiveEntityFiresImmediately(t *testing.T) {
	h := NewHierarchy()
	root := newActiveRoot(h, "root")

	comp := &countingComponent{}
	h.AddComponent(root, comp)
	assert.Equal(t, 1, comp.activated)
}

func TestDestroyCascades(t *testing.T) {
	h := NewHierarchy()
	root := newActiveRoot(h, "root")
	child := h.New("child")
	grandchild := h.New("grandchild")
	h.SetParent(child, root)
	h.SetParent(grandchild, child)

	rootComp := &countingComponent{}
	childComp := &countingComponent{}
	h.AddComponent(root, rootComp)
	h.AddComponent(child, childComp)

	h.Destroy(root)

	assert.False(t, h.Valid(root))
	assert.False(t, h.Valid(child))
	assert.False(t, h.Valid(grandchild))

	// Deactivation precedes destruction, each exactly once.
	assert.Equal(t, 1, rootComp.deactivated)
	assert.Equal(t, 1, rootComp.destroyed)
	assert.Equal(t, 1, childComp.deactivated)
	assert.Equal(t, 1, childComp.destroyed)
}
