package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/camera"
	"github.com/strata-engine/strata/engine/entity"
	"github.com/strata-engine/strata/engine/light"
	"github.com/strata-engine/strata/engine/material"
	"github.com/strata-engine/strata/engine/render"
	"github.com/strata-engine/strata/engine/shader"
)

type countingComponent struct {
	activated, deactivated, destroyed int
}

func (c *countingComponent) OnActivate(h *entity.Hierarchy, e entity.Handle)   { c.activated++ }
func (c *countingComponent) OnDeactivate(h *entity.Hierarchy, e entity.Handle) { c.deactivated++ }
func (c *countingComponent) OnDestroy(h *entity.Hierarchy, e entity.Handle)    { c.destroyed++ }

type testGeometry struct{ name string }

func (g *testGeometry) Name() string { return g.name }

type testProgram struct{ name string }

func (p *testProgram) Name() string { return p.name }

// testBackend records draw submissions; everything else is a no-op.
type testBackend struct {
	drawn []string
}

var _ render.Backend = &testBackend{}

func (b *testBackend) BeginFrame() error { return nil }
func (b *testBackend) EndFrame()         {}
func (b *testBackend) ActivateRenderTarget(target *common.RenderTarget, viewport common.Viewport, mipLevel int) {
}
func (b *testBackend) ClearRenderTarget(flags common.ClearFlag, color common.Color) {}
func (b *testBackend) DrawPrimitive(geometry render.Geometry, subMesh int, program shader.Program) {
	b.drawn = append(b.drawn, geometry.Name())
}
func (b *testBackend) ResolveRenderTarget(target *common.RenderTarget) {}
func (b *testBackend) GenerateMipmaps(target *common.RenderTarget)     {}
func (b *testBackend) Resize(width, height int)                        {}
func (b *testBackend) Destroy()                                        {}

func TestCreateRootEntityOrderAndIndices(t *testing.T) {
	sc := NewScene("test")
	a := sc.CreateRootEntity("A")
	b := sc.CreateRootEntity("B")
	c := sc.CreateRootEntity("C")

	require.Equal(t, []entity.Handle{a, b, c}, sc.RootEntities())
	assert.Equal(t, 3, sc.RootEntityCount())

	h := sc.Hierarchy()
	for i, e := range sc.RootEntities() {
		assert.Equal(t, i, h.SiblingIndex(e))
		assert.True(t, h.IsRoot(e))
	}
}

func TestAddRootEntityValidation(t *testing.T) {
	sc := NewScene("test")
	h := sc.Hierarchy()

	err := sc.AddRootEntity(0, entity.Nil)
	require.Error(t, err)

	e := h.New("e")
	require.Error(t, sc.AddRootEntity(-1, e))
	require.Error(t, sc.AddRootEntity(1, e))
	require.NoError(t, sc.AddRootEntity(0, e))
}

func TestAddRootEntityInsertRenumbers(t *testing.T) {
	sc := NewScene("test")
	a := sc.CreateRootEntity("A")
	c := sc.CreateRootEntity("C")

	h := sc.Hierarchy()
	b := h.New("B")
	require.NoError(t, sc.AddRootEntity(1, b))

	require.Equal(t, []entity.Handle{a, b, c}, sc.RootEntities())
	for i, e := range sc.RootEntities() {
		assert.Equal(t, i, h.SiblingIndex(e))
	}
}

func TestRemoveRootEntityRenumbers(t *testing.T) {
	sc := NewScene("test")
	a := sc.CreateRootEntity("A")
	b := sc.CreateRootEntity("B")
	c := sc.CreateRootEntity("C")
	h := sc.Hierarchy()

	sc.RemoveRootEntity(b)

	require.Equal(t, []entity.Handle{a, c}, sc.RootEntities())
	assert.Equal(t, 0, h.SiblingIndex(a))
	assert.Equal(t, 1, h.SiblingIndex(c))
	assert.False(t, h.IsRoot(b))
	assert.Equal(t, -1, h.SiblingIndex(b))
	assert.Nil(t, h.Owner(b))

	// Removing a non-root is ignored.
	sc.RemoveRootEntity(b)
	assert.Equal(t, 2, sc.RootEntityCount())
}

func TestAddRootEntityPromotesChild(t *testing.T) {
	sc := NewScene("test")
	root := sc.CreateRootEntity("root")
	h := sc.Hierarchy()
	child := h.New("child")
	h.SetParent(child, root)

	require.NoError(t, sc.AddRootEntity(sc.RootEntityCount(), child))

	assert.Equal(t, entity.Nil, h.Parent(child))
	assert.True(t, h.IsRoot(child))
	assert.Empty(t, h.Children(root))
}

func TestAddRootEntityMovesBetweenScenes(t *testing.T) {
	h := entity.NewHierarchy()
	from := NewScene("from", WithHierarchy(h))
	to := NewScene("to", WithHierarchy(h))
	require.Same(t, h, from.Hierarchy())
	require.Same(t, h, to.Hierarchy())

	from.ProcessActive(true)
	to.ProcessActive(true)

	stay := from.CreateRootEntity("stay")
	mover := from.CreateRootEntity("mover")
	comp := &countingComponent{}
	h.AddComponent(mover, comp)
	require.Equal(t, 1, comp.activated)

	anchor := to.CreateRootEntity("anchor")
	require.NoError(t, to.AddRootEntity(to.RootEntityCount(), mover))

	// The entity left the old scene's root list, which renumbered.
	require.Equal(t, []entity.Handle{stay}, from.RootEntities())
	assert.Equal(t, 0, h.SiblingIndex(stay))

	// It joined the new scene, ownership transferred down the subtree.
	require.Equal(t, []entity.Handle{anchor, mover}, to.RootEntities())
	assert.Equal(t, 1, h.SiblingIndex(mover))
	assert.Same(t, to, h.Owner(mover))

	// Leaving the active source deactivated once; arriving in the active
	// destination reactivated once.
	assert.Equal(t, 1, comp.deactivated)
	assert.Equal(t, 2, comp.activated)
	assert.True(t, h.ActiveInHierarchy(mover))

	// Moving into an inactive scene leaves the entity dormant.
	idle := NewScene("idle", WithHierarchy(h))
	require.NoError(t, idle.AddRootEntity(0, mover))
	require.Equal(t, []entity.Handle{anchor}, to.RootEntities())
	assert.Equal(t, 2, comp.deactivated)
	assert.False(t, h.ActiveInHierarchy(mover))
}

func TestSceneActivationFiresComponentsOnce(t *testing.T) {
	sc := NewScene("test")
	e := sc.CreateRootEntity("box")
	h := sc.Hierarchy()
	comp := &countingComponent{}
	h.AddComponent(e, comp)

	// The scene starts inactive; nothing fires yet.
	require.False(t, sc.ActiveInEngine())
	require.Equal(t, 0, comp.activated)

	sc.ProcessActive(true)
	assert.True(t, sc.ActiveInEngine())
	assert.Equal(t, 1, comp.activated)

	// Re-activating an active scene is a no-op.
	sc.ProcessActive(true)
	assert.Equal(t, 1, comp.activated)

	sc.ProcessActive(false)
	assert.Equal(t, 1, comp.deactivated)
}

func TestRootAddedToActiveSceneActivates(t *testing.T) {
	sc := NewScene("test")
	sc.ProcessActive(true)

	e := sc.CreateRootEntity("late")
	h := sc.Hierarchy()
	assert.True(t, h.ActiveInHierarchy(e))

	sc.RemoveRootEntity(e)
	assert.False(t, h.ActiveInHierarchy(e))
}

func TestFindEntityByNamePrefersLaterRoots(t *testing.T) {
	sc := NewScene("test")
	sc.CreateRootEntity("dup")
	second := sc.CreateRootEntity("dup")

	assert.Equal(t, second, sc.FindEntityByName("dup"))
	assert.Equal(t, entity.Nil, sc.FindEntityByName("missing"))
}

func TestFindEntityByNameChecksLevelBeforeDescending(t *testing.T) {
	sc := NewScene("test")
	root := sc.CreateRootEntity("root")
	h := sc.Hierarchy()

	deep := h.New("first")
	grandchild := h.New("target")
	h.SetParent(deep, root)
	h.SetParent(grandchild, deep)

	direct := h.New("target")
	h.SetParent(direct, root)

	// Both children of root are checked before any grandchild.
	assert.Equal(t, direct, sc.FindEntityByName("target"))
}

func TestFindEntityByPath(t *testing.T) {
	sc := NewScene("test")
	player := sc.CreateRootEntity("Player")
	h := sc.Hierarchy()
	arm := h.New("Arm")
	hand := h.New("Hand")
	h.SetParent(arm, player)
	h.SetParent(hand, arm)

	assert.Equal(t, hand, sc.FindEntityByPath("Player/Arm/Hand"))
	assert.Equal(t, arm, sc.FindEntityByPath("/Player/Arm"))
	assert.Equal(t, player, sc.FindEntityByPath("Player"))
	assert.Equal(t, entity.Nil, sc.FindEntityByPath("Player/Leg"))
	assert.Equal(t, entity.Nil, sc.FindEntityByPath(""))
}

func TestAddCameraIgnoresDuplicates(t *testing.T) {
	sc := NewScene("test")
	cam := camera.NewCamera("main")

	sc.AddCamera(cam)
	sc.AddCamera(cam)
	require.Len(t, sc.Cameras(), 1)

	sc.AddCamera(nil)
	require.Len(t, sc.Cameras(), 1)

	sc.RemoveCamera(cam)
	assert.Empty(t, sc.Cameras())
}

func TestSetAmbientLightNilKeepsCurrent(t *testing.T) {
	sc := NewScene("test")
	current := sc.AmbientLight()
	require.NotNil(t, current)

	sc.SetAmbientLight(nil)
	assert.Same(t, current, sc.AmbientLight())

	replacement := light.NewAmbient(common.Color{R: 0.5, A: 1}, 1)
	sc.SetAmbientLight(replacement)
	assert.Same(t, replacement, sc.AmbientLight())
}

func TestSunLightThroughRegistry(t *testing.T) {
	sc := NewScene("test")
	require.Nil(t, sc.SunLight())

	sun := light.NewLight(light.LightTypeDirectional, light.WithCastsShadows(true))
	bright := light.NewLight(light.LightTypeDirectional, light.WithIntensity(50))
	sc.AttachLight(bright)
	sc.AttachLight(sun)

	assert.Same(t, sun, sc.SunLight())

	sc.DetachLight(sun)
	assert.Same(t, bright, sc.SunLight())
}

func TestRendererRegistrationFollowsActivation(t *testing.T) {
	sc := NewScene("test")
	sc.ProcessActive(true)

	e := sc.CreateRootEntity("box")
	h := sc.Hierarchy()
	mat := material.NewMaterial("lit")
	render.NewMeshRenderer(h, e, &testGeometry{name: "cube"}, mat)

	require.Len(t, sc.Renderers(), 1)

	h.SetActive(e, false)
	assert.Empty(t, sc.Renderers())

	h.SetActive(e, true)
	assert.Len(t, sc.Renderers(), 1)
}

func TestRenderFrameDrawsActiveRenderers(t *testing.T) {
	sc := NewScene("test")
	sc.ProcessActive(true)

	cam := camera.NewCamera("main")
	sc.AddCamera(cam)

	e := sc.CreateRootEntity("box")
	h := sc.Hierarchy()
	h.SetPosition(e, 0, 0, -5)
	mat := material.NewMaterial("lit")
	mat.RegisterProgram(nil, &testProgram{name: "lit-prog"})
	render.NewMeshRenderer(h, e, &testGeometry{name: "cube"}, mat)

	backend := &testBackend{}
	sc.RenderFrame(backend, 800, 600)

	assert.Equal(t, []string{"cube"}, backend.drawn)

	// The frame refreshes scene-level shader state.
	ambient := sc.ShaderData().Buffer(light.BufferAmbientColor)
	require.Len(t, ambient, 3)
	assert.InDelta(t, 0.2, ambient[0], 1e-6)
}

func TestDestroyTearsDownScene(t *testing.T) {
	sc := NewScene("test")
	sc.ProcessActive(true)
	e := sc.CreateRootEntity("box")
	h := sc.Hierarchy()
	comp := &countingComponent{}
	h.AddComponent(e, comp)

	sc.Destroy()

	assert.Equal(t, 0, sc.RootEntityCount())
	assert.False(t, h.Valid(e))
	assert.Equal(t, 1, comp.deactivated)
	assert.Equal(t, 1, comp.destroyed)

	// Destroying twice is safe.
	sc.Destroy()
}
