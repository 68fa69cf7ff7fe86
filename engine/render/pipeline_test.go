package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/camera"
	"github.com/strata-engine/strata/engine/material"
	"github.com/strata-engine/strata/engine/shader"
)

func passNames(p Pipeline) []string {
	names := make([]string, 0, len(p.Passes()))
	for _, pass := range p.Passes() {
		names = append(names, pass.Name())
	}
	return names
}

func TestNewPipelineHasDefaultPass(t *testing.T) {
	p := NewPipeline()
	require.Len(t, p.Passes(), 1)
	def := p.PassByName(DefaultPassName)
	require.NotNil(t, def)
	assert.Equal(t, 0, def.Priority())
	assert.True(t, def.Enabled())
}

func TestAddPassKeepsPriorityOrder(t *testing.T) {
	p := NewPipeline()
	p.AddPass(NewPass("late", WithPriority(10)))
	p.AddPass(NewPass("early", WithPriority(-5)))
	p.AddPass(NewPass("tie"))

	// Shared priorities keep insertion order: "tie" was added after the
	// default pass, both at priority 0.
	require.Equal(t, []string{"early", DefaultPassName, "tie", "late"}, passNames(p))
}

func TestRemovePassUnknownIsNoop(t *testing.T) {
	p := NewPipeline()
	p.RemovePass(NewPass("never-added"))
	require.Equal(t, []string{DefaultPassName}, passNames(p))

	p.RemovePass(p.PassByName(DefaultPassName))
	require.Empty(t, p.Passes())
}

func TestPassByNameMissing(t *testing.T) {
	p := NewPipeline()
	require.Nil(t, p.PassByName("nope"))
}

func TestPipelineRenderRoutesAndSorts(t *testing.T) {
	opaqueNear := newStubRenderer(&fakeGeometry{name: "opaque-near"},
		newTestMaterial("lit", material.RenderQueueOpaque), boundsAt(0, 0, -5))
	opaqueFar := newStubRenderer(&fakeGeometry{name: "opaque-far"},
		newTestMaterial("lit2", material.RenderQueueOpaque), boundsAt(0, 0, -20))
	cutout := newStubRenderer(&fakeGeometry{name: "cutout"},
		newTestMaterial("foliage", material.RenderQueueAlphaTest), boundsAt(0, 0, -10))
	glass := newStubRenderer(&fakeGeometry{name: "glass"},
		newTestMaterial("glass", material.RenderQueueTransparent), boundsAt(0, 0, -10))
	behind := newStubRenderer(&fakeGeometry{name: "behind"},
		newTestMaterial("lit3", material.RenderQueueOpaque), boundsAt(0, 0, 50))

	scene := newFakeScene(opaqueNear, opaqueFar, cutout, glass, behind)
	backend := &recordingBackend{}
	cam := camera.NewCamera("main")
	p := NewPipeline()

	p.Render(&Context{Scene: scene, Camera: cam, Backend: backend, CanvasWidth: 800, CanvasHeight: 600})

	// Opaque near-to-far, then alpha-test, then transparent.
	require.Equal(t, []string{"opaque-near", "opaque-far", "cutout", "glass"}, backend.drawnNames())

	// Geometry behind the camera is culled and never prepared.
	assert.True(t, behind.Culled())
	assert.Equal(t, 0, behind.prepared)
	assert.False(t, opaqueNear.Culled())
	assert.Equal(t, 1, opaqueNear.prepared)

	// Camera state lands in the scene's shader data.
	assert.Len(t, scene.data.Buffer(BufferCameraViewProjection), 16)
	assert.Equal(t, []float32{0, 0, 0}, scene.data.Buffer(BufferCameraPosition))

	// One target activation with the canvas viewport, one camera clear.
	activates := backend.callsOf("activate")
	require.Len(t, activates, 1)
	assert.Nil(t, activates[0].target)
	assert.Equal(t, common.Viewport{Width: 800, Height: 600}, activates[0].viewport)
	clears := backend.callsOf("clear")
	require.Len(t, clears, 1)
	assert.Equal(t, common.ClearFlagColor|common.ClearFlagDepth, clears[0].flags)
}

func TestPipelineRenderLayerMaskCulls(t *testing.T) {
	hidden := newStubRenderer(&fakeGeometry{name: "hidden"},
		newTestMaterial("lit", material.RenderQueueOpaque), boundsAt(0, 0, -10))
	hidden.layer = common.Layer(1 << 5)
	hidden.elements[0].Layer = hidden.layer

	scene := newFakeScene(hidden)
	backend := &recordingBackend{}
	cam := camera.NewCamera("main")
	cam.SetCullingMask(common.LayerDefault)

	NewPipeline().Render(&Context{Scene: scene, Camera: cam, Backend: backend, CanvasWidth: 800, CanvasHeight: 600})

	assert.Empty(t, backend.drawnNames())
	assert.True(t, hidden.Culled())
}

// Perspective cameras sort by squared euclidean distance; orthographic
// cameras sort by signed forward-axis distance. A laterally offset object
// flips order between the two.
func TestSortKeyPerspectiveVsOrthographic(t *testing.T) {
	newScene := func() (*fakeScene, *stubRenderer, *stubRenderer) {
		offset := newStubRenderer(&fakeGeometry{name: "offset"},
			newTestMaterial("a", material.RenderQueueOpaque), boundsAt(15, 0, -16))
		centered := newStubRenderer(&fakeGeometry{name: "centered"},
			newTestMaterial("b", material.RenderQueueOpaque), boundsAt(0, 0, -17))
		return newFakeScene(offset, centered), offset, centered
	}

	scene, _, _ := newScene()
	backend := &recordingBackend{}
	persp := camera.NewCamera("persp")
	NewPipeline().Render(&Context{Scene: scene, Camera: persp, Backend: backend, CanvasWidth: 800, CanvasHeight: 600})
	// centered: 17^2 = 289 < offset: 15^2 + 16^2 = 481.
	require.Equal(t, []string{"centered", "offset"}, backend.drawnNames())

	scene, _, _ = newScene()
	backend = &recordingBackend{}
	ortho := camera.NewCamera("ortho")
	ortho.SetOrthographic(true)
	ortho.SetOrthographicSize(50)
	NewPipeline().Render(&Context{Scene: scene, Camera: ortho, Backend: backend, CanvasWidth: 800, CanvasHeight: 600})
	// Forward distance only: 16 < 17.
	require.Equal(t, []string{"offset", "centered"}, backend.drawnNames())
}

func TestDisabledPassRunsHooksOnly(t *testing.T) {
	pre, post := 0, 0
	p := NewPipeline()
	p.RemovePass(p.PassByName(DefaultPassName))
	p.AddPass(NewPass("off",
		WithPassEnabled(false),
		WithPreRenderHook(func(_ Pass, _ *PassContext) { pre++ }),
		WithPostRenderHook(func(_ Pass, _ *PassContext) { post++ }),
	))

	backend := &recordingBackend{}
	p.Render(&Context{Scene: newFakeScene(), Camera: camera.NewCamera("main"), Backend: backend, CanvasWidth: 100, CanvasHeight: 100})

	assert.Equal(t, 1, pre)
	assert.Equal(t, 1, post)
	assert.Empty(t, backend.calls)
}

func TestRenderOverrideReplacesQueueTraversal(t *testing.T) {
	visible := newStubRenderer(&fakeGeometry{name: "visible"},
		newTestMaterial("lit", material.RenderQueueOpaque), boundsAt(0, 0, -10))

	overridden := 0
	p := NewPipeline()
	p.RemovePass(p.PassByName(DefaultPassName))
	pass := NewPass("custom", WithRenderOverride(func(_ Pass, ctx *PassContext) {
		overridden++
		// The queues are still populated and sorted for the override.
		assert.Equal(t, 1, ctx.Opaque.Len())
	}))
	p.AddPass(pass)
	require.True(t, pass.HasRenderOverride())

	backend := &recordingBackend{}
	p.Render(&Context{Scene: newFakeScene(visible), Camera: camera.NewCamera("main"), Backend: backend, CanvasWidth: 100, CanvasHeight: 100})

	assert.Equal(t, 1, overridden)
	assert.Empty(t, backend.drawnNames())
	assert.Len(t, backend.callsOf("clear"), 1)
}

func TestSecondCameraTargetPassLoadsInsteadOfClearing(t *testing.T) {
	p := NewPipeline()
	p.AddPass(NewPass("overlay", WithPriority(1)))

	backend := &recordingBackend{}
	p.Render(&Context{Scene: newFakeScene(), Camera: camera.NewCamera("main"), Backend: backend, CanvasWidth: 100, CanvasHeight: 100})

	// Both passes activate the camera target but only the first clears it.
	assert.Len(t, backend.callsOf("activate"), 2)
	require.Len(t, backend.callsOf("clear"), 1)
}

func TestPassClearOverrideAppliesOnLaterPass(t *testing.T) {
	p := NewPipeline()
	p.AddPass(NewPass("depth-reset",
		WithPriority(1),
		WithPassClearFlags(common.ClearFlagDepth),
		WithPassClearColor(common.Color{R: 1, A: 1}),
	))

	backend := &recordingBackend{}
	p.Render(&Context{Scene: newFakeScene(), Camera: camera.NewCamera("main"), Backend: backend, CanvasWidth: 100, CanvasHeight: 100})

	clears := backend.callsOf("clear")
	require.Len(t, clears, 2)
	assert.Equal(t, common.ClearFlagColor|common.ClearFlagDepth, clears[0].flags)
	assert.Equal(t, common.ClearFlagDepth, clears[1].flags)
	assert.Equal(t, common.Color{R: 1, A: 1}, clears[1].color)
}

func TestPipelineResolvesAndMipmapsCameraTarget(t *testing.T) {
	target := &common.RenderTarget{Width: 256, Height: 256, SampleCount: 4, GenerateMipmaps: true}
	cam := camera.NewCamera("offscreen")
	cam.SetRenderTarget(target)

	backend := &recordingBackend{}
	NewPipeline().Render(&Context{Scene: newFakeScene(), Camera: cam, Backend: backend, CanvasWidth: 800, CanvasHeight: 600})

	activates := backend.callsOf("activate")
	require.Len(t, activates, 1)
	assert.Same(t, target, activates[0].target)
	assert.Equal(t, common.Viewport{Width: 256, Height: 256}, activates[0].viewport)

	require.Len(t, backend.callsOf("resolve"), 1)
	require.Len(t, backend.callsOf("mipmaps"), 1)
}

// texturedBackground builds a texture-mode background whose quad draws
// with a registered default program.
func texturedBackground() *Background {
	bg := NewBackground(&fakeGeometry{name: "bg-quad"})
	bg.Mode = BackgroundModeTexture
	bg.TextureMaterial = newTestMaterial("bg", material.RenderQueueOpaque)
	bg.TextureWidth = 256
	bg.TextureHeight = 256
	return bg
}

func TestBackgroundDrawsBetweenOpaqueAndTransparent(t *testing.T) {
	opaque := newStubRenderer(&fakeGeometry{name: "opaque"},
		newTestMaterial("lit", material.RenderQueueOpaque), boundsAt(0, 0, -5))
	glass := newStubRenderer(&fakeGeometry{name: "glass"},
		newTestMaterial("glass", material.RenderQueueTransparent), boundsAt(0, 0, -8))

	scene := newFakeScene(opaque, glass)
	scene.background = texturedBackground()
	backend := &recordingBackend{}

	NewPipeline().Render(&Context{Scene: scene, Camera: camera.NewCamera("main"), Backend: backend, CanvasWidth: 800, CanvasHeight: 600})

	// Opaque first so the quad is depth-rejected where covered, then the
	// quad, then blending on top.
	require.Equal(t, []string{"opaque", "bg-quad", "glass"}, backend.drawnNames())
}

func TestBackgroundSkippedWithoutColorClear(t *testing.T) {
	scene := newFakeScene()
	scene.background = texturedBackground()

	cam := camera.NewCamera("main")
	cam.SetClearFlags(common.ClearFlagDepth)
	backend := &recordingBackend{}

	NewPipeline().Render(&Context{Scene: scene, Camera: cam, Backend: backend, CanvasWidth: 800, CanvasHeight: 600})

	assert.Empty(t, backend.drawnNames())
}

func TestPassOwnedTargetResolvesAndMipmaps(t *testing.T) {
	target := &common.RenderTarget{Width: 128, Height: 128, SampleCount: 4, GenerateMipmaps: true}
	p := NewPipeline(WithPasses(NewPass("bloom",
		WithPriority(5),
		WithPassRenderTarget(target),
	)))

	backend := &recordingBackend{}
	p.Render(&Context{Scene: newFakeScene(), Camera: camera.NewCamera("main"), Backend: backend, CanvasWidth: 800, CanvasHeight: 600})

	resolves := backend.callsOf("resolve")
	require.Len(t, resolves, 1)
	assert.Same(t, target, resolves[0].target)
	mips := backend.callsOf("mipmaps")
	require.Len(t, mips, 1)
	assert.Same(t, target, mips[0].target)
}

func TestPipelineCameraMacroUnion(t *testing.T) {
	fog := shader.DeclareMacro("FOG")
	visible := newStubRenderer(&fakeGeometry{name: "visible"},
		newTestMaterial("lit", material.RenderQueueOpaque), boundsAt(0, 0, -10))

	cam := camera.NewCamera("main")
	cam.Macros().Add(fog)

	backend := &recordingBackend{}
	NewPipeline().Render(&Context{Scene: newFakeScene(visible), Camera: cam, Backend: backend, CanvasWidth: 100, CanvasHeight: 100})

	assert.True(t, visible.Macros().Has(fog))
}

func TestPipelineRenderAfterDestroyIsNoop(t *testing.T) {
	p := NewPipeline()
	p.Destroy()
	p.Destroy() // idempotent

	backend := &recordingBackend{}
	p.Render(&Context{Scene: newFakeScene(), Camera: camera.NewCamera("main"), Backend: backend, CanvasWidth: 100, CanvasHeight: 100})
	assert.Empty(t, backend.calls)
}

// boundsAt returns unit bounds centered on the given point.
func boundsAt(x, y, z float32) common.Bounds {
	return common.Bounds{
		Min: [3]float32{x - 0.5, y - 0.5, z - 0.5},
		Max: [3]float32{x + 0.5, y + 0.5, z + 0.5},
	}
}
