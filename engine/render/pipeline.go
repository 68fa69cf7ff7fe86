package render

import (
	"log"
	"slices"

	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/camera"
	"github.com/strata-engine/strata/engine/light"
	"github.com/strata-engine/strata/engine/material"
	"github.com/strata-engine/strata/engine/shader"
)

// Shader buffer names the pipeline writes into the scene's shader data
// each frame.
const (
	BufferCameraViewProjection = "u_VPMat"
	BufferCameraPosition       = "u_CameraPos"
)

// DefaultPassName is the name of the pass every pipeline starts with.
const DefaultPassName = "default"

// SceneState is the read surface the pipeline needs from the scene that
// owns it. Implemented by the scene package; declared here so the scene
// can depend on render without a cycle.
type SceneState interface {
	// Renderers returns the currently active renderers.
	//
	// Returns:
	//   - []Renderer: the active renderers
	Renderers() []Renderer

	// LightRegistry returns the scene's light registry.
	//
	// Returns:
	//   - *light.Registry: the registry
	LightRegistry() *light.Registry

	// ShaderData returns the scene-level shader data block shared by every
	// draw in the scene.
	//
	// Returns:
	//   - shader.Data: the scene data block
	ShaderData() shader.Data

	// AmbientLight returns the scene's ambient light term.
	//
	// Returns:
	//   - *light.Ambient: the ambient light
	AmbientLight() *light.Ambient

	// ShadowConfig returns the scene's directional shadow configuration.
	//
	// Returns:
	//   - light.ShadowConfig: the configuration
	ShadowConfig() light.ShadowConfig

	// SunLight returns the dominant directional light, or nil when the
	// scene has none.
	//
	// Returns:
	//   - light.Light: the sun light, or nil
	SunLight() light.Light

	// Background returns the scene's background, or nil for plain
	// clear-color backgrounds.
	//
	// Returns:
	//   - *Background: the background, or nil
	Background() *Background
}

// Context is the per-frame, per-camera input to the pipeline.
type Context struct {
	Scene   SceneState
	Camera  camera.Camera
	Backend Backend

	// Canvas size in pixels, used for default-surface viewports and
	// background fitting.
	CanvasWidth  int
	CanvasHeight int

	// ViewProjection is filled in by the pipeline during the frame.
	ViewProjection [16]float32
}

// Pipeline owns a camera frame: the shadow pass, the three render queues,
// and the prioritized pass list, executed in a fixed sequence per frame.
type Pipeline interface {
	// AddPass inserts a pass, keeping the list sorted by ascending
	// priority. Passes sharing a priority keep insertion order.
	//
	// Parameters:
	//   - pass: the pass to add
	AddPass(pass Pass)

	// RemovePass removes a pass. Passes not present are ignored.
	//
	// Parameters:
	//   - pass: the pass to remove
	RemovePass(pass Pass)

	// PassByName returns the first pass with the given name, or nil.
	//
	// Parameters:
	//   - name: the pass name
	//
	// Returns:
	//   - Pass: the pass, or nil when absent
	PassByName(name string) Pass

	// Passes returns the pass list in execution order. The returned slice
	// is the pipeline's backing storage; callers must not mutate it.
	//
	// Returns:
	//   - []Pass: the passes
	Passes() []Pass

	// Render executes one full camera frame: shadow pass, queue reset,
	// view-projection setup, culling and queue building, sorting, then the
	// pass list.
	//
	// Parameters:
	//   - ctx: the frame context
	Render(ctx *Context)

	// Destroy releases the pipeline's queues and shadow resources. The
	// pipeline is unusable afterwards.
	Destroy()
}

// pipelineImpl is the implementation of the Pipeline interface.
type pipelineImpl struct {
	passes []Pass

	opaque      *Queue
	alphaTest   *Queue
	transparent *Queue

	shadow *ShadowCasterPass

	destroyed bool
}

var _ Pipeline = &pipelineImpl{}

// NewPipeline creates a pipeline with the three standard queues and one
// enabled pass named "default" at priority 0.
//
// Parameters:
//   - opts: variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the new pipeline
func NewPipeline(opts ...PipelineBuilderOption) Pipeline {
	p := &pipelineImpl{
		opaque:      NewQueue(),
		alphaTest:   NewQueue(),
		transparent: NewQueue(),
	}
	p.AddPass(NewPass(DefaultPassName))
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipelineImpl) AddPass(pass Pass) {
	if pass == nil {
		log.Printf("[Render] AddPass called with nil pass; ignoring")
		return
	}
	p.passes = append(p.passes, pass)
	slices.SortStableFunc(p.passes, func(a, b Pass) int {
		return a.Priority() - b.Priority()
	})
}

func (p *pipelineImpl) RemovePass(pass Pass) {
	for i, existing := range p.passes {
		if existing == pass {
			p.passes = append(p.passes[:i], p.passes[i+1:]...)
			return
		}
	}
}

func (p *pipelineImpl) PassByName(name string) Pass {
	for _, pass := range p.passes {
		if pass.Name() == name {
			return pass
		}
	}
	return nil
}

func (p *pipelineImpl) Passes() []Pass {
	return p.passes
}

func (p *pipelineImpl) Render(ctx *Context) {
	if p.destroyed {
		log.Printf("[Render] Render called on destroyed pipeline; ignoring")
		return
	}
	cam := ctx.Camera

	// 1. Shadow map, from last frame's scene state where it matters.
	if p.shadow != nil {
		p.shadow.Render(ctx)
	}

	// 2. Reset the queues.
	p.opaque.Clear()
	p.alphaTest.Clear()
	p.transparent.Clear()

	// 3. View-projection setup.
	cam.Update()
	ctx.ViewProjection = cam.ViewProjectionMatrix()
	data := ctx.Scene.ShaderData()
	data.SetBuffer(BufferCameraViewProjection, ctx.ViewProjection[:])
	data.SetVector3(BufferCameraPosition, cam.Position())

	// 4. Cull and queue.
	p.callRender(ctx)

	// 5. Sort.
	p.opaque.Sort(CompareNearToFar)
	p.alphaTest.Sort(CompareNearToFar)
	p.transparent.Sort(CompareFarToNear)

	// 6. Pass execution.
	p.renderPasses(ctx)
}

// callRender walks the scene's active renderers, applies the camera layer
// mask and frustum test, and routes each visible element into its queue
// with a freshly stamped sort key.
func (p *pipelineImpl) callRender(ctx *Context) {
	cam := ctx.Camera
	frustum := cam.Frustum()
	camPos := cam.Position()
	mask := cam.CullingMask()
	ortho := cam.Orthographic()
	var forward [3]float32
	if ortho {
		forward = cam.Forward()
	}

	for _, r := range ctx.Scene.Renderers() {
		if r.Layer()&mask == 0 {
			r.SetCulled(true)
			continue
		}
		bounds := r.Bounds()
		visible := frustum.IntersectsBounds(bounds)
		r.SetCulled(!visible)
		if !visible {
			continue
		}

		r.PrepareRender(cam)
		r.Macros().UnionWith(cam.Macros())

		toCenter := common.Sub3(bounds.Center(), camPos)
		var dist float32
		if ortho {
			dist = common.Dot3(forward, toCenter)
		} else {
			dist = common.LengthSq3(toCenter)
		}

		for _, e := range r.RenderElements() {
			e.DistanceForSort = dist
			switch e.QueueBucket() {
			case material.RenderQueueTransparent:
				p.transparent.PushPrimitive(e)
			case material.RenderQueueAlphaTest:
				p.alphaTest.PushPrimitive(e)
			default:
				p.opaque.PushPrimitive(e)
			}
		}
	}
}

// renderPasses runs the pass list in priority order. Pre and post hooks
// fire for every pass; disabled passes skip only their Render step. The
// first enabled pass drawing to the camera's target performs the camera
// clear; later camera-target passes draw additively unless they carry
// their own clear override. Each enabled pass finishes by resolving and
// mipmapping the target it bound, when that target asks for either.
func (p *pipelineImpl) renderPasses(ctx *Context) {
	cam := ctx.Camera
	pctx := &PassContext{
		Camera:       cam,
		Backend:      ctx.Backend,
		Opaque:       p.opaque,
		AlphaTest:    p.alphaTest,
		Transparent:  p.transparent,
		Background:   ctx.Scene.Background(),
		CanvasWidth:  ctx.CanvasWidth,
		CanvasHeight: ctx.CanvasHeight,
	}

	cameraCleared := false
	for _, pass := range p.passes {
		pass.PreRender(pctx)
		if pass.Enabled() {
			target := pass.RenderTarget()
			onCameraTarget := target == nil
			if onCameraTarget {
				target = cam.RenderTarget()
			}

			var vp common.Viewport
			if target != nil {
				vp = cam.Viewport().ToPixels(target.Width, target.Height)
			} else {
				vp = cam.Viewport().ToPixels(ctx.CanvasWidth, ctx.CanvasHeight)
			}
			ctx.Backend.ActivateRenderTarget(target, vp, 0)

			flags := cam.ClearFlags()
			color := cam.ClearColor()
			if o := pass.ClearFlagsOverride(); o != nil {
				flags = *o
			} else if onCameraTarget && cameraCleared {
				flags = common.ClearFlagNone
			}
			if o := pass.ClearColorOverride(); o != nil {
				color = *o
			}
			if flags != common.ClearFlagNone {
				ctx.Backend.ClearRenderTarget(flags, color)
			}
			if onCameraTarget {
				cameraCleared = true
			}

			pass.Render(pctx)

			if target != nil {
				if target.MultiSampled() {
					ctx.Backend.ResolveRenderTarget(target)
				}
				if target.GenerateMipmaps {
					ctx.Backend.GenerateMipmaps(target)
				}
			}
		}
		pass.PostRender(pctx)
	}
}

func (p *pipelineImpl) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.opaque.Destroy()
	p.alphaTest.Destroy()
	p.transparent.Destroy()
	if p.shadow != nil {
		p.shadow.Destroy()
		p.shadow = nil
	}
	p.passes = nil
}
