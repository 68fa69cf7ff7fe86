package render

import (
	"log"

	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/camera"
	"github.com/strata-engine/strata/engine/light"
	"github.com/strata-engine/strata/engine/material"
)

// Shader macro enabled on the scene when the shadow map is valid this
// frame. Carries the cascade count as its value.
const MacroSceneShadow = "SCENE_SHADOW"

// Shader buffer and uniform names the shadow pass writes into the scene's
// shader data block.
const (
	BufferShadowViewProjection = "u_ShadowVPMat"
	BufferShadowSplitDistances = "u_ShadowSplits"
	BufferShadowInfo           = "u_ShadowInfo"
)

// Shader buffer name the active cascade's view-projection is bound to on
// the depth material while casters are drawn.
const BufferShadowCasterViewProjection = "u_ShadowCasterVP"

// ShadowTargetFactory creates a depth-only render target for the shadow
// map at the given square resolution.
type ShadowTargetFactory func(resolution int) *common.RenderTarget

// ShadowCasterPass renders shadow-casting geometry into a depth map from
// the sun light's point of view, one atlas region per cascade, and
// publishes the cascade matrices into the scene's shader data.
type ShadowCasterPass struct {
	depthMaterial material.Material
	factory       ShadowTargetFactory

	queue          *Queue
	target         *common.RenderTarget
	lastResolution int

	vps    [4][16]float32
	vpFlat [64]float32
	splits [4]float32
	info   [4]float32
}

// ShadowCasterPassBuilderOption is a function that configures a shadow
// caster pass during construction.
type ShadowCasterPassBuilderOption func(*ShadowCasterPass)

// WithShadowTargetFactory is an option builder that supplies the factory
// the pass uses to (re)create its depth target when the configured
// resolution changes. Without a factory the pass is inert.
//
// Parameters:
//   - fn: the factory function
//
// Returns:
//   - ShadowCasterPassBuilderOption: a function that applies the factory option
func WithShadowTargetFactory(fn ShadowTargetFactory) ShadowCasterPassBuilderOption {
	return func(p *ShadowCasterPass) {
		p.factory = fn
	}
}

// NewShadowCasterPass creates a shadow caster pass drawing casters with
// the given depth-only material.
//
// Parameters:
//   - depthMaterial: the replacement material for depth rendering (must not be nil)
//   - opts: variadic list of ShadowCasterPassBuilderOption functions
//
// Returns:
//   - *ShadowCasterPass: the new pass
func NewShadowCasterPass(depthMaterial material.Material, opts ...ShadowCasterPassBuilderOption) *ShadowCasterPass {
	if depthMaterial == nil {
		panic("render: NewShadowCasterPass requires a non-nil depth material")
	}
	p := &ShadowCasterPass{
		depthMaterial: depthMaterial,
		queue:         NewQueue(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ShadowMap returns the pass's current depth target, or nil if no shadow
// map has been rendered yet.
//
// Returns:
//   - *common.RenderTarget: the shadow map target, or nil
func (p *ShadowCasterPass) ShadowMap() *common.RenderTarget {
	return p.target
}

// Render draws the shadow map for one frame. When the scene has shadows
// disabled, no shadow-casting sun light, or no usable depth target, the
// scene shadow macro is disabled and nothing is drawn.
//
// Parameters:
//   - ctx: the frame context for the camera being rendered
func (p *ShadowCasterPass) Render(ctx *Context) {
	scene := ctx.Scene
	data := scene.ShaderData()
	cfg := scene.ShadowConfig()

	sun := scene.SunLight()
	if !cfg.CastShadow || sun == nil || !sun.CastsShadows() {
		data.DisableMacro(MacroSceneShadow)
		return
	}
	if !p.ensureTarget(cfg.Resolution) {
		data.DisableMacro(MacroSceneShadow)
		return
	}

	cascades := cfg.CascadeMode.CascadeCount()
	p.computeCascades(ctx.Camera, sun, cfg, cascades)

	p.buildCasterQueue(ctx.Camera, scene)

	depthData := p.depthMaterial.ShaderData()
	for i := 0; i < cascades; i++ {
		ctx.Backend.ActivateRenderTarget(p.target, p.cascadeViewport(i, cascades, cfg.Resolution), 0)
		ctx.Backend.ClearRenderTarget(common.ClearFlagDepth, common.ColorSolidBlack)
		depthData.SetBuffer(BufferShadowCasterViewProjection, p.vps[i][:])
		p.queue.Render(ctx.Camera, p.depthMaterial, common.LayerAll, ctx.Backend)
	}

	for i := 0; i < cascades; i++ {
		copy(p.vpFlat[i*16:(i+1)*16], p.vps[i][:])
	}
	p.info = [4]float32{cfg.Bias, cfg.MaxDistance, float32(cfg.Resolution), float32(cascades)}

	data.EnableMacroValue(MacroSceneShadow, cascades)
	data.SetBuffer(BufferShadowViewProjection, p.vpFlat[:cascades*16])
	data.SetBuffer(BufferShadowSplitDistances, p.splits[:])
	data.SetBuffer(BufferShadowInfo, p.info[:])
}

// ensureTarget lazily creates or recreates the depth target when the
// configured resolution changes.
func (p *ShadowCasterPass) ensureTarget(resolution int) bool {
	if p.target != nil && p.lastResolution == resolution {
		return true
	}
	if p.factory == nil {
		if p.target == nil {
			log.Printf("[Render] shadow pass has no target factory; shadows disabled")
		}
		return p.target != nil
	}
	if p.target != nil {
		p.target.Release()
	}
	p.target = p.factory(resolution)
	p.lastResolution = resolution
	return p.target != nil
}

// computeCascades derives one orthographic view-projection per cascade
// centered along the camera's forward axis, with each cascade covering a
// progressively larger slice of the shadow distance.
func (p *ShadowCasterPass) computeCascades(cam camera.Camera, sun light.Light, cfg light.ShadowConfig, cascades int) {
	dir := common.Normalize3(sun.Direction())
	up := [3]float32{0, 1, 0}
	if dir[0] == 0 && dir[2] == 0 {
		up = [3]float32{0, 0, 1}
	}

	camPos := cam.Position()
	forward := cam.Forward()

	// Cascade boundaries along the view distance, as fractions of the
	// shadow max distance.
	bounds := [5]float32{0, 1, 1, 1, 1}
	switch cascades {
	case 2:
		bounds[1] = cfg.CascadeSplits[0]
	case 4:
		bounds[1] = cfg.CascadeSplits[0]
		bounds[2] = cfg.CascadeSplits[1]
		bounds[3] = cfg.CascadeSplits[2]
	}

	var view, proj [16]float32
	for i := 0; i < cascades; i++ {
		near := bounds[i] * cfg.MaxDistance
		far := bounds[i+1] * cfg.MaxDistance
		mid := (near + far) * 0.5
		extent := cfg.HalfExtent * bounds[i+1]

		center := common.Add3(camPos, common.Scale3(forward, mid))
		eye := common.Sub3(center, common.Scale3(dir, cfg.Far*0.5))
		common.LookAt(view[:], eye, center, up)
		common.Orthographic(proj[:], -extent, extent, -extent, extent, cfg.Near, cfg.Far)
		common.Mul4(p.vps[i][:], proj[:], view[:])

		p.splits[i] = far
	}
	for i := cascades; i < 4; i++ {
		p.splits[i] = cfg.MaxDistance
	}
}

// buildCasterQueue gathers every non-culled shadow-casting renderer's
// elements. Caster selection ignores the camera frustum: geometry behind
// the camera can still throw shadows into view.
func (p *ShadowCasterPass) buildCasterQueue(cam camera.Camera, scene SceneState) {
	p.queue.Clear()
	for _, r := range scene.Renderers() {
		if !r.CastShadow() {
			continue
		}
		r.PrepareRender(cam)
		for _, e := range r.RenderElements() {
			p.queue.PushPrimitive(e)
		}
	}
}

// cascadeViewport returns the atlas region for one cascade. A single
// cascade uses the whole map; two or four cascades use half-resolution
// quadrants.
func (p *ShadowCasterPass) cascadeViewport(index, cascades, resolution int) common.Viewport {
	if cascades == 1 {
		return common.Viewport{Width: float32(resolution), Height: float32(resolution)}
	}
	half := float32(resolution) * 0.5
	return common.Viewport{
		X:      float32(index%2) * half,
		Y:      float32(index/2) * half,
		Width:  half,
		Height: half,
	}
}

// Destroy releases the pass's queue and depth target.
func (p *ShadowCasterPass) Destroy() {
	p.queue.Destroy()
	if p.target != nil {
		p.target.Release()
		p.target = nil
	}
}
