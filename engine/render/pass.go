package render

import (
	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/camera"
	"github.com/strata-engine/strata/engine/material"
)

// PassContext carries the per-frame state a pass renders with: the active
// camera, the backend, and the three populated, sorted queues.
type PassContext struct {
	Camera  camera.Camera
	Backend Backend

	Opaque      *Queue
	AlphaTest   *Queue
	Transparent *Queue

	// Background and the canvas size it fits to, drawn by the default
	// traversal between the alpha-test and transparent queues. Nil for
	// plain clear-color backgrounds.
	Background   *Background
	CanvasWidth  int
	CanvasHeight int
}

// PassRenderFunc is a full replacement for a pass's default queue
// traversal, installed with WithRenderOverride.
type PassRenderFunc func(p Pass, ctx *PassContext)

// PassHookFunc runs before or after a pass's Render step.
type PassHookFunc func(p Pass, ctx *PassContext)

// Pass is one stage of a camera's frame. Passes run in ascending priority
// order; each may redirect output, substitute materials, narrow the layer
// mask, or override the clear behavior for its duration.
type Pass interface {
	// Name returns the pass name used for lookup and logging.
	//
	// Returns:
	//   - string: the pass name
	Name() string

	// Priority returns the pass's scheduling priority. Lower runs earlier.
	//
	// Returns:
	//   - int: the priority
	Priority() int

	// Enabled reports whether the pass's Render step runs. PreRender and
	// PostRender hooks run regardless.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled toggles the pass's Render step.
	//
	// Parameters:
	//   - enabled: the new state
	SetEnabled(enabled bool)

	// RenderTarget returns the pass's output override, or nil to inherit
	// the camera's target.
	//
	// Returns:
	//   - *common.RenderTarget: the override target, or nil
	RenderTarget() *common.RenderTarget

	// ReplacementMaterial returns the material drawn instead of each
	// element's own, or nil to use element materials.
	//
	// Returns:
	//   - material.Material: the replacement, or nil
	ReplacementMaterial() material.Material

	// Mask returns the layer mask combined (AND) with the camera's culling
	// mask during this pass.
	//
	// Returns:
	//   - common.Layer: the pass mask
	Mask() common.Layer

	// ClearFlagsOverride returns the pass's clear-flag override, or nil to
	// inherit the camera's clear flags.
	//
	// Returns:
	//   - *common.ClearFlag: the override, or nil
	ClearFlagsOverride() *common.ClearFlag

	// ClearColorOverride returns the pass's clear-color override, or nil
	// to inherit the camera's clear color.
	//
	// Returns:
	//   - *common.Color: the override, or nil
	ClearColorOverride() *common.Color

	// HasRenderOverride reports whether Render delegates to an installed
	// replacement function instead of the default queue traversal.
	//
	// Returns:
	//   - bool: true if an override is installed
	HasRenderOverride() bool

	// PreRender runs the pass's pre hook. Called whether or not the pass
	// is enabled.
	//
	// Parameters:
	//   - ctx: the frame context
	PreRender(ctx *PassContext)

	// Render executes the pass: either the installed override, or the
	// default traversal drawing the opaque queue, the alpha-test queue,
	// the background (when the camera clears color), and the transparent
	// queue in that order.
	//
	// Parameters:
	//   - ctx: the frame context
	Render(ctx *PassContext)

	// PostRender runs the pass's post hook. Called whether or not the pass
	// is enabled.
	//
	// Parameters:
	//   - ctx: the frame context
	PostRender(ctx *PassContext)
}

// passImpl is the default Pass implementation.
type passImpl struct {
	name     string
	priority int
	enabled  bool

	target      *common.RenderTarget
	replacement material.Material
	mask        common.Layer

	clearFlags *common.ClearFlag
	clearColor *common.Color

	renderOverride PassRenderFunc
	preHook        PassHookFunc
	postHook       PassHookFunc
}

var _ Pass = &passImpl{}

// NewPass creates a render pass with the given name. Unless overridden by
// options the pass is enabled, runs at priority 0, draws every layer to the
// camera's target with element materials, and inherits the camera's clear
// behavior.
//
// Parameters:
//   - name: the pass name (must not be empty)
//   - opts: variadic list of PassBuilderOption functions
//
// Returns:
//   - Pass: the new pass
func NewPass(name string, opts ...PassBuilderOption) Pass {
	if name == "" {
		panic("render: NewPass requires a non-empty name")
	}
	p := &passImpl{
		name:    name,
		enabled: true,
		mask:    common.LayerAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *passImpl) Name() string {
	return p.name
}

func (p *passImpl) Priority() int {
	return p.priority
}

func (p *passImpl) Enabled() bool {
	return p.enabled
}

func (p *passImpl) SetEnabled(enabled bool) {
	p.enabled = enabled
}

func (p *passImpl) RenderTarget() *common.RenderTarget {
	return p.target
}

func (p *passImpl) ReplacementMaterial() material.Material {
	return p.replacement
}

func (p *passImpl) Mask() common.Layer {
	return p.mask
}

func (p *passImpl) ClearFlagsOverride() *common.ClearFlag {
	return p.clearFlags
}

func (p *passImpl) ClearColorOverride() *common.Color {
	return p.clearColor
}

func (p *passImpl) HasRenderOverride() bool {
	return p.renderOverride != nil
}

func (p *passImpl) PreRender(ctx *PassContext) {
	if p.preHook != nil {
		p.preHook(p, ctx)
	}
}

func (p *passImpl) Render(ctx *PassContext) {
	if p.renderOverride != nil {
		p.renderOverride(p, ctx)
		return
	}
	mask := p.mask & ctx.Camera.CullingMask()
	ctx.Opaque.Render(ctx.Camera, p.replacement, mask, ctx.Backend)
	ctx.AlphaTest.Render(ctx.Camera, p.replacement, mask, ctx.Backend)
	// The background comes after the opaque geometry so covered fragments
	// are depth-rejected, and only when the camera clears color at all.
	if ctx.Background != nil && ctx.Camera.ClearFlags()&common.ClearFlagColor != 0 {
		ctx.Background.Render(ctx, ctx.CanvasWidth, ctx.CanvasHeight)
	}
	ctx.Transparent.Render(ctx.Camera, p.replacement, mask, ctx.Backend)
}

func (p *passImpl) PostRender(ctx *PassContext) {
	if p.postHook != nil {
		p.postHook(p, ctx)
	}
}
