package render

import (
	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/shader"
)

// Backend is the narrow interface to the GPU command submission layer. The
// pipeline drives it strictly sequentially within a frame; synchronization,
// if any, is the backend's own concern. A nil render target always means
// the backend's default surface.
type Backend interface {
	// BeginFrame opens command recording for one frame.
	//
	// Returns:
	//   - error: an error if the frame could not be started
	BeginFrame() error

	// EndFrame finishes and submits the frame's recorded commands.
	EndFrame()

	// ActivateRenderTarget binds a render target and viewport for
	// subsequent clears and draws.
	//
	// Parameters:
	//   - target: the target to bind, or nil for the default surface
	//   - viewport: the pixel-space drawable region
	//   - mipLevel: the target mip level to render into
	ActivateRenderTarget(target *common.RenderTarget, viewport common.Viewport, mipLevel int)

	// ClearRenderTarget clears the currently bound target.
	//
	// Parameters:
	//   - flags: which attachments to clear
	//   - color: the color attachment clear value
	ClearRenderTarget(flags common.ClearFlag, color common.Color)

	// DrawPrimitive submits one draw of a geometry's sub-mesh with the
	// given program against the currently bound target.
	//
	// Parameters:
	//   - geometry: the mesh data to draw
	//   - subMesh: the sub-mesh index
	//   - program: the compiled program variant to bind
	DrawPrimitive(geometry Geometry, subMesh int, program shader.Program)

	// ResolveRenderTarget resolves a multisampled target into its resolve
	// texture. No-op for single-sampled targets.
	//
	// Parameters:
	//   - target: the target to resolve
	ResolveRenderTarget(target *common.RenderTarget)

	// GenerateMipmaps regenerates the mip chain of a target that requests
	// it, after drawing and resolving.
	//
	// Parameters:
	//   - target: the target to generate mips for
	GenerateMipmaps(target *common.RenderTarget)

	// Resize reconfigures the default surface for a new canvas size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Destroy releases backend resources. The backend is unusable
	// afterwards.
	Destroy()
}

// DepthTargetCreator is implemented by backends that can allocate
// sampleable depth-only render targets, typically to feed a shadow caster
// pass its shadow map.
type DepthTargetCreator interface {
	// CreateDepthRenderTarget creates a depth-only render target.
	//
	// Parameters:
	//   - width: target width in texels
	//   - height: target height in texels
	//
	// Returns:
	//   - *common.RenderTarget: the depth target, or nil on failure
	CreateDepthRenderTarget(width, height int) *common.RenderTarget
}
