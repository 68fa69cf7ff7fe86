package render

import (
	"log"

	"github.com/strata-engine/strata/engine/material"
)

// BackgroundMode selects how a camera's background is produced.
type BackgroundMode int

const (
	// BackgroundModeSolidColor fills the background with the camera's
	// clear color. The default.
	BackgroundModeSolidColor BackgroundMode = iota
	// BackgroundModeTexture draws a full-screen textured quad fitted to
	// the canvas.
	BackgroundModeTexture
	// BackgroundModeSky draws a sky geometry (typically a cube or sphere)
	// with a dedicated sky material.
	BackgroundModeSky
)

// BackgroundFillMode selects how a background texture is fitted when the
// canvas aspect ratio differs from the texture's.
type BackgroundFillMode int

const (
	// BackgroundFillStretch stretches the texture to cover the canvas.
	BackgroundFillStretch BackgroundFillMode = iota
	// BackgroundFillAspectFitWidth scales to match the canvas width,
	// letterboxing vertically.
	BackgroundFillAspectFitWidth
	// BackgroundFillAspectFitHeight scales to match the canvas height,
	// pillarboxing horizontally.
	BackgroundFillAspectFitHeight
)

// Shader buffer name the background quad's fit scale is written to.
const BufferBackgroundFitScale = "u_BackgroundScale"

// Background describes what a camera draws behind the scene. Solid color
// mode is handled entirely by the clear; texture and sky modes draw their
// geometry after the opaque queue so covered fragments are depth-rejected.
type Background struct {
	Mode BackgroundMode

	// Texture mode state.
	TextureMaterial material.Material
	TextureFillMode BackgroundFillMode
	TextureWidth    int
	TextureHeight   int

	// Sky mode state.
	SkyMaterial material.Material
	SkyGeometry Geometry

	// Quad drawn in texture mode.
	quad Geometry

	lastCanvasWidth  int
	lastCanvasHeight int
	fitScale         [2]float32
}

// NewBackground creates a solid-color background.
//
// Parameters:
//   - quad: the full-screen quad geometry used by texture mode, or nil if
//     texture mode is never used
//
// Returns:
//   - *Background: the new background
func NewBackground(quad Geometry) *Background {
	return &Background{
		quad:     quad,
		fitScale: [2]float32{1, 1},
	}
}

// refit recomputes the texture-mode quad scale when the canvas size has
// changed since the last frame.
func (b *Background) refit(canvasWidth, canvasHeight int) {
	if canvasWidth == b.lastCanvasWidth && canvasHeight == b.lastCanvasHeight {
		return
	}
	b.lastCanvasWidth = canvasWidth
	b.lastCanvasHeight = canvasHeight

	b.fitScale = [2]float32{1, 1}
	if b.TextureWidth <= 0 || b.TextureHeight <= 0 || canvasWidth <= 0 || canvasHeight <= 0 {
		return
	}
	texAspect := float32(b.TextureWidth) / float32(b.TextureHeight)
	canvasAspect := float32(canvasWidth) / float32(canvasHeight)
	switch b.TextureFillMode {
	case BackgroundFillAspectFitWidth:
		b.fitScale[1] = canvasAspect / texAspect
	case BackgroundFillAspectFitHeight:
		b.fitScale[0] = texAspect / canvasAspect
	}
}

// Render draws the background for one camera. Solid color mode is a no-op
// here since the clear already produced it.
//
// Parameters:
//   - ctx: the frame context
//   - canvasWidth: the canvas width in pixels
//   - canvasHeight: the canvas height in pixels
func (b *Background) Render(ctx *PassContext, canvasWidth, canvasHeight int) {
	switch b.Mode {
	case BackgroundModeSolidColor:
		return
	case BackgroundModeTexture:
		if b.TextureMaterial == nil || b.quad == nil {
			log.Printf("[Render] background texture mode with no material or quad; skipping")
			return
		}
		b.refit(canvasWidth, canvasHeight)
		b.TextureMaterial.ShaderData().SetVector3(BufferBackgroundFitScale, [3]float32{b.fitScale[0], b.fitScale[1], 1})
		prog := b.TextureMaterial.Program(nil)
		if prog == nil {
			return
		}
		ctx.Backend.DrawPrimitive(b.quad, 0, prog)
	case BackgroundModeSky:
		if b.SkyMaterial == nil || b.SkyGeometry == nil {
			log.Printf("[Render] background sky mode with no material or geometry; skipping")
			return
		}
		prog := b.SkyMaterial.Program(b.SkyMaterial.ShaderData().Macros())
		if prog == nil {
			return
		}
		ctx.Backend.DrawPrimitive(b.SkyGeometry, 0, prog)
	}
}
