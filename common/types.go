// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// shared data between packages without pulling in package-specific dependencies.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Color is a normalized RGBA color in linear space.
type Color struct {
	R, G, B, A float32
}

// ColorSolidBlack is the default background clear color.
var ColorSolidBlack = Color{0, 0, 0, 1}

// Brightness returns the perceived luminance of the color using the
// Rec. 601 luma coefficients. Used to rank light sources.
//
// Returns:
//   - float32: the luma value
func (c Color) Brightness() float32 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// Viewport is a rectangle in pixel coordinates describing the drawable
// region of a render target.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// NormalizedViewport is a viewport expressed as fractions of the target
// size, each component in [0, 1]. Cameras store normalized viewports so
// they remain valid across target resizes.
type NormalizedViewport struct {
	X, Y          float32
	Width, Height float32
}

// ToPixels converts the normalized viewport to pixel coordinates for a
// target of the given size.
//
// Parameters:
//   - width: target width in pixels
//   - height: target height in pixels
//
// Returns:
//   - Viewport: the pixel-space viewport
func (v NormalizedViewport) ToPixels(width, height int) Viewport {
	return Viewport{
		X:      v.X * float32(width),
		Y:      v.Y * float32(height),
		Width:  v.Width * float32(width),
		Height: v.Height * float32(height),
	}
}

// ClearFlag is a bitmask selecting which aspects of a render target are
// cleared before drawing.
type ClearFlag uint8

const (
	// ClearFlagNone performs no clearing.
	ClearFlagNone ClearFlag = 0

	// ClearFlagColor clears the color attachment.
	ClearFlagColor ClearFlag = 1 << iota

	// ClearFlagDepth clears the depth attachment.
	ClearFlagDepth

	// ClearFlagStencil clears the stencil attachment.
	ClearFlagStencil
)

// Layer is a 32-bit culling layer bitmask. Each entity occupies exactly one
// layer bit; cameras and render passes match entities against a mask of
// layer bits.
type Layer uint32

const (
	// LayerDefault is the layer entities are created on.
	LayerDefault Layer = 1 << 0

	// LayerAll matches every layer.
	LayerAll Layer = ^Layer(0)
)

// Bounds is an axis-aligned bounding box in world space.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the midpoint of the bounds.
//
// Returns:
//   - [3]float32: the center point
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) * 0.5,
		(b.Min[1] + b.Max[1]) * 0.5,
		(b.Min[2] + b.Max[2]) * 0.5,
	}
}

// Translate returns the bounds offset by the given vector.
//
// Parameters:
//   - offset: the world-space offset to apply
//
// Returns:
//   - Bounds: the translated bounds
func (b Bounds) Translate(offset [3]float32) Bounds {
	return Bounds{
		Min: Add3(b.Min, offset),
		Max: Add3(b.Max, offset),
	}
}

// RenderTarget is an offscreen color (and optional depth) surface that a
// render pass or camera can draw into. A nil *RenderTarget means the
// backend's default surface (the swapchain).
type RenderTarget struct {
	Width  int
	Height int

	// SampleCount > 1 marks the target as multisampled; the pipeline
	// resolves it into ResolveView after drawing.
	SampleCount int

	// GenerateMipmaps requests a mipmap regeneration after the target has
	// been drawn and (if multisampled) resolved.
	GenerateMipmaps bool

	Texture *wgpu.Texture
	View    *wgpu.TextureView

	ResolveTexture *wgpu.Texture
	ResolveView    *wgpu.TextureView

	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView
}

// MultiSampled reports whether the target needs a resolve step.
//
// Returns:
//   - bool: true if SampleCount is greater than one
func (t *RenderTarget) MultiSampled() bool {
	return t != nil && t.SampleCount > 1
}

// Release frees all GPU resources held by the target. Safe to call on a
// partially initialized target.
func (t *RenderTarget) Release() {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
	if t.ResolveView != nil {
		t.ResolveView.Release()
		t.ResolveView = nil
	}
	if t.ResolveTexture != nil {
		t.ResolveTexture.Release()
		t.ResolveTexture = nil
	}
	if t.DepthView != nil {
		t.DepthView.Release()
		t.DepthView = nil
	}
	if t.DepthTexture != nil {
		t.DepthTexture.Release()
		t.DepthTexture = nil
	}
}
