package camera

import (
	"github.com/strata-engine/strata/common"
)

// CameraBuilderOption is a function that configures a Camera instance during construction.
type CameraBuilderOption func(*cameraImpl)

// WithPosition is an option builder that sets the camera's world position.
//
// Parameters:
//   - x, y, z: the position components
//
// Returns:
//   - CameraBuilderOption: a function that applies the position option to a cameraImpl
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = [3]float32{x, y, z}
	}
}

// WithTarget is an option builder that sets the point the camera looks at.
//
// Parameters:
//   - x, y, z: the target components
//
// Returns:
//   - CameraBuilderOption: a function that applies the target option to a cameraImpl
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = [3]float32{x, y, z}
	}
}

// WithPerspective is an option builder that configures a perspective projection.
//
// Parameters:
//   - fov: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance
//   - far: far clipping plane distance
//
// Returns:
//   - CameraBuilderOption: a function that applies the projection option to a cameraImpl
func WithPerspective(fov, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orthographic = false
		c.fov = fov
		c.aspect = aspect
		c.near = near
		c.far = far
	}
}

// WithOrthographic is an option builder that configures an orthographic projection.
//
// Parameters:
//   - size: half the vertical extent of the view volume in world units
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance
//   - far: far clipping plane distance
//
// Returns:
//   - CameraBuilderOption: a function that applies the projection option to a cameraImpl
func WithOrthographic(size, aspect, near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orthographic = true
		c.orthographicSize = size
		c.aspect = aspect
		c.near = near
		c.far = far
	}
}

// WithCullingMask is an option builder that sets the camera's layer mask.
//
// Parameters:
//   - mask: the layer mask
//
// Returns:
//   - CameraBuilderOption: a function that applies the mask option to a cameraImpl
func WithCullingMask(mask common.Layer) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.cullingMask = mask
	}
}

// WithClearFlags is an option builder that sets the camera's default clear behavior.
//
// Parameters:
//   - flags: the clear flags
//
// Returns:
//   - CameraBuilderOption: a function that applies the clear option to a cameraImpl
func WithClearFlags(flags common.ClearFlag) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.clearFlags = flags
	}
}

// WithClearColor is an option builder that sets the background solid color.
//
// Parameters:
//   - col: the clear color
//
// Returns:
//   - CameraBuilderOption: a function that applies the color option to a cameraImpl
func WithClearColor(col common.Color) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.clearColor = col
	}
}

// WithViewport is an option builder that sets the camera's normalized viewport.
//
// Parameters:
//   - v: the normalized viewport
//
// Returns:
//   - CameraBuilderOption: a function that applies the viewport option to a cameraImpl
func WithViewport(v common.NormalizedViewport) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.viewport = v
	}
}

// WithRenderTarget is an option builder that sets the camera's render target override.
//
// Parameters:
//   - t: the render target (nil for the default surface)
//
// Returns:
//   - CameraBuilderOption: a function that applies the target option to a cameraImpl
func WithRenderTarget(t *common.RenderTarget) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target2D = t
	}
}
