// package camera implements the view/projection state the render pipeline
// consumes each frame: matrices, the culling mask and frustum, clear
// behavior, the normalized viewport, and the camera-global shader macro set.
package camera

import (
	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/shader"
)

// cameraImpl is the implementation of the Camera interface.
type cameraImpl struct {
	name string

	position [3]float32
	target   [3]float32
	up       [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	orthographic     bool
	orthographicSize float32

	cullingMask common.Layer
	clearFlags  common.ClearFlag
	clearColor  common.Color
	viewport    common.NormalizedViewport
	target2D    *common.RenderTarget

	macros shader.MacroSet

	view     [16]float32
	proj     [16]float32
	viewProj [16]float32
	frustum  common.Frustum
	dirty    bool
}

// Camera defines the view onto a scene that drives one render pipeline
// invocation per frame.
type Camera interface {
	// Name returns the camera's identifier.
	//
	// Returns:
	//   - string: the camera name
	Name() string

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: the position
	Position() [3]float32

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - [3]float32: the look target
	Target() [3]float32

	// SetTarget re-aims the camera.
	//
	// Parameters:
	//   - x, y, z: the new look target
	SetTarget(x, y, z float32)

	// Forward returns the normalized view direction (target minus position).
	//
	// Returns:
	//   - [3]float32: the forward vector
	Forward() [3]float32

	// Fov returns the vertical field of view in radians. Unused for
	// orthographic cameras.
	Fov() float32

	// SetFov sets the vertical field of view in radians.
	SetFov(fov float32)

	// Aspect returns the viewport aspect ratio (width/height).
	Aspect() float32

	// SetAspect sets the viewport aspect ratio.
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	Near() float32

	// SetNear sets the near clipping plane distance.
	SetNear(near float32)

	// Far returns the far clipping plane distance.
	Far() float32

	// SetFar sets the far clipping plane distance.
	SetFar(far float32)

	// Orthographic reports whether the camera uses an orthographic
	// projection. Orthographic cameras sort draws by forward-axis distance
	// rather than squared euclidean distance.
	//
	// Returns:
	//   - bool: true if orthographic
	Orthographic() bool

	// SetOrthographic toggles orthographic projection.
	//
	// Parameters:
	//   - orthographic: true for orthographic, false for perspective
	SetOrthographic(orthographic bool)

	// OrthographicSize returns half the vertical extent of the
	// orthographic view volume in world units.
	OrthographicSize() float32

	// SetOrthographicSize sets the orthographic half-height.
	SetOrthographicSize(size float32)

	// CullingMask returns the layer mask entities must intersect to be
	// drawn by this camera.
	//
	// Returns:
	//   - common.Layer: the mask
	CullingMask() common.Layer

	// SetCullingMask sets the camera's layer mask.
	//
	// Parameters:
	//   - mask: the new mask
	SetCullingMask(mask common.Layer)

	// ClearFlags returns the camera's default clear behavior, applied by
	// passes without a clear override.
	ClearFlags() common.ClearFlag

	// SetClearFlags sets the camera's default clear behavior.
	SetClearFlags(flags common.ClearFlag)

	// ClearColor returns the background solid color used when clearing.
	ClearColor() common.Color

	// SetClearColor sets the background solid color.
	SetClearColor(c common.Color)

	// Viewport returns the camera's normalized viewport.
	Viewport() common.NormalizedViewport

	// SetViewport sets the camera's normalized viewport.
	SetViewport(v common.NormalizedViewport)

	// RenderTarget returns the camera's render target override, or nil to
	// draw to the backend's default surface.
	RenderTarget() *common.RenderTarget

	// SetRenderTarget sets the camera's render target override.
	SetRenderTarget(t *common.RenderTarget)

	// Macros returns the camera-global shader macro set, unioned into
	// every visible renderer's macro set during queue building.
	//
	// Returns:
	//   - *shader.MacroSet: the live macro set
	Macros() *shader.MacroSet

	// ViewMatrix returns the world-to-view matrix. Call Update first.
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the view-to-clip matrix. Call Update first.
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the combined world-to-clip matrix.
	// Call Update first.
	ViewProjectionMatrix() [16]float32

	// Frustum returns the view frustum extracted from the current
	// view-projection matrix. Call Update first.
	//
	// Returns:
	//   - common.Frustum: the frustum
	Frustum() common.Frustum

	// Update recomputes the matrices and frustum if any input changed
	// since the last call. The pipeline calls this once per frame before
	// culling.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera at the origin looking down -Z,
// clearing color and depth to solid black, drawing every layer, with any
// provided options applied.
//
// Parameters:
//   - name: the camera's identifier
//   - options: functional options to further configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(name string, options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		name:             name,
		position:         [3]float32{0, 0, 0},
		target:           [3]float32{0, 0, -1},
		up:               [3]float32{0, 1, 0},
		fov:              1.0471976, // 60 degrees
		aspect:           16.0 / 9.0,
		near:             0.1,
		far:              1000.0,
		orthographicSize: 10.0,
		cullingMask:      common.LayerAll,
		clearFlags:       common.ClearFlagColor | common.ClearFlagDepth,
		clearColor:       common.ColorSolidBlack,
		viewport:         common.NormalizedViewport{X: 0, Y: 0, Width: 1, Height: 1},
		dirty:            true,
	}
	for _, option := range options {
		option(c)
	}
	c.Update()
	return c
}

func (c *cameraImpl) Name() string {
	return c.name
}

func (c *cameraImpl) Position() [3]float32 {
	return c.position
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.position = [3]float32{x, y, z}
	c.dirty = true
}

func (c *cameraImpl) Target() [3]float32 {
	return c.target
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.target = [3]float32{x, y, z}
	c.dirty = true
}

func (c *cameraImpl) Forward() [3]float32 {
	return common.Normalize3(common.Sub3(c.target, c.position))
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.fov = fov
	c.dirty = true
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.aspect = aspect
	c.dirty = true
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) SetNear(near float32) {
	c.near = near
	c.dirty = true
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) SetFar(far float32) {
	c.far = far
	c.dirty = true
}

func (c *cameraImpl) Orthographic() bool {
	return c.orthographic
}

func (c *cameraImpl) SetOrthographic(orthographic bool) {
	c.orthographic = orthographic
	c.dirty = true
}

func (c *cameraImpl) OrthographicSize() float32 {
	return c.orthographicSize
}

func (c *cameraImpl) SetOrthographicSize(size float32) {
	c.orthographicSize = size
	c.dirty = true
}

func (c *cameraImpl) CullingMask() common.Layer {
	return c.cullingMask
}

func (c *cameraImpl) SetCullingMask(mask common.Layer) {
	c.cullingMask = mask
}

func (c *cameraImpl) ClearFlags() common.ClearFlag {
	return c.clearFlags
}

func (c *cameraImpl) SetClearFlags(flags common.ClearFlag) {
	c.clearFlags = flags
}

func (c *cameraImpl) ClearColor() common.Color {
	return c.clearColor
}

func (c *cameraImpl) SetClearColor(col common.Color) {
	c.clearColor = col
}

func (c *cameraImpl) Viewport() common.NormalizedViewport {
	return c.viewport
}

func (c *cameraImpl) SetViewport(v common.NormalizedViewport) {
	c.viewport = v
}

func (c *cameraImpl) RenderTarget() *common.RenderTarget {
	return c.target2D
}

func (c *cameraImpl) SetRenderTarget(t *common.RenderTarget) {
	c.target2D = t
}

func (c *cameraImpl) Macros() *shader.MacroSet {
	return &c.macros
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	return c.view
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	return c.proj
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	return c.viewProj
}

func (c *cameraImpl) Frustum() common.Frustum {
	return c.frustum
}

func (c *cameraImpl) Update() {
	if !c.dirty {
		return
	}
	c.dirty = false

	common.LookAt(c.view[:], c.position, c.target, c.up)
	if c.orthographic {
		h := c.orthographicSize
		w := h * c.aspect
		common.Orthographic(c.proj[:], -w, w, -h, h, c.near, c.far)
	} else {
		common.Perspective(c.proj[:], c.fov, c.aspect, c.near, c.far)
	}
	common.Mul4(c.viewProj[:], c.proj[:], c.view[:])
	c.frustum = common.ExtractFrustumFromMatrix(c.viewProj[:])
}
