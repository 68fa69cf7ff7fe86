package render

import (
	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/camera"
	"github.com/strata-engine/strata/engine/entity"
	"github.com/strata-engine/strata/engine/material"
	"github.com/strata-engine/strata/engine/shader"
)

// MacroReceiveShadow is enabled on renderers that sample the shadow map.
const MacroReceiveShadow = "RECEIVE_SHADOW"

// Shader buffer name a renderer's world matrix is written to.
const BufferWorldMatrix = "u_WorldMat"

// Renderer is a drawable scene object the pipeline culls, sorts, and turns
// into render elements each frame.
type Renderer interface {
	// Entity returns the owning entity.
	//
	// Returns:
	//   - entity.Handle: the entity
	Entity() entity.Handle

	// Layer returns the owning entity's culling layer.
	//
	// Returns:
	//   - common.Layer: the layer
	Layer() common.Layer

	// Bounds returns the renderer's world-space bounds for frustum culling
	// and sort-key computation.
	//
	// Returns:
	//   - common.Bounds: the world bounds
	Bounds() common.Bounds

	// CastShadow reports whether the renderer is drawn into the shadow map.
	//
	// Returns:
	//   - bool: true if a shadow caster
	CastShadow() bool

	// ShaderData returns the renderer's per-object shader uniform block.
	//
	// Returns:
	//   - shader.Data: the data block
	ShaderData() shader.Data

	// Macros returns the renderer's cached effective macro set. Rebuilt by
	// PrepareRender and unioned with the camera's global set during queue
	// building, so later program variant lookups are O(1).
	//
	// Returns:
	//   - *shader.MacroSet: the live macro set
	Macros() *shader.MacroSet

	// Culled returns the frame-cached frustum culling result.
	//
	// Returns:
	//   - bool: true if culled this frame
	Culled() bool

	// SetCulled caches the frame's frustum culling result.
	//
	// Parameters:
	//   - culled: the result to cache
	SetCulled(culled bool)

	// PrepareRender updates the renderer's shader data and rebuilds its
	// resolved macro set for the camera about to draw it.
	//
	// Parameters:
	//   - cam: the camera being rendered
	PrepareRender(cam camera.Camera)

	// RenderElements returns the renderer's draw candidates for this
	// frame. Elements are owned by the renderer and reused across frames.
	//
	// Returns:
	//   - []*Element: the elements
	RenderElements() []*Element
}

// RendererHost receives renderer registrations as entities activate and
// deactivate. Implemented by the scene.
type RendererHost interface {
	// AddRenderer registers a renderer for frame traversal.
	//
	// Parameters:
	//   - r: the renderer
	AddRenderer(r Renderer)

	// RemoveRenderer deregisters a renderer.
	//
	// Parameters:
	//   - r: the renderer
	RemoveRenderer(r Renderer)
}

// meshRenderer is the standard Renderer implementation: one geometry with
// one material, bounds derived from the entity's position.
type meshRenderer struct {
	h *entity.Hierarchy
	e entity.Handle

	geometry Geometry
	mat      material.Material

	localBounds   common.Bounds
	castShadow    bool
	receiveShadow bool

	shaderData shader.Data
	macros     shader.MacroSet
	culled     bool

	elements []*Element
	world    [16]float32
}

var _ Renderer = &meshRenderer{}
var _ entity.Component = &meshRenderer{}

// MeshRendererBuilderOption is a function that configures a mesh renderer
// during construction.
type MeshRendererBuilderOption func(*meshRenderer)

// WithLocalBounds is an option builder that sets the renderer's bounds in
// entity-local space.
//
// Parameters:
//   - b: the local-space bounds
//
// Returns:
//   - MeshRendererBuilderOption: a function that applies the bounds option
func WithLocalBounds(b common.Bounds) MeshRendererBuilderOption {
	return func(m *meshRenderer) {
		m.localBounds = b
	}
}

// WithCastShadow is an option builder that marks the renderer as a shadow
// caster.
//
// Parameters:
//   - cast: true to draw the renderer into the shadow map
//
// Returns:
//   - MeshRendererBuilderOption: a function that applies the option
func WithCastShadow(cast bool) MeshRendererBuilderOption {
	return func(m *meshRenderer) {
		m.castShadow = cast
	}
}

// WithReceiveShadow is an option builder that makes the renderer sample
// the shadow map, enabling the receive-shadow macro on its shader data.
//
// Parameters:
//   - receive: true to receive shadows
//
// Returns:
//   - MeshRendererBuilderOption: a function that applies the option
func WithReceiveShadow(receive bool) MeshRendererBuilderOption {
	return func(m *meshRenderer) {
		m.receiveShadow = receive
	}
}

// NewMeshRenderer creates a renderer drawing one geometry with one
// material, attaches it to the entity as a component, and returns it. The
// renderer registers itself with the owning scene whenever its entity is
// active in the hierarchy.
//
// Parameters:
//   - h: the entity hierarchy
//   - e: the owning entity
//   - geometry: the mesh data to draw (must not be nil)
//   - mat: the material to draw with (must not be nil)
//   - opts: variadic list of MeshRendererBuilderOption functions
//
// Returns:
//   - Renderer: the new renderer
func NewMeshRenderer(h *entity.Hierarchy, e entity.Handle, geometry Geometry, mat material.Material, opts ...MeshRendererBuilderOption) Renderer {
	if geometry == nil {
		panic("render: NewMeshRenderer requires a non-nil Geometry")
	}
	if mat == nil {
		panic("render: NewMeshRenderer requires a non-nil Material")
	}
	m := &meshRenderer{
		h:           h,
		e:           e,
		geometry:    geometry,
		mat:         mat,
		localBounds: common.Bounds{Min: [3]float32{-0.5, -0.5, -0.5}, Max: [3]float32{0.5, 0.5, 0.5}},
		castShadow:  true,
		shaderData:  shader.NewData(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.receiveShadow {
		m.shaderData.EnableMacro(MacroReceiveShadow)
	}
	m.elements = []*Element{{
		Renderer: m,
		Geometry: geometry,
		SubMesh:  0,
		Material: mat,
	}}
	h.AddComponent(e, m)
	return m
}

func (m *meshRenderer) Entity() entity.Handle {
	return m.e
}

func (m *meshRenderer) Layer() common.Layer {
	return m.h.Layer(m.e)
}

func (m *meshRenderer) Bounds() common.Bounds {
	return m.localBounds.Translate(m.h.Position(m.e))
}

func (m *meshRenderer) CastShadow() bool {
	return m.castShadow
}

func (m *meshRenderer) ShaderData() shader.Data {
	return m.shaderData
}

func (m *meshRenderer) Macros() *shader.MacroSet {
	return &m.macros
}

func (m *meshRenderer) Culled() bool {
	return m.culled
}

func (m *meshRenderer) SetCulled(culled bool) {
	m.culled = culled
}

func (m *meshRenderer) PrepareRender(cam camera.Camera) {
	_ = cam
	pos := m.h.Position(m.e)
	common.Translation(m.world[:], pos[0], pos[1], pos[2])
	m.shaderData.SetBuffer(BufferWorldMatrix, m.world[:])

	// Resolve the renderer-local macro set: own shader data plus material.
	// The pipeline unions in the camera's global set afterwards.
	m.macros.SetFrom(m.shaderData.Macros())
	m.macros.UnionWith(m.mat.ShaderData().Macros())

	// Element layers track the entity, which may have changed layer since
	// the last frame.
	layer := m.h.Layer(m.e)
	for _, e := range m.elements {
		e.Layer = layer
	}
}

func (m *meshRenderer) RenderElements() []*Element {
	return m.elements
}

// OnActivate registers the renderer with the owning scene's host list.
func (m *meshRenderer) OnActivate(h *entity.Hierarchy, e entity.Handle) {
	if host, ok := h.Owner(e).(RendererHost); ok {
		host.AddRenderer(m)
	}
}

// OnDeactivate removes the renderer from the owning scene's host list.
func (m *meshRenderer) OnDeactivate(h *entity.Hierarchy, e entity.Handle) {
	if host, ok := h.Owner(e).(RendererHost); ok {
		host.RemoveRenderer(m)
	}
}

// OnDestroy releases the renderer's shader data.
func (m *meshRenderer) OnDestroy(h *entity.Hierarchy, e entity.Handle) {
	m.shaderData.Release()
	m.elements = nil
}
