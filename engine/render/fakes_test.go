package render

import (
	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/camera"
	"github.com/strata-engine/strata/engine/entity"
	"github.com/strata-engine/strata/engine/light"
	"github.com/strata-engine/strata/engine/material"
	"github.com/strata-engine/strata/engine/shader"
)

// backendCall is one recorded backend invocation.
type backendCall struct {
	op       string
	target   *common.RenderTarget
	viewport common.Viewport
	flags    common.ClearFlag
	color    common.Color
	geometry Geometry
	program  shader.Program
}

// recordingBackend captures backend calls in submission order.
type recordingBackend struct {
	calls []backendCall
}

var _ Backend = &recordingBackend{}

func (b *recordingBackend) BeginFrame() error { return nil }
func (b *recordingBackend) EndFrame()         {}

func (b *recordingBackend) ActivateRenderTarget(target *common.RenderTarget, viewport common.Viewport, mipLevel int) {
	b.calls = append(b.calls, backendCall{op: "activate", target: target, viewport: viewport})
}

func (b *recordingBackend) ClearRenderTarget(flags common.ClearFlag, color common.Color) {
	b.calls = append(b.calls, backendCall{op: "clear", flags: flags, color: color})
}

func (b *recordingBackend) DrawPrimitive(geometry Geometry, subMesh int, program shader.Program) {
	b.calls = append(b.calls, backendCall{op: "draw", geometry: geometry, program: program})
}

func (b *recordingBackend) ResolveRenderTarget(target *common.RenderTarget) {
	b.calls = append(b.calls, backendCall{op: "resolve", target: target})
}

func (b *recordingBackend) GenerateMipmaps(target *common.RenderTarget) {
	b.calls = append(b.calls, backendCall{op: "mipmaps", target: target})
}

func (b *recordingBackend) Resize(width, height int) {}
func (b *recordingBackend) Destroy()                 {}

// drawnNames returns the geometry names of every draw call in order.
func (b *recordingBackend) drawnNames() []string {
	var names []string
	for _, c := range b.calls {
		if c.op == "draw" {
			names = append(names, c.geometry.Name())
		}
	}
	return names
}

// callsOf returns the recorded calls matching one op.
func (b *recordingBackend) callsOf(op string) []backendCall {
	var out []backendCall
	for _, c := range b.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

type fakeGeometry struct{ name string }

func (g *fakeGeometry) Name() string { return g.name }

type fakeProgram struct{ name string }

func (p *fakeProgram) Name() string { return p.name }

// newTestMaterial creates a material with a registered default program so
// queue traversal produces draws.
func newTestMaterial(name string, queue material.RenderQueue) material.Material {
	m := material.NewMaterial(name)
	m.SetRenderQueue(queue)
	m.RegisterProgram(nil, &fakeProgram{name: name + "-prog"})
	return m
}

// stubRenderer is a minimal Renderer with directly settable state.
type stubRenderer struct {
	layer      common.Layer
	bounds     common.Bounds
	castShadow bool
	data       shader.Data
	macros     shader.MacroSet
	culled     bool
	prepared   int
	elements   []*Element
}

var _ Renderer = &stubRenderer{}

func newStubRenderer(geo Geometry, mat material.Material, bounds common.Bounds) *stubRenderer {
	s := &stubRenderer{
		layer:      common.LayerDefault,
		bounds:     bounds,
		castShadow: true,
		data:       shader.NewData(),
	}
	s.elements = []*Element{{
		Renderer: s,
		Geometry: geo,
		Material: mat,
		Layer:    s.layer,
	}}
	return s
}

func (s *stubRenderer) Entity() entity.Handle     { return entity.Nil }
func (s *stubRenderer) Layer() common.Layer       { return s.layer }
func (s *stubRenderer) Bounds() common.Bounds     { return s.bounds }
func (s *stubRenderer) CastShadow() bool          { return s.castShadow }
func (s *stubRenderer) ShaderData() shader.Data   { return s.data }
func (s *stubRenderer) Macros() *shader.MacroSet  { return &s.macros }
func (s *stubRenderer) Culled() bool              { return s.culled }
func (s *stubRenderer) SetCulled(culled bool)     { s.culled = culled }
func (s *stubRenderer) RenderElements() []*Element { return s.elements }

func (s *stubRenderer) PrepareRender(cam camera.Camera) {
	s.prepared++
}

// fakeScene is a SceneState over plain fields.
type fakeScene struct {
	renderers  []Renderer
	registry   *light.Registry
	data       shader.Data
	ambient    *light.Ambient
	shadowCfg  light.ShadowConfig
	background *Background
}

var _ SceneState = &fakeScene{}

func newFakeScene(renderers ...Renderer) *fakeScene {
	return &fakeScene{
		renderers: renderers,
		registry:  light.NewRegistry(),
		data:      shader.NewData(),
		ambient:   light.NewAmbient(common.Color{R: 1, G: 1, B: 1, A: 1}, 0.2),
		shadowCfg: light.DefaultShadowConfig(),
	}
}

func (s *fakeScene) Renderers() []Renderer            { return s.renderers }
func (s *fakeScene) LightRegistry() *light.Registry   { return s.registry }
func (s *fakeScene) ShaderData() shader.Data          { return s.data }
func (s *fakeScene) AmbientLight() *light.Ambient     { return s.ambient }
func (s *fakeScene) ShadowConfig() light.ShadowConfig { return s.shadowCfg }
func (s *fakeScene) SunLight() light.Light            { return s.registry.SunLight() }
func (s *fakeScene) Background() *Background          { return s.background }
