package scene

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/camera"
	"github.com/strata-engine/strata/engine/entity"
	"github.com/strata-engine/strata/engine/light"
	"github.com/strata-engine/strata/engine/render"
	"github.com/strata-engine/strata/engine/shader"
)

// Scene is a self-contained world: a root entity list over one entity
// hierarchy, the cameras that view it, its lights, and the render state
// shared by every draw in it. Scenes can be activated and deactivated as a
// unit; entity activation composes the scene's engine-level flag with each
// entity's own active flag down the hierarchy.
//
// Callers serialize mutations relative to rendering; the scene guards its
// collections for concurrent readers but a frame in flight owns the scene.
type Scene interface {
	// Name returns the scene's identifier.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// SetName sets the scene's identifier.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// ActiveInEngine reports whether the engine has activated this scene.
	//
	// Returns:
	//   - bool: true when active
	ActiveInEngine() bool

	// Hierarchy returns the entity hierarchy backing the scene. Entities
	// intended for this scene are created through it.
	//
	// Returns:
	//   - *entity.Hierarchy: the hierarchy
	Hierarchy() *entity.Hierarchy

	// CreateRootEntity creates a new entity and appends it to the root
	// list in one step.
	//
	// Parameters:
	//   - name: the new entity's name
	//
	// Returns:
	//   - entity.Handle: the new root entity
	CreateRootEntity(name string) entity.Handle

	// AddRootEntity inserts an entity into the root list at the given
	// index. An entity rooted in another scene over the same hierarchy is
	// moved; a child entity is detached from its parent first. Sibling
	// indices of following roots shift up by one.
	//
	// Parameters:
	//   - index: insertion position in [0, RootEntityCount()]
	//   - e: the entity to root
	//
	// Returns:
	//   - error: an error when the index is out of range or the entity is invalid
	AddRootEntity(index int, e entity.Handle) error

	// RemoveRootEntity removes a root entity from the scene, deactivating
	// it first when it is active. Entities that are not roots of this
	// scene are ignored.
	//
	// Parameters:
	//   - e: the root entity to remove
	RemoveRootEntity(e entity.Handle)

	// RootEntities returns the root entities in sibling order. The
	// returned slice is the scene's backing storage; callers must not
	// mutate it.
	//
	// Returns:
	//   - []entity.Handle: the roots
	RootEntities() []entity.Handle

	// RootEntityCount returns the number of root entities.
	//
	// Returns:
	//   - int: the root count
	RootEntityCount() int

	// FindEntityByName searches the scene for an entity with the given
	// name, roots before descendants, later-added roots first.
	//
	// Parameters:
	//   - name: the name to match
	//
	// Returns:
	//   - entity.Handle: the first match, or entity.Nil
	FindEntityByName(name string) entity.Handle

	// FindEntityByPath resolves a slash-separated name path from the root
	// list, e.g. "Player/Arm/Hand". Empty segments are skipped.
	//
	// Parameters:
	//   - path: the path to resolve
	//
	// Returns:
	//   - entity.Handle: the entity at the path, or entity.Nil
	FindEntityByPath(path string) entity.Handle

	// AddCamera registers a camera. Cameras render in registration order.
	// Adding a camera twice logs a warning and keeps a single entry.
	//
	// Parameters:
	//   - cam: the camera to add
	AddCamera(cam camera.Camera)

	// RemoveCamera deregisters a camera. Unknown cameras are ignored.
	//
	// Parameters:
	//   - cam: the camera to remove
	RemoveCamera(cam camera.Camera)

	// Cameras returns the registered cameras in render order. The returned
	// slice is the scene's backing storage; callers must not mutate it.
	//
	// Returns:
	//   - []camera.Camera: the cameras
	Cameras() []camera.Camera

	// AttachLight adds a light to the scene's registry. Lights already
	// attached are ignored.
	//
	// Parameters:
	//   - l: the light to attach
	AttachLight(l light.Light)

	// DetachLight removes a light from the scene's registry. Lights not
	// attached are ignored.
	//
	// Parameters:
	//   - l: the light to detach
	DetachLight(l light.Light)

	// LightRegistry returns the scene's light registry.
	//
	// Returns:
	//   - *light.Registry: the registry
	LightRegistry() *light.Registry

	// SunLight returns the dominant directional light, or nil when the
	// scene has none. Shadow-casting lights always win over non-casting
	// ones; within a tier the brightest wins and ties keep the earliest
	// attached.
	//
	// Returns:
	//   - light.Light: the sun light, or nil
	SunLight() light.Light

	// AmbientLight returns the scene's ambient light term.
	//
	// Returns:
	//   - *light.Ambient: the ambient light
	AmbientLight() *light.Ambient

	// SetAmbientLight replaces the ambient light. A nil ambient logs a
	// warning and leaves the current one in place.
	//
	// Parameters:
	//   - ambient: the new ambient light
	SetAmbientLight(ambient *light.Ambient)

	// ShadowConfig returns the scene's directional shadow configuration.
	//
	// Returns:
	//   - light.ShadowConfig: the configuration
	ShadowConfig() light.ShadowConfig

	// SetShadowConfig replaces the shadow configuration.
	//
	// Parameters:
	//   - cfg: the new configuration
	SetShadowConfig(cfg light.ShadowConfig)

	// Background returns the scene's background, or nil for plain
	// clear-color backgrounds.
	//
	// Returns:
	//   - *render.Background: the background, or nil
	Background() *render.Background

	// SetBackground replaces the scene's background. Nil restores the
	// plain clear-color background.
	//
	// Parameters:
	//   - bg: the new background, or nil
	SetBackground(bg *render.Background)

	// ShaderData returns the scene-level shader data block.
	//
	// Returns:
	//   - shader.Data: the data block
	ShaderData() shader.Data

	// Renderers returns the currently active renderers.
	//
	// Returns:
	//   - []render.Renderer: the active renderers
	Renderers() []render.Renderer

	// Pipeline returns the scene's render pipeline, for pass registration.
	//
	// Returns:
	//   - render.Pipeline: the pipeline
	Pipeline() render.Pipeline

	// ProcessActive applies an engine-level activation change: the scene's
	// own-active roots are activated or deactivated in reverse sibling
	// order, firing component callbacks down the hierarchy.
	//
	// Parameters:
	//   - active: the new engine-level state
	ProcessActive(active bool)

	// RenderFrame renders every camera in order against the backend.
	// Scene-level shader state (ambient term, packed lights) is refreshed
	// once before the first camera. The backend frame must already be
	// open.
	//
	// Parameters:
	//   - backend: the draw submission target
	//   - canvasWidth: the canvas width in pixels
	//   - canvasHeight: the canvas height in pixels
	RenderFrame(backend render.Backend, canvasWidth, canvasHeight int)

	// Destroy deactivates the scene, destroys every root entity, and
	// releases the scene's shader data and pipeline. The scene is
	// unusable afterwards.
	Destroy()
}

// sceneImpl is the implementation of the Scene interface. It also serves
// as the entity hierarchy's Owner, the renderer registration host, and the
// pipeline's scene read surface.
type sceneImpl struct {
	mu *sync.RWMutex

	name   string
	active bool

	hierarchy *entity.Hierarchy
	roots     []entity.Handle

	cameras   []camera.Camera
	renderers []render.Renderer

	registry     *light.Registry
	ambient      *light.Ambient
	shadowConfig light.ShadowConfig

	background *render.Background
	shaderData shader.Data
	pipeline   render.Pipeline

	destroyed bool
}

var _ Scene = &sceneImpl{}
var _ entity.Owner = &sceneImpl{}
var _ render.RendererHost = &sceneImpl{}
var _ render.SceneState = &sceneImpl{}

// NewScene creates an inactive scene with its own entity hierarchy, an
// empty light registry, a default shadow configuration, and a pipeline
// with the default pass.
//
// Parameters:
//   - name: the scene name
//   - opts: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, opts ...SceneBuilderOption) Scene {
	s := &sceneImpl{
		mu:           &sync.RWMutex{},
		name:         name,
		hierarchy:    entity.NewHierarchy(),
		registry:     light.NewRegistry(),
		ambient:      light.NewAmbient(common.Color{R: 1, G: 1, B: 1, A: 1}, 0.2),
		shadowConfig: light.DefaultShadowConfig(),
		shaderData:   shader.NewData(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pipeline == nil {
		s.pipeline = render.NewPipeline()
	}
	return s
}

func (s *sceneImpl) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *sceneImpl) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *sceneImpl) ActiveInEngine() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *sceneImpl) Hierarchy() *entity.Hierarchy {
	return s.hierarchy
}

func (s *sceneImpl) CreateRootEntity(name string) entity.Handle {
	e := s.hierarchy.New(name)
	if err := s.AddRootEntity(s.RootEntityCount(), e); err != nil {
		// Only reachable through concurrent root mutation; the entity is
		// still valid, just unrooted.
		log.Printf("[Scene] CreateRootEntity %q: %v", name, err)
	}
	return e
}

func (s *sceneImpl) AddRootEntity(index int, e entity.Handle) error {
	h := s.hierarchy
	if !h.Valid(e) {
		return fmt.Errorf("scene: invalid entity handle %d", e)
	}

	s.mu.Lock()
	if index < 0 || index > len(s.roots) {
		n := len(s.roots)
		s.mu.Unlock()
		return fmt.Errorf("scene: root index %d out of range [0, %d]", index, n)
	}
	s.mu.Unlock()

	// Moving from another scene over the same hierarchy: remove there
	// first so ownership transfers cleanly.
	if owner, ok := h.Owner(e).(*sceneImpl); ok && owner != s && h.IsRoot(e) {
		owner.RemoveRootEntity(e)
	}

	// A child entity is promoted to a root.
	if h.Parent(e) != entity.Nil {
		h.Detach(e)
	}

	s.mu.Lock()
	if index > len(s.roots) {
		index = len(s.roots)
	}
	s.roots = append(s.roots, entity.Nil)
	copy(s.roots[index+1:], s.roots[index:])
	s.roots[index] = e
	s.renumberRootsLocked(index)
	active := s.active
	s.mu.Unlock()

	h.SetRootFlag(e, true)
	h.SetSiblingIndex(e, index)
	h.SetOwnerRecursive(e, s)

	if active && h.Active(e) {
		h.ProcessActive(e, true)
	}
	return nil
}

func (s *sceneImpl) RemoveRootEntity(e entity.Handle) {
	h := s.hierarchy
	if !h.Valid(e) || !h.IsRoot(e) {
		return
	}
	if owner, ok := h.Owner(e).(*sceneImpl); !ok || owner != s {
		return
	}

	if h.ActiveInHierarchy(e) {
		h.ProcessActive(e, false)
	}

	s.mu.Lock()
	idx := h.SiblingIndex(e)
	if idx >= 0 && idx < len(s.roots) && s.roots[idx] == e {
		s.roots = append(s.roots[:idx], s.roots[idx+1:]...)
		s.renumberRootsLocked(idx)
	}
	s.mu.Unlock()

	h.SetRootFlag(e, false)
	h.SetOwnerRecursive(e, nil)
}

// renumberRootsLocked refreshes sibling indices from position from onward.
func (s *sceneImpl) renumberRootsLocked(from int) {
	for i := from; i < len(s.roots); i++ {
		s.hierarchy.SetSiblingIndex(s.roots[i], i)
	}
}

func (s *sceneImpl) RootEntities() []entity.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roots
}

func (s *sceneImpl) RootEntityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roots)
}

func (s *sceneImpl) FindEntityByName(name string) entity.Handle {
	s.mu.RLock()
	roots := make([]entity.Handle, len(s.roots))
	copy(roots, s.roots)
	s.mu.RUnlock()

	h := s.hierarchy

	// Roots themselves first, most recently added winning.
	for i := len(roots) - 1; i >= 0; i-- {
		if h.Name(roots[i]) == name {
			return roots[i]
		}
	}
	for i := len(roots) - 1; i >= 0; i-- {
		if found := findInChildren(h, roots[i], name); found != entity.Nil {
			return found
		}
	}
	return entity.Nil
}

// findInChildren searches an entity's subtree for a name, each level fully
// checked before descending into it.
func findInChildren(h *entity.Hierarchy, e entity.Handle, name string) entity.Handle {
	children := h.Children(e)
	for _, c := range children {
		if h.Name(c) == name {
			return c
		}
	}
	for _, c := range children {
		if found := findInChildren(h, c, name); found != entity.Nil {
			return found
		}
	}
	return entity.Nil
}

func (s *sceneImpl) FindEntityByPath(path string) entity.Handle {
	h := s.hierarchy
	current := entity.Nil
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		next := entity.Nil
		if current == entity.Nil {
			s.mu.RLock()
			for _, root := range s.roots {
				if h.Name(root) == segment {
					next = root
					break
				}
			}
			s.mu.RUnlock()
		} else {
			for _, c := range h.Children(current) {
				if h.Name(c) == segment {
					next = c
					break
				}
			}
		}
		if next == entity.Nil {
			return entity.Nil
		}
		current = next
	}
	return current
}

func (s *sceneImpl) AddCamera(cam camera.Camera) {
	if cam == nil {
		log.Printf("[Scene] AddCamera called with nil camera; ignoring")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.cameras {
		if existing == cam {
			log.Printf("[Scene] camera %q already added to scene %q; ignoring duplicate", cam.Name(), s.name)
			return
		}
	}
	s.cameras = append(s.cameras, cam)
}

func (s *sceneImpl) RemoveCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.cameras {
		if existing == cam {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			return
		}
	}
}

func (s *sceneImpl) Cameras() []camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cameras
}

func (s *sceneImpl) AttachLight(l light.Light) {
	s.registry.Attach(l)
}

func (s *sceneImpl) DetachLight(l light.Light) {
	s.registry.Detach(l)
}

func (s *sceneImpl) LightRegistry() *light.Registry {
	return s.registry
}

func (s *sceneImpl) SunLight() light.Light {
	return s.registry.SunLight()
}

func (s *sceneImpl) AmbientLight() *light.Ambient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ambient
}

func (s *sceneImpl) SetAmbientLight(ambient *light.Ambient) {
	if ambient == nil {
		log.Printf("[Scene] SetAmbientLight called with nil ambient; keeping current")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ambient = ambient
}

func (s *sceneImpl) ShadowConfig() light.ShadowConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shadowConfig
}

func (s *sceneImpl) SetShadowConfig(cfg light.ShadowConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shadowConfig = cfg
}

func (s *sceneImpl) Background() *render.Background {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *sceneImpl) SetBackground(bg *render.Background) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = bg
}

func (s *sceneImpl) ShaderData() shader.Data {
	return s.shaderData
}

func (s *sceneImpl) AddRenderer(r render.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.renderers {
		if existing == r {
			return
		}
	}
	s.renderers = append(s.renderers, r)
}

func (s *sceneImpl) RemoveRenderer(r render.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.renderers {
		if existing == r {
			s.renderers = append(s.renderers[:i], s.renderers[i+1:]...)
			return
		}
	}
}

func (s *sceneImpl) Renderers() []render.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renderers
}

func (s *sceneImpl) Pipeline() render.Pipeline {
	return s.pipeline
}

func (s *sceneImpl) ProcessActive(active bool) {
	s.mu.Lock()
	if s.active == active {
		s.mu.Unlock()
		return
	}
	s.active = active
	roots := make([]entity.Handle, len(s.roots))
	copy(roots, s.roots)
	s.mu.Unlock()

	h := s.hierarchy
	for i := len(roots) - 1; i >= 0; i-- {
		if h.Active(roots[i]) {
			h.ProcessActive(roots[i], active)
		}
	}
}

func (s *sceneImpl) RenderFrame(backend render.Backend, canvasWidth, canvasHeight int) {
	if s.destroyed {
		log.Printf("[Scene] RenderFrame on destroyed scene %q; ignoring", s.name)
		return
	}

	s.shaderData.SetVector3(light.BufferAmbientColor, s.AmbientLight().Scaled())
	s.registry.UpdateShaderData(s.shaderData)

	for _, cam := range s.Cameras() {
		ctx := &render.Context{
			Scene:        s,
			Camera:       cam,
			Backend:      backend,
			CanvasWidth:  canvasWidth,
			CanvasHeight: canvasHeight,
		}
		s.pipeline.Render(ctx)
	}
}

func (s *sceneImpl) Destroy() {
	if s.destroyed {
		return
	}
	s.ProcessActive(false)
	s.destroyed = true

	for s.RootEntityCount() > 0 {
		root := s.RootEntities()[0]
		s.RemoveRootEntity(root)
		s.hierarchy.Destroy(root)
	}

	s.mu.Lock()
	s.cameras = nil
	s.renderers = nil
	s.background = nil
	s.mu.Unlock()

	s.shaderData.Release()
	s.pipeline.Destroy()
}
