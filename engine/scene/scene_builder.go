package scene

import (
	"github.com/strata-engine/strata/engine/camera"
	"github.com/strata-engine/strata/engine/entity"
	"github.com/strata-engine/strata/engine/light"
	"github.com/strata-engine/strata/engine/render"
)

// SceneBuilderOption is a function that configures a Scene instance during
// construction.
type SceneBuilderOption func(*sceneImpl)

// WithHierarchy is an option builder that backs the scene with an existing
// entity hierarchy instead of a private one. Scenes sharing a hierarchy can
// move root entities between each other through AddRootEntity. Nil
// hierarchies are ignored.
//
// Parameters:
//   - h: the hierarchy to share
//
// Returns:
//   - SceneBuilderOption: a function that applies the hierarchy option to a sceneImpl
func WithHierarchy(h *entity.Hierarchy) SceneBuilderOption {
	return func(s *sceneImpl) {
		if h != nil {
			s.hierarchy = h
		}
	}
}

// WithAmbientLight is an option builder that sets the scene's initial
// ambient light term. Nil ambients are ignored.
//
// Parameters:
//   - ambient: the ambient light
//
// Returns:
//   - SceneBuilderOption: a function that applies the ambient option to a sceneImpl
func WithAmbientLight(ambient *light.Ambient) SceneBuilderOption {
	return func(s *sceneImpl) {
		if ambient != nil {
			s.ambient = ambient
		}
	}
}

// WithShadowConfig is an option builder that sets the scene's shadow
// configuration.
//
// Parameters:
//   - cfg: the shadow configuration
//
// Returns:
//   - SceneBuilderOption: a function that applies the shadow option to a sceneImpl
func WithShadowConfig(cfg light.ShadowConfig) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.shadowConfig = cfg
	}
}

// WithBackground is an option builder that sets the scene's background.
//
// Parameters:
//   - bg: the background
//
// Returns:
//   - SceneBuilderOption: a function that applies the background option to a sceneImpl
func WithBackground(bg *render.Background) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.background = bg
	}
}

// WithPipeline is an option builder that replaces the scene's default
// render pipeline, typically to install a shadow caster pass or extra
// passes at construction time.
//
// Parameters:
//   - p: the pipeline
//
// Returns:
//   - SceneBuilderOption: a function that applies the pipeline option to a sceneImpl
func WithPipeline(p render.Pipeline) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.pipeline = p
	}
}

// WithCameras is an option builder that registers cameras at construction
// time, in render order.
//
// Parameters:
//   - cams: the cameras to register
//
// Returns:
//   - SceneBuilderOption: a function that applies the cameras option to a sceneImpl
func WithCameras(cams ...camera.Camera) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.cameras = append(s.cameras, cams...)
	}
}
