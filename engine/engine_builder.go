package engine

import (
	"time"

	"github.com/strata-engine/strata/engine/render"
	"github.com/strata-engine/strata/engine/scene"
	"github.com/strata-engine/strata/engine/window"
)

// EngineBuilderOption is a function that configures an Engine during
// construction.
type EngineBuilderOption func(*engine)

// WithWindow is an option builder that supplies a pre-configured window
// instead of letting the engine create a default one.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: a function that applies the window option to an engine
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithBackend is an option builder that supplies a pre-configured render
// backend instead of letting the engine create a wgpu backend over its
// window surface.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - EngineBuilderOption: a function that applies the backend option to an engine
func WithBackend(b render.Backend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = b
	}
}

// WithScene is an option builder that registers a scene at construction
// time. The scene starts inactive.
//
// Parameters:
//   - key: the z-index determining render order
//   - s: the scene to register
//
// Returns:
//   - EngineBuilderOption: a function that applies the scene option to an engine
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		if s != nil {
			e.scenes[key] = s
		}
	}
}

// WithTickRate is an option builder that sets the fixed tick rate in ticks
// per second. Values <= 0 keep the 60 Hz default.
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: a function that applies the tick option to an engine
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps > 0 {
			e.tickRate = time.Duration(float64(time.Second) / fps)
		}
	}
}

// WithRenderFrameLimit is an option builder that caps the frame rate.
// Pass 0 to uncap (default).
//
// Parameters:
//   - fps: maximum frames per second
//
// Returns:
//   - EngineBuilderOption: a function that applies the limit option to an engine
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps > 0 {
			e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
		}
	}
}

// WithTaskWorkers is an option builder that sets the worker count of the
// engine's off-frame task pool.
//
// Parameters:
//   - workers: the worker count (values <= 0 keep the default)
//
// Returns:
//   - EngineBuilderOption: a function that applies the workers option to an engine
func WithTaskWorkers(workers int) EngineBuilderOption {
	return func(e *engine) {
		if workers > 0 {
			e.taskWorkers = workers
		}
	}
}

// WithProfiling is an option builder that enables frame timing output from
// construction.
//
// Parameters:
//   - enabled: true to enable profiling
//
// Returns:
//   - EngineBuilderOption: a function that applies the profiling option to an engine
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}
