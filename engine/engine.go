package engine

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/strata-engine/strata/engine/profiler"
	"github.com/strata-engine/strata/engine/render"
	"github.com/strata-engine/strata/engine/scene"
	"github.com/strata-engine/strata/engine/window"
)

// engine implements the Engine interface.
type engine struct {
	running  bool
	quitOnce sync.Once
	quit     chan struct{}

	window  window.Window
	backend render.Backend

	scenes map[int]scene.Scene

	tickRate     time.Duration
	tickCallback func(deltaTime float32)

	renderCallback   func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	profiler         *profiler.Profiler
	profilingEnabled bool

	// taskPool runs off-frame work (asset decoding, gameplay jobs) outside
	// the frame loop. Frames themselves stay single-threaded; tasks must
	// not mutate scenes while a frame is in flight.
	taskPool    worker.DynamicWorkerPool
	taskWorkers int
	nextTaskID  uint64
}

// Engine drives the main loop: window events, fixed-rate ticks, and one
// rendered frame per iteration. Scenes register at integer z-index keys
// and render in ascending key order; frames run entirely on the calling
// goroutine.
type Engine interface {
	// Window returns the engine's window.
	//
	// Returns:
	//   - window.Window: the window
	Window() window.Window

	// Backend returns the engine's render backend.
	//
	// Returns:
	//   - render.Backend: the backend
	Backend() render.Backend

	// AddScene registers a scene at the given z-index key. Lower keys
	// render first. The scene starts inactive; call ActivateScene to make
	// it render and fire entity activation callbacks.
	//
	// Parameters:
	//   - key: the z-index determining render order
	//   - s: the scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene deactivates and unregisters the scene at the given key.
	// Unknown keys are ignored.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene at the given key, or nil.
	//
	// Parameters:
	//   - key: the z-index of the scene
	//
	// Returns:
	//   - scene.Scene: the scene, or nil when absent
	Scene(key int) scene.Scene

	// Scenes returns a copy of the registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scene map
	Scenes() map[int]scene.Scene

	// ActivateScene activates the scene at the given key, cascading
	// activation through its own-active root entities. Already-active
	// scenes are unaffected.
	//
	// Parameters:
	//   - key: the z-index of the scene
	ActivateScene(key int)

	// DeactivateScene deactivates the scene at the given key, cascading
	// deactivation through its active root entities.
	//
	// Parameters:
	//   - key: the z-index of the scene
	DeactivateScene(key int)

	// SetTickRate sets the fixed tick rate in ticks per second. Values
	// <= 0 restore the 60 Hz default.
	//
	// Parameters:
	//   - fps: target ticks per second
	SetTickRate(fps float64)

	// SetTickCallback registers the function called at the fixed tick
	// rate, before the frame renders. Use it for gameplay and animation.
	//
	// Parameters:
	//   - callback: function receiving the tick delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each rendered
	// frame.
	//
	// Parameters:
	//   - callback: function receiving the frame delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the frame rate. Pass 0 to uncap (default).
	//
	// Parameters:
	//   - fps: maximum frames per second
	SetRenderFrameLimit(fps float64)

	// SubmitTask queues a function on the engine's worker pool, off the
	// frame loop. Tasks must not mutate scenes while a frame may be in
	// flight.
	//
	// Parameters:
	//   - task: the function to run
	SubmitTask(task func() error)

	// EnableProfiler enables frame timing output to the log.
	EnableProfiler()

	// DisableProfiler disables frame timing output.
	DisableProfiler()

	// Run starts the main loop and blocks until the window closes or Quit
	// is called.
	Run()

	// Quit signals the main loop to stop. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates an engine around a window and backend.
//
// Parameters:
//   - options: variadic list of EngineBuilderOption functions
//
// Returns:
//   - Engine: the new engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quit:        make(chan struct{}),
		scenes:      make(map[int]scene.Scene),
		tickRate:    time.Second / 60,
		profiler:    profiler.NewProfiler(),
		taskWorkers: 4,
	}
	for _, opt := range options {
		opt(e)
	}

	e.taskPool = worker.NewDynamicWorkerPool(e.taskWorkers, 256, 1*time.Second)

	if e.window == nil {
		e.window = window.NewWindow()
	}
	if e.backend == nil {
		e.backend = render.NewWGPUBackend(e.window.SurfaceDescriptor(), e.window.Width(), e.window.Height())
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.backend.Resize(width, height)
		if height <= 0 {
			return
		}
		aspect := float32(width) / float32(height)
		for _, s := range e.scenes {
			for _, cam := range s.Cameras() {
				cam.SetAspect(aspect)
			}
		}
	})

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Backend() render.Backend {
	return e.backend
}

func (e *engine) AddScene(key int, s scene.Scene) {
	if s == nil {
		log.Printf("[Engine] AddScene called with nil scene; ignoring")
		return
	}
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	if s, ok := e.scenes[key]; ok {
		s.ProcessActive(false)
		delete(e.scenes, key)
	}
}

func (e *engine) Scene(key int) scene.Scene {
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func (e *engine) ActivateScene(key int) {
	s, ok := e.scenes[key]
	if !ok {
		log.Printf("[Engine] ActivateScene: no scene at key %d", key)
		return
	}
	s.ProcessActive(true)
}

func (e *engine) DeactivateScene(key int) {
	s, ok := e.scenes[key]
	if !ok {
		log.Printf("[Engine] DeactivateScene: no scene at key %d", key)
		return
	}
	s.ProcessActive(false)
}

func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	e.tickRate = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SubmitTask(task func() error) {
	if task == nil {
		return
	}
	e.nextTaskID++
	e.taskPool.SubmitTask(worker.Task{
		ID: int(e.nextTaskID),
		Do: func() (any, error) {
			return nil, task()
		},
	})
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Run() {
	e.running = true

	lastTick := time.Now()
	lastFrame := time.Now()
	var tickAccumulator time.Duration

	for e.window.PollEvents() {
		select {
		case <-e.quit:
			e.running = false
			return
		default:
		}

		now := time.Now()

		// Fixed-step ticks, however many fit since the last frame.
		tickAccumulator += now.Sub(lastTick)
		lastTick = now
		for tickAccumulator >= e.tickRate {
			tickAccumulator -= e.tickRate
			if e.tickCallback != nil {
				e.tickCallback(float32(e.tickRate.Seconds()))
			}
		}

		dt := float32(now.Sub(lastFrame).Seconds())
		lastFrame = now

		e.renderFrame()

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}
		if e.profilingEnabled {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(lastFrame); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
	e.running = false
}

// renderFrame renders every active scene in ascending z-index order inside
// a single backend frame.
func (e *engine) renderFrame() {
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.ActiveInEngine() {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return
	}

	if err := e.backend.BeginFrame(); err != nil {
		log.Printf("[Engine] BeginFrame: %v", err)
		return
	}
	width, height := e.window.Width(), e.window.Height()
	for _, s := range active {
		s.RenderFrame(e.backend, width, height)
	}
	e.backend.EndFrame()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}
