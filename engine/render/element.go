// package render implements the per-frame draw scheduling core: render
// elements and queues, prioritized render passes, the cascaded shadow
// caster pass, and the pipeline that turns a scene plus a camera into an
// ordered stream of backend draw calls.
package render

import (
	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/material"
)

// Geometry is an opaque handle to mesh data owned by the external asset
// system. Backends assert it to their own geometry representation.
type Geometry interface {
	// Name returns the geometry's identifier for logging.
	//
	// Returns:
	//   - string: the geometry name
	Name() string
}

// Element is a single queued draw candidate for one frame: one sub-mesh of
// one renderer with one material. Elements are owned by their renderer and
// reused across frames; the pipeline stamps DistanceForSort during queue
// building and the queues discard their references at the next clear.
type Element struct {
	// Renderer is the owning renderer; used for macro resolution.
	Renderer Renderer

	// Geometry and SubMesh identify what to draw.
	Geometry Geometry
	SubMesh  int

	// Material decides the queue bucket and the program variant.
	Material material.Material

	// Layer is copied from the owning entity for pass/queue mask filtering.
	Layer common.Layer

	// DistanceForSort is the camera-relative sort key for this frame.
	// Orthographic cameras store a signed forward-axis distance;
	// perspective cameras store a squared euclidean distance.
	DistanceForSort float32
}

// QueueBucket returns the queue this element is routed into, derived from
// its material.
//
// Returns:
//   - material.RenderQueue: the bucket
func (e *Element) QueueBucket() material.RenderQueue {
	if e.Material == nil {
		return material.RenderQueueOpaque
	}
	return e.Material.RenderQueue()
}
