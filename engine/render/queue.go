package render

import (
	"slices"

	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/camera"
	"github.com/strata-engine/strata/engine/material"
)

// CompareNearToFar orders elements by ascending sort distance. Used for the
// opaque and alpha-test queues so the backend's early depth test rejects
// occluded fragments.
//
// Parameters:
//   - a, b: the elements to compare
//
// Returns:
//   - int: negative when a draws first, positive when b draws first
func CompareNearToFar(a, b *Element) int {
	switch {
	case a.DistanceForSort < b.DistanceForSort:
		return -1
	case a.DistanceForSort > b.DistanceForSort:
		return 1
	default:
		return 0
	}
}

// CompareFarToNear orders elements by descending sort distance. Used for
// the transparent queue, where blending requires back-to-front submission.
//
// Parameters:
//   - a, b: the elements to compare
//
// Returns:
//   - int: negative when a draws first, positive when b draws first
func CompareFarToNear(a, b *Element) int {
	return CompareNearToFar(b, a)
}

// Queue is an unordered-insertion, sortable collection of draw candidates
// for one render bucket. Cleared every frame; the backing storage is kept
// so steady-state frames allocate nothing.
type Queue struct {
	elements  []*Element
	destroyed bool
}

// NewQueue creates an empty render queue.
//
// Returns:
//   - *Queue: the new queue
func NewQueue() *Queue {
	return &Queue{}
}

// PushPrimitive appends an element. Order is undefined until Sort.
//
// Parameters:
//   - e: the element to append
func (q *Queue) PushPrimitive(e *Element) {
	q.elements = append(q.elements, e)
}

// Clear resets the logical length to zero without shrinking the backing
// storage, so element slots are reused across frames.
func (q *Queue) Clear() {
	for i := range q.elements {
		q.elements[i] = nil
	}
	q.elements = q.elements[:0]
}

// Len returns the number of queued elements.
//
// Returns:
//   - int: the element count
func (q *Queue) Len() int {
	return len(q.elements)
}

// Elements returns the queued elements in current order. The returned
// slice is the queue's backing storage; callers must not mutate it.
//
// Returns:
//   - []*Element: the elements
func (q *Queue) Elements() []*Element {
	return q.elements
}

// Sort orders the queue in place with the given comparator. Stable, so
// elements with equal sort keys keep their insertion order and repeated
// sorts are idempotent.
//
// Parameters:
//   - cmp: CompareNearToFar or CompareFarToNear
func (q *Queue) Sort(cmp func(a, b *Element) int) {
	slices.SortStableFunc(q.elements, cmp)
}

// Render issues draw calls for every queued element, in order. The only
// filtering applied here is the layer mask; visibility and culling were
// already decided during queue building.
//
// Parameters:
//   - cam: the camera being rendered (reserved for per-draw uniforms)
//   - replacement: material drawn instead of each element's own, or nil
//   - mask: layer mask elements must intersect to be drawn
//   - backend: the draw submission target
func (q *Queue) Render(cam camera.Camera, replacement material.Material, mask common.Layer, backend Backend) {
	_ = cam
	for _, e := range q.elements {
		if e.Layer&mask == 0 {
			continue
		}
		mat := e.Material
		if replacement != nil {
			mat = replacement
		}
		if mat == nil {
			continue
		}
		var prog = mat.Program(nil)
		if e.Renderer != nil {
			prog = mat.Program(e.Renderer.Macros())
		}
		if prog == nil {
			continue
		}
		backend.DrawPrimitive(e.Geometry, e.SubMesh, prog)
	}
}

// Destroy releases the queue's element references. The queue is unusable
// afterwards.
func (q *Queue) Destroy() {
	q.elements = nil
	q.destroyed = true
}
