// package material implements surface description state: a render queue
// bucket, a shader data block, and a cache of compiled program variants
// keyed by macro set.
package material

import (
	"github.com/strata-engine/strata/engine/shader"
)

// RenderQueue selects the blending/depth bucket a material's draws are
// routed into.
type RenderQueue int

const (
	// RenderQueueOpaque draws front-to-back with depth writes. The default.
	RenderQueueOpaque RenderQueue = iota

	// RenderQueueAlphaTest draws front-to-back after opaque; fragments are
	// discarded by an alpha cutoff rather than blended.
	RenderQueueAlphaTest

	// RenderQueueTransparent draws back-to-front with blending after the
	// background.
	RenderQueueTransparent
)

// materialImpl is the implementation of the Material interface.
type materialImpl struct {
	name        string
	renderQueue RenderQueue
	shaderData  shader.Data

	defaultProgram shader.Program
	variants       map[uint64]shader.Program
}

// Material describes how a surface is drawn: which queue bucket it belongs
// to, its shader uniform state, and which compiled program variant matches
// a given macro combination.
type Material interface {
	// Name returns the material's identifier.
	//
	// Returns:
	//   - string: the material name
	Name() string

	// RenderQueue returns the queue bucket this material draws in.
	//
	// Returns:
	//   - RenderQueue: the bucket
	RenderQueue() RenderQueue

	// SetRenderQueue reassigns the material's queue bucket. Takes effect on
	// the next frame's queue build.
	//
	// Parameters:
	//   - q: the new bucket
	SetRenderQueue(q RenderQueue)

	// ShaderData returns the material's shader uniform block.
	//
	// Returns:
	//   - shader.Data: the data block
	ShaderData() shader.Data

	// Program resolves the compiled program variant for a macro set. Looks
	// up the variant cache by the set's hash; falls back to the default
	// program when no exact variant is registered. O(1) per call.
	//
	// Parameters:
	//   - macros: the effective macro set for the draw (nil means default)
	//
	// Returns:
	//   - shader.Program: the program to bind, or nil if none registered
	Program(macros *shader.MacroSet) shader.Program

	// RegisterProgram caches a compiled program variant for a macro set.
	//
	// Parameters:
	//   - macros: the macro combination the program was compiled with (nil keys the default variant)
	//   - p: the compiled program
	RegisterProgram(macros *shader.MacroSet, p shader.Program)

	// Destroy releases the material's shader data reference. The material
	// is unusable afterwards.
	Destroy()
}

var _ Material = &materialImpl{}

// NewMaterial creates a Material with an opaque render queue, a fresh
// shader data block, and any provided options applied.
//
// Parameters:
//   - name: the material's identifier
//   - opts: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func NewMaterial(name string, opts ...MaterialBuilderOption) Material {
	m := &materialImpl{
		name:        name,
		renderQueue: RenderQueueOpaque,
		shaderData:  shader.NewData(),
		variants:    make(map[uint64]shader.Program),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *materialImpl) Name() string {
	return m.name
}

func (m *materialImpl) RenderQueue() RenderQueue {
	return m.renderQueue
}

func (m *materialImpl) SetRenderQueue(q RenderQueue) {
	m.renderQueue = q
}

func (m *materialImpl) ShaderData() shader.Data {
	return m.shaderData
}

func (m *materialImpl) Program(macros *shader.MacroSet) shader.Program {
	if macros != nil {
		if p, ok := m.variants[macros.Hash()]; ok {
			return p
		}
	}
	return m.defaultProgram
}

func (m *materialImpl) RegisterProgram(macros *shader.MacroSet, p shader.Program) {
	if macros == nil {
		m.defaultProgram = p
		return
	}
	m.variants[macros.Hash()] = p
	if m.defaultProgram == nil {
		m.defaultProgram = p
	}
}

func (m *materialImpl) Destroy() {
	if m.shaderData != nil {
		m.shaderData.Release()
	}
	m.variants = nil
	m.defaultProgram = nil
}
