package material

import (
	"github.com/strata-engine/strata/engine/shader"
)

// MaterialBuilderOption is a function that configures a Material instance
// during construction.
type MaterialBuilderOption func(*materialImpl)

// WithRenderQueue is an option builder that sets the material's queue bucket.
//
// Parameters:
//   - q: the render queue bucket
//
// Returns:
//   - MaterialBuilderOption: a function that applies the queue option to a materialImpl
func WithRenderQueue(q RenderQueue) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.renderQueue = q
	}
}

// WithProgram is an option builder that sets the material's default
// compiled program (the variant used when no macro-specific variant is
// registered).
//
// Parameters:
//   - p: the default program
//
// Returns:
//   - MaterialBuilderOption: a function that applies the program option to a materialImpl
func WithProgram(p shader.Program) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.defaultProgram = p
	}
}

// WithMacro is an option builder that enables a macro on the material's
// shader data at construction time.
//
// Parameters:
//   - name: the macro name to enable
//
// Returns:
//   - MaterialBuilderOption: a function that applies the macro option to a materialImpl
func WithMacro(name string) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.shaderData.EnableMacro(name)
	}
}
