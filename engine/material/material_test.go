package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-engine/strata/engine/shader"
)

type stubProgram struct{ name string }

func (p *stubProgram) Name() string { return p.name }

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial("lit")
	assert.Equal(t, "lit", m.Name())
	assert.Equal(t, RenderQueueOpaque, m.RenderQueue())
	require.NotNil(t, m.ShaderData())
	assert.Nil(t, m.Program(nil))
}

func TestSetRenderQueue(t *testing.T) {
	m := NewMaterial("glass")
	m.SetRenderQueue(RenderQueueTransparent)
	assert.Equal(t, RenderQueueTransparent, m.RenderQueue())
}

func TestProgramVariantLookup(t *testing.T) {
	m := NewMaterial("lit")
	base := &stubProgram{name: "base"}
	shadowed := &stubProgram{name: "shadowed"}

	m.RegisterProgram(nil, base)

	var macros shader.MacroSet
	macros.Add(shader.DeclareMacro("TEST_MAT_SHADOW"))
	m.RegisterProgram(&macros, shadowed)

	// Exact variant match.
	assert.Same(t, shadowed, m.Program(&macros))

	// Unregistered combination falls back to the default.
	var other shader.MacroSet
	other.Add(shader.DeclareMacro("TEST_MAT_FOG"))
	assert.Same(t, base, m.Program(&other))
	assert.Same(t, base, m.Program(nil))
}

func TestFirstVariantBecomesDefault(t *testing.T) {
	m := NewMaterial("lit")
	var macros shader.MacroSet
	macros.Add(shader.DeclareMacro("TEST_MAT_FIRST"))
	only := &stubProgram{name: "only"}
	m.RegisterProgram(&macros, only)

	// With no explicit default, the first registered variant serves as one.
	assert.Same(t, only, m.Program(nil))
}

func TestDestroyReleasesShaderData(t *testing.T) {
	m := NewMaterial("lit")
	data := m.ShaderData()
	m.Destroy()
	assert.True(t, data.Destroyed())
}
