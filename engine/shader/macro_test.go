package shader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareMacroInterns(t *testing.T) {
	a := DeclareMacro("TEST_INTERN_A")
	b := DeclareMacro("TEST_INTERN_B")
	require.NotEqual(t, a, b)

	// Same name, same index.
	assert.Equal(t, a, DeclareMacro("TEST_INTERN_A"))
	assert.Equal(t, "TEST_INTERN_A", MacroName(a))
	assert.Equal(t, "", MacroName(Macro(1<<30)))
}

func TestMacroSetAddRemoveHas(t *testing.T) {
	a := DeclareMacro("TEST_SET_A")
	b := DeclareMacro("TEST_SET_B")

	var s MacroSet
	assert.False(t, s.Has(a))
	assert.Equal(t, 0, s.Count())

	s.Add(a)
	assert.True(t, s.Has(a))
	assert.False(t, s.Has(b))
	assert.Equal(t, 1, s.Count())

	// Adding twice does not double-count.
	s.Add(a)
	assert.Equal(t, 1, s.Count())

	s.Remove(a)
	assert.False(t, s.Has(a))
	// Removing an absent macro is a no-op.
	s.Remove(b)
	assert.Equal(t, 0, s.Count())
}

func TestMacroSetUnionWith(t *testing.T) {
	a := DeclareMacro("TEST_UNION_A")
	b := DeclareMacro("TEST_UNION_B")

	var s, other MacroSet
	s.Add(a)
	other.Add(b)

	s.UnionWith(&other)
	assert.True(t, s.Has(a))
	assert.True(t, s.Has(b))

	// Union with nil is a no-op.
	s.UnionWith(nil)
	assert.Equal(t, 2, s.Count())

	// The source set is unchanged.
	assert.False(t, other.Has(a))
}

func TestMacroSetSetFrom(t *testing.T) {
	a := DeclareMacro("TEST_FROM_A")
	b := DeclareMacro("TEST_FROM_B")

	var s, src MacroSet
	s.Add(a)
	src.Add(b)

	s.SetFrom(&src)
	assert.False(t, s.Has(a))
	assert.True(t, s.Has(b))

	s.SetFrom(nil)
	assert.Equal(t, 0, s.Count())
}

func TestMacroSetHashIgnoresTrailingZeroWords(t *testing.T) {
	low := DeclareMacro("TEST_HASH_LOW")
	// Force a second bitset word.
	var grown MacroSet
	grown.Add(low)
	grown.Add(Macro(130))
	grown.Remove(Macro(130))

	var compact MacroSet
	compact.Add(low)

	assert.Equal(t, compact.Hash(), grown.Hash())
	assert.True(t, compact.Equal(&grown))
	assert.True(t, grown.Equal(&compact))
}

func TestMacroSetHashDiffers(t *testing.T) {
	a := DeclareMacro("TEST_HASHDIFF_A")
	b := DeclareMacro("TEST_HASHDIFF_B")

	var sa, sb MacroSet
	sa.Add(a)
	sb.Add(b)
	assert.NotEqual(t, sa.Hash(), sb.Hash())
	assert.False(t, sa.Equal(&sb))
}

func TestMacroSetEqualNilAndEmpty(t *testing.T) {
	var empty MacroSet
	assert.True(t, empty.Equal(nil))

	var cleared MacroSet
	cleared.Add(DeclareMacro("TEST_EQ_CLEARED"))
	cleared.Clear()
	assert.True(t, cleared.Equal(nil))
	assert.True(t, cleared.Equal(&empty))
}
