package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/shader"
)

// requireSlotInvariant asserts that every attached light's stored index
// matches its container position.
func requireSlotInvariant(t *testing.T, lights []Light) {
	t.Helper()
	for i, l := range lights {
		require.Equal(t, i, l.Index(), "light at slot %d has stale index", i)
	}
}

func TestRegistryAttachAssignsSlots(t *testing.T) {
	r := NewRegistry()
	a := NewLight(LightTypePoint)
	b := NewLight(LightTypePoint)

	require.Equal(t, -1, a.Index())
	r.Attach(a)
	r.Attach(b)

	assert.Equal(t, 0, a.Index())
	assert.Equal(t, 1, b.Index())
	requireSlotInvariant(t, r.PointLights())

	// Attaching twice is a no-op.
	r.Attach(a)
	assert.Len(t, r.PointLights(), 2)
}

func TestRegistrySwapRemoveKeepsIndices(t *testing.T) {
	r := NewRegistry()
	lights := make([]Light, 4)
	for i := range lights {
		lights[i] = NewLight(LightTypePoint)
		r.Attach(lights[i])
	}

	// Removing a middle slot moves the last light into it.
	r.Detach(lights[1])
	assert.Equal(t, -1, lights[1].Index())
	require.Len(t, r.PointLights(), 3)
	assert.Same(t, lights[3], r.PointLights()[1])
	requireSlotInvariant(t, r.PointLights())

	// Removing the last slot needs no move.
	r.Detach(lights[2])
	require.Len(t, r.PointLights(), 2)
	requireSlotInvariant(t, r.PointLights())

	// Detaching an unattached light is a no-op.
	r.Detach(lights[1])
	require.Len(t, r.PointLights(), 2)
}

func TestRegistryDetachForeignLightIsIgnored(t *testing.T) {
	mine := NewRegistry()
	theirs := NewRegistry()
	kept := NewLight(LightTypePoint)
	foreign := NewLight(LightTypePoint)
	mine.Attach(kept)
	theirs.Attach(foreign)

	// Both lights hold slot 0 of their own registries; detaching the
	// foreign one here must not evict the resident.
	mine.Detach(foreign)

	require.Len(t, mine.PointLights(), 1)
	assert.Same(t, kept, mine.PointLights()[0])
	assert.Equal(t, 0, kept.Index())

	// The foreign light stays attached where it actually lives.
	assert.Equal(t, 0, foreign.Index())
	require.Len(t, theirs.PointLights(), 1)
	assert.Same(t, foreign, theirs.PointLights()[0])
}

func TestRegistrySeparatesLightTypes(t *testing.T) {
	r := NewRegistry()
	r.Attach(NewLight(LightTypeDirectional))
	r.Attach(NewLight(LightTypePoint))
	r.Attach(NewLight(LightTypeSpot))
	r.Attach(NewLight(LightTypeSpot))

	assert.Len(t, r.DirectionalLights(), 1)
	assert.Len(t, r.PointLights(), 1)
	assert.Len(t, r.SpotLights(), 2)
}

func TestSunLightSelection(t *testing.T) {
	t.Run("empty registry", func(t *testing.T) {
		r := NewRegistry()
		assert.Equal(t, -1, r.SunLightIndex())
		assert.Nil(t, r.SunLight())
	})

	t.Run("sole directional light", func(t *testing.T) {
		r := NewRegistry()
		sun := NewLight(LightTypeDirectional)
		r.Attach(sun)
		assert.Same(t, sun, r.SunLight())
	})

	t.Run("brightest wins within a tier", func(t *testing.T) {
		r := NewRegistry()
		dim := NewLight(LightTypeDirectional, WithIntensity(0.5))
		bright := NewLight(LightTypeDirectional, WithIntensity(2))
		r.Attach(dim)
		r.Attach(bright)
		assert.Same(t, bright, r.SunLight())
	})

	t.Run("shadow caster beats brighter non-caster", func(t *testing.T) {
		r := NewRegistry()
		floodlight := NewLight(LightTypeDirectional, WithIntensity(100))
		caster := NewLight(LightTypeDirectional, WithIntensity(1), WithCastsShadows(true))
		r.Attach(floodlight)
		r.Attach(caster)
		assert.Same(t, caster, r.SunLight())
	})

	t.Run("tie keeps the earliest attached", func(t *testing.T) {
		r := NewRegistry()
		first := NewLight(LightTypeDirectional)
		second := NewLight(LightTypeDirectional)
		r.Attach(first)
		r.Attach(second)
		assert.Same(t, first, r.SunLight())
	})

	t.Run("color brightness ranks equal intensities", func(t *testing.T) {
		r := NewRegistry()
		red := NewLight(LightTypeDirectional, WithColor(common.Color{R: 1, A: 1}))
		white := NewLight(LightTypeDirectional, WithColor(common.Color{R: 1, G: 1, B: 1, A: 1}))
		r.Attach(red)
		r.Attach(white)
		assert.Same(t, white, r.SunLight())
	})
}

func TestUpdateShaderDataPacksLights(t *testing.T) {
	r := NewRegistry()
	data := shader.NewData()

	sun := NewLight(LightTypeDirectional,
		WithDirection(0, -1, 0),
		WithColor(common.Color{R: 1, G: 0.5, B: 0.25, A: 1}),
		WithIntensity(2),
	)
	lantern := NewLight(LightTypePoint,
		WithPosition(1, 2, 3),
		WithRange(8),
		WithIntensity(1),
	)
	spot := NewLight(LightTypeSpot,
		WithPosition(4, 5, 6),
		WithDirection(1, 0, 0),
		WithRange(12),
		WithSpotCone(25, 35),
	)
	r.Attach(sun)
	r.Attach(lantern)
	r.Attach(spot)

	r.UpdateShaderData(data)

	assert.Equal(t, 1, data.MacroValue(MacroDirectionLightCount))
	assert.Equal(t, 1, data.MacroValue(MacroPointLightCount))
	assert.Equal(t, 1, data.MacroValue(MacroSpotLightCount))

	dir := data.Buffer(BufferDirectionLights)
	require.Len(t, dir, 6)
	assert.Equal(t, []float32{0, -1, 0}, dir[0:3])
	// Color premultiplied by intensity.
	assert.Equal(t, []float32{2, 1, 0.5}, dir[3:6])

	point := data.Buffer(BufferPointLights)
	require.Len(t, point, 8)
	assert.Equal(t, []float32{1, 2, 3}, point[0:3])
	assert.Equal(t, float32(8), point[3])
	assert.Equal(t, []float32{1, 1, 1}, point[4:7])
	assert.Equal(t, float32(0), point[7])

	packed := data.Buffer(BufferSpotLights)
	require.Len(t, packed, 12)
	assert.Equal(t, []float32{4, 5, 6}, packed[0:3])
	assert.Equal(t, float32(12), packed[3])
	assert.Equal(t, []float32{1, 0, 0}, packed[4:7])
	assert.Equal(t, spot.InnerCone(), packed[7])
	assert.Equal(t, spot.OuterCone(), packed[8])
}

func TestUpdateShaderDataDisabledLightPacksBlack(t *testing.T) {
	r := NewRegistry()
	data := shader.NewData()

	off := NewLight(LightTypePoint, WithIntensity(5), WithEnabled(false))
	r.Attach(off)
	r.UpdateShaderData(data)

	// The slot stays occupied so indices remain stable, but the packed
	// color is black.
	assert.Equal(t, 1, data.MacroValue(MacroPointLightCount))
	buf := data.Buffer(BufferPointLights)
	require.Len(t, buf, 8)
	assert.Equal(t, []float32{0, 0, 0}, buf[4:7])
}

func TestUpdateShaderDataZeroCountDisablesMacro(t *testing.T) {
	r := NewRegistry()
	data := shader.NewData()

	l := NewLight(LightTypePoint)
	r.Attach(l)
	r.UpdateShaderData(data)
	require.True(t, data.HasMacro(MacroPointLightCount))

	r.Detach(l)
	r.UpdateShaderData(data)
	assert.False(t, data.HasMacro(MacroPointLightCount))
	assert.Nil(t, data.Buffer(BufferPointLights))
}
