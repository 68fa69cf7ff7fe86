package light

import (
	"sync"

	"github.com/chewxy/math32"

	"github.com/strata-engine/strata/engine/shader"
)

// Macro names toggled by the registry on the scene's shader data. Each
// carries the exact per-type light count so downstream shader variant
// selection can size its light loops.
const (
	MacroDirectionLightCount = "DIRECTION_LIGHT_COUNT"
	MacroPointLightCount     = "POINT_LIGHT_COUNT"
	MacroSpotLightCount      = "SPOT_LIGHT_COUNT"
)

// Shader buffer names the registry packs light data into.
const (
	BufferDirectionLights = "u_DirectionLights"
	BufferPointLights     = "u_PointLights"
	BufferSpotLights      = "u_SpotLights"
)

// Per-light packed float counts. Directional lights pack direction and
// premultiplied color; point lights add position and range; spot lights add
// the cone axis and cosines.
const (
	directionLightStride = 6
	pointLightStride     = 8
	spotLightStride      = 12
)

// slots is a reusable-slot container for one light type. Attach appends;
// detach swap-removes, moving the last element into the vacated slot and
// updating its stored index. Container order is therefore not stable across
// removals, but every attached light's Index always equals its position.
type slots[T Light] struct {
	items []T
}

func (s *slots[T]) attach(l T) {
	l.SetIndex(len(s.items))
	s.items = append(s.items, l)
}

func (s *slots[T]) detach(l T) {
	// The recorded index must point back at this light; a light attached
	// to a different container carries an index that is meaningless here.
	i := l.Index()
	if i < 0 || i >= len(s.items) || Light(s.items[i]) != Light(l) {
		return
	}
	last := len(s.items) - 1
	if i != last {
		s.items[i] = s.items[last]
		s.items[i].SetIndex(i)
	}
	var zero T
	s.items[last] = zero
	s.items = s.items[:last]
	l.SetIndex(-1)
}

// Registry tracks the active lights of a scene in three type-specific
// slot containers and selects the dominant shadow-casting directional
// light ("sun") each frame. Attach and detach are both O(1).
type Registry struct {
	mu *sync.RWMutex

	directional slots[Light]
	point       slots[Light]
	spot        slots[Light]
}

// NewRegistry creates an empty light registry.
//
// Returns:
//   - *Registry: the new registry
func NewRegistry() *Registry {
	return &Registry{
		mu: &sync.RWMutex{},
	}
}

// Attach adds a light to its type-specific container and records the
// assigned slot on the light. Attaching an already attached light is a
// no-op.
//
// Parameters:
//   - l: the light to attach
func (r *Registry) Attach(l Light) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l.Index() >= 0 {
		return
	}
	switch l.Type() {
	case LightTypeDirectional:
		r.directional.attach(l)
	case LightTypePoint:
		r.point.attach(l)
	case LightTypeSpot:
		r.spot.attach(l)
	}
}

// Detach removes a light from its container via swap-remove, updating the
// index of whichever light moved into the freed slot. Detaching a light
// that is unattached, or attached to a different registry, is a no-op.
//
// Parameters:
//   - l: the light to detach
func (r *Registry) Detach(l Light) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch l.Type() {
	case LightTypeDirectional:
		r.directional.detach(l)
	case LightTypePoint:
		r.point.detach(l)
	case LightTypeSpot:
		r.spot.detach(l)
	}
}

// DirectionalLights returns the directional light container in slot order.
// The returned slice is the registry's backing storage; callers must not
// mutate it.
//
// Returns:
//   - []Light: the directional lights
func (r *Registry) DirectionalLights() []Light {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.directional.items
}

// PointLights returns the point light container in slot order.
//
// Returns:
//   - []Light: the point lights
func (r *Registry) PointLights() []Light {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.point.items
}

// SpotLights returns the spot light container in slot order.
//
// Returns:
//   - []Light: the spot lights
func (r *Registry) SpotLights() []Light {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.spot.items
}

// SunLightIndex selects the dominant directional light in a single linear
// pass. Shadow-casting lights strictly dominate non-shadow lights: the
// first time a shadow caster is seen, the running best tracker resets,
// discarding any non-shadow candidate found earlier. Within a dominance
// tier the light with the highest intensity x color-brightness product
// wins; ties keep the earliest-seen light.
//
// Returns:
//   - int: the winning container slot, or -1 when there are no directional lights
func (r *Registry) SunLightIndex() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best := -1
	bestValue := math32.Inf(-1)
	shadowTier := false

	for i, l := range r.directional.items {
		casts := l.CastsShadows()
		if casts && !shadowTier {
			shadowTier = true
			best = -1
			bestValue = math32.Inf(-1)
		}
		if shadowTier && !casts {
			continue
		}
		v := l.Intensity() * l.Color().Brightness()
		if v > bestValue {
			bestValue = v
			best = i
		}
	}
	return best
}

// SunLight returns the selected sun light, or nil when no directional
// lights are attached.
//
// Returns:
//   - Light: the sun light or nil
func (r *Registry) SunLight() Light {
	i := r.SunLightIndex()
	if i < 0 {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.directional.items[i]
}

// UpdateShaderData packs every attached light's per-type data into the
// given shader data block in container order and toggles the per-type
// count macros so shader variant selection reflects exact counts. Disabled
// lights still occupy their slot but contribute zero energy (their packed
// color is black), keeping indices stable within a frame.
//
// Parameters:
//   - data: the scene-level shader data block to write into
func (r *Registry) UpdateShaderData(data shader.Data) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	packCount(data, MacroDirectionLightCount, BufferDirectionLights,
		len(r.directional.items), directionLightStride, func(buf []float32) {
			for i, l := range r.directional.items {
				o := i * directionLightStride
				dir := l.Direction()
				buf[o+0], buf[o+1], buf[o+2] = dir[0], dir[1], dir[2]
				packColor(buf[o+3:o+6], l)
			}
		})

	packCount(data, MacroPointLightCount, BufferPointLights,
		len(r.point.items), pointLightStride, func(buf []float32) {
			for i, l := range r.point.items {
				o := i * pointLightStride
				pos := l.Position()
				buf[o+0], buf[o+1], buf[o+2] = pos[0], pos[1], pos[2]
				buf[o+3] = l.Range()
				packColor(buf[o+4:o+7], l)
				buf[o+7] = 0 // pad to stride
			}
		})

	packCount(data, MacroSpotLightCount, BufferSpotLights,
		len(r.spot.items), spotLightStride, func(buf []float32) {
			for i, l := range r.spot.items {
				o := i * spotLightStride
				pos := l.Position()
				dir := l.Direction()
				buf[o+0], buf[o+1], buf[o+2] = pos[0], pos[1], pos[2]
				buf[o+3] = l.Range()
				buf[o+4], buf[o+5], buf[o+6] = dir[0], dir[1], dir[2]
				buf[o+7] = l.InnerCone()
				buf[o+8] = l.OuterCone()
				packColor(buf[o+9:o+12], l)
			}
		})
}

// packCount writes one light type's buffer and count macro. A zero count
// disables the macro and clears the buffer.
func packCount(data shader.Data, macro, buffer string, count, stride int, fill func([]float32)) {
	if count == 0 {
		data.DisableMacro(macro)
		data.SetBuffer(buffer, nil)
		return
	}
	buf := make([]float32, count*stride)
	fill(buf)
	data.SetBuffer(buffer, buf)
	data.EnableMacroValue(macro, count)
}

// packColor writes a light's premultiplied color into dst (3 floats).
// Disabled lights pack to black.
func packColor(dst []float32, l Light) {
	if !l.Enabled() {
		dst[0], dst[1], dst[2] = 0, 0, 0
		return
	}
	c := l.Color()
	k := l.Intensity()
	dst[0], dst[1], dst[2] = c.R*k, c.G*k, c.B*k
}
