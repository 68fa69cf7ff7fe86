package light

import (
	"github.com/strata-engine/strata/common"
)

// Shader buffer name the scene's ambient term is written to.
const BufferAmbientColor = "u_AmbientColor"

// Ambient is the scene's single ambient light term: a flat color applied to
// every lit fragment. Scenes always hold exactly one non-nil Ambient.
type Ambient struct {
	Color     common.Color
	Intensity float32
}

// NewAmbient creates an ambient light with the given color and intensity.
//
// Parameters:
//   - c: the ambient color
//   - intensity: the scalar intensity multiplier
//
// Returns:
//   - *Ambient: the new ambient light
func NewAmbient(c common.Color, intensity float32) *Ambient {
	return &Ambient{Color: c, Intensity: intensity}
}

// Scaled returns the ambient contribution as a premultiplied RGB triple.
//
// Returns:
//   - [3]float32: color scaled by intensity
func (a *Ambient) Scaled() [3]float32 {
	return [3]float32{
		a.Color.R * a.Intensity,
		a.Color.G * a.Intensity,
		a.Color.B * a.Intensity,
	}
}
