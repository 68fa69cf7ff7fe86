package light

// ShadowMapResolution is the default width and height in texels of the shadow
// depth texture. Scenes use this as their initial value but can override it
// via the WithShadowConfig builder option.
const ShadowMapResolution = 2048

// DefaultShadowNear is the default near plane for the directional light's
// orthographic shadow projection.
const DefaultShadowNear float32 = 0.1

// DefaultShadowFar is the default far plane for the directional light's
// orthographic shadow projection.
const DefaultShadowFar float32 = 200.0

// DefaultShadowHalfExtent is the default orthographic half-extent (in world units)
// used for the directional light shadow frustum. Controls how much of the scene
// around the camera center is captured in the shadow map.
const DefaultShadowHalfExtent float32 = 40.0

// DefaultShadowBias is the constant depth bias applied to shadow comparisons
// to reduce shadow acne artifacts.
const DefaultShadowBias float32 = 0.001

// DefaultShadowMaxDistance is the default camera-space distance beyond which
// geometry no longer receives cascaded shadows.
const DefaultShadowMaxDistance float32 = 100.0

// CascadeMode selects how many cascades the directional shadow map is split
// into along the camera's view distance.
type CascadeMode int

const (
	// CascadeModeNone renders a single shadow map covering the whole
	// shadow distance.
	CascadeModeNone CascadeMode = iota

	// CascadeModeTwoCascades splits the shadow distance into two cascades.
	CascadeModeTwoCascades

	// CascadeModeFourCascades splits the shadow distance into four cascades.
	CascadeModeFourCascades
)

// CascadeCount returns the number of shadow cascades for the mode.
//
// Returns:
//   - int: 1, 2, or 4
func (m CascadeMode) CascadeCount() int {
	switch m {
	case CascadeModeTwoCascades:
		return 2
	case CascadeModeFourCascades:
		return 4
	default:
		return 1
	}
}

// ShadowConfig is the scene-level directional shadow configuration consumed
// by the shadow caster pass.
type ShadowConfig struct {
	// CastShadow globally enables the shadow pass for the scene.
	CastShadow bool

	// Resolution is the shadow map width and height in texels.
	Resolution int

	// CascadeMode selects the cascade split scheme.
	CascadeMode CascadeMode

	// CascadeSplits are the normalized split ratios (ascending, in (0, 1))
	// between cascades. Only the first CascadeCount()-1 entries are used.
	CascadeSplits [3]float32

	// MaxDistance is the camera-space distance covered by the cascades.
	MaxDistance float32

	// Near and Far bound the light-space orthographic projection.
	Near float32
	Far  float32

	// HalfExtent is the orthographic half-size of the outermost cascade.
	HalfExtent float32

	// Bias is the constant depth bias applied during shadow comparison.
	Bias float32
}

// DefaultShadowConfig returns the shadow configuration scenes start with:
// shadows off, defaults ready for a single uncascaded map.
//
// Returns:
//   - ShadowConfig: the default configuration
func DefaultShadowConfig() ShadowConfig {
	return ShadowConfig{
		CastShadow:    false,
		Resolution:    ShadowMapResolution,
		CascadeMode:   CascadeModeNone,
		CascadeSplits: [3]float32{0.25, 0.5, 0.75},
		MaxDistance:   DefaultShadowMaxDistance,
		Near:          DefaultShadowNear,
		Far:           DefaultShadowFar,
		HalfExtent:    DefaultShadowHalfExtent,
		Bias:          DefaultShadowBias,
	}
}
