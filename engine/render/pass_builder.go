package render

import (
	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/material"
)

// PassBuilderOption is a function that configures a render pass during
// construction.
type PassBuilderOption func(*passImpl)

// WithPriority is an option builder that sets the pass's scheduling
// priority. Lower priorities run earlier; passes sharing a priority run in
// insertion order.
//
// Parameters:
//   - priority: the priority value
//
// Returns:
//   - PassBuilderOption: a function that applies the priority option to a passImpl
func WithPriority(priority int) PassBuilderOption {
	return func(p *passImpl) {
		p.priority = priority
	}
}

// WithPassEnabled is an option builder that sets the pass's initial enabled
// state.
//
// Parameters:
//   - enabled: the initial state
//
// Returns:
//   - PassBuilderOption: a function that applies the enabled option to a passImpl
func WithPassEnabled(enabled bool) PassBuilderOption {
	return func(p *passImpl) {
		p.enabled = enabled
	}
}

// WithPassRenderTarget is an option builder that redirects the pass's
// output to its own target instead of the camera's.
//
// Parameters:
//   - target: the target to draw into
//
// Returns:
//   - PassBuilderOption: a function that applies the target option to a passImpl
func WithPassRenderTarget(target *common.RenderTarget) PassBuilderOption {
	return func(p *passImpl) {
		p.target = target
	}
}

// WithReplacementMaterial is an option builder that substitutes one
// material for every element the pass draws.
//
// Parameters:
//   - mat: the replacement material
//
// Returns:
//   - PassBuilderOption: a function that applies the replacement option to a passImpl
func WithReplacementMaterial(mat material.Material) PassBuilderOption {
	return func(p *passImpl) {
		p.replacement = mat
	}
}

// WithPassMask is an option builder that narrows the set of layers the
// pass draws. The mask is combined with the camera's culling mask.
//
// Parameters:
//   - mask: the layer mask
//
// Returns:
//   - PassBuilderOption: a function that applies the mask option to a passImpl
func WithPassMask(mask common.Layer) PassBuilderOption {
	return func(p *passImpl) {
		p.mask = mask
	}
}

// WithPassClearFlags is an option builder that overrides the camera's clear
// flags for the duration of the pass.
//
// Parameters:
//   - flags: the clear flags to use
//
// Returns:
//   - PassBuilderOption: a function that applies the clear option to a passImpl
func WithPassClearFlags(flags common.ClearFlag) PassBuilderOption {
	return func(p *passImpl) {
		f := flags
		p.clearFlags = &f
	}
}

// WithPassClearColor is an option builder that overrides the camera's clear
// color for the duration of the pass.
//
// Parameters:
//   - col: the clear color to use
//
// Returns:
//   - PassBuilderOption: a function that applies the color option to a passImpl
func WithPassClearColor(col common.Color) PassBuilderOption {
	return func(p *passImpl) {
		c := col
		p.clearColor = &c
	}
}

// WithRenderOverride is an option builder that replaces the pass's default
// queue traversal with a custom render function.
//
// Parameters:
//   - fn: the replacement render function
//
// Returns:
//   - PassBuilderOption: a function that applies the override option to a passImpl
func WithRenderOverride(fn PassRenderFunc) PassBuilderOption {
	return func(p *passImpl) {
		p.renderOverride = fn
	}
}

// WithPreRenderHook is an option builder that installs a hook running
// before the pass's Render step.
//
// Parameters:
//   - fn: the hook function
//
// Returns:
//   - PassBuilderOption: a function that applies the hook option to a passImpl
func WithPreRenderHook(fn PassHookFunc) PassBuilderOption {
	return func(p *passImpl) {
		p.preHook = fn
	}
}

// WithPostRenderHook is an option builder that installs a hook running
// after the pass's Render step.
//
// Parameters:
//   - fn: the hook function
//
// Returns:
//   - PassBuilderOption: a function that applies the hook option to a passImpl
func WithPostRenderHook(fn PassHookFunc) PassBuilderOption {
	return func(p *passImpl) {
		p.postHook = fn
	}
}
