package render

// PipelineBuilderOption is a function that configures a pipeline during
// construction.
type PipelineBuilderOption func(*pipelineImpl)

// WithShadowCasterPass is an option builder that installs the shadow
// caster pass the pipeline runs at the start of every frame. Without one
// the scene renders unshadowed.
//
// Parameters:
//   - pass: the shadow caster pass
//
// Returns:
//   - PipelineBuilderOption: a function that applies the shadow option to a pipelineImpl
func WithShadowCasterPass(pass *ShadowCasterPass) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		p.shadow = pass
	}
}

// WithPasses is an option builder that adds extra passes at construction
// time, after the built-in default pass.
//
// Parameters:
//   - passes: the passes to add
//
// Returns:
//   - PipelineBuilderOption: a function that applies the passes option to a pipelineImpl
func WithPasses(passes ...Pass) PipelineBuilderOption {
	return func(p *pipelineImpl) {
		for _, pass := range passes {
			p.AddPass(pass)
		}
	}
}
