package resolver

import (
	"github.com/funvibe/hetu/internal/pipeline"
)

type ResolverProcessor struct{}

func (rp *ResolverProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		return ctx
	}
	ctx.Distances = New(ctx).Resolve(ctx.AstRoot)
	return ctx
}
