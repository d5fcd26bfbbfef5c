package parser

import (
	"github.com/funvibe/hetu/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if len(ctx.Errors) > 0 {
		return ctx
	}
	parser := New(ctx.Tokens, ctx)
	ctx.AstRoot = parser.ParseProgram(ctx.Style)

	for _, err := range ctx.Errors {
		if err.File == "" {
			err.File = ctx.FilePath
		}
	}
	return ctx
}
