package lexer

import (
	"fmt"

	"github.com/funvibe/hetu/internal/diagnostics"
	"github.com/funvibe/hetu/internal/pipeline"
	"github.com/funvibe/hetu/internal/token"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	tokens := New(ctx.SourceCode).Tokenize()

	for _, tok := range tokens {
		if tok.Type != token.ILLEGAL {
			continue
		}
		if msg, ok := tok.Literal.(string); ok && msg == "unterminated string" {
			err := diagnostics.NewError(diagnostics.ErrL002, tok, "unterminated string literal")
			err.File = ctx.FilePath
			ctx.Errors = append(ctx.Errors, err)
			continue
		}
		err := diagnostics.NewError(diagnostics.ErrL001, tok,
			fmt.Sprintf("unexpected character '%s'", tok.Lexeme))
		err.File = ctx.FilePath
		ctx.Errors = append(ctx.Errors, err)
	}

	ctx.Tokens = tokens
	return ctx
}
