package pipeline

import (
	"github.com/funvibe/hetu/internal/ast"
	"github.com/funvibe/hetu/internal/diagnostics"
	"github.com/funvibe/hetu/internal/token"
)

// ParseStyle gates which statements are legal at the top level of a unit.
type ParseStyle int

const (
	StyleLibrary ParseStyle = iota
	StyleFunction
	StyleClass
)

// PipelineContext carries one compilation unit through lex, parse and resolve.
type PipelineContext struct {
	SourceCode string
	FilePath   string
	Style      ParseStyle

	Tokens    []token.Token
	AstRoot   *ast.Program
	Constants *ast.ConstTable
	Distances map[ast.Expression]int

	Errors []*diagnostics.DiagnosticError
}

func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{
		SourceCode: source,
		Constants:  ast.NewConstTable(),
		Distances:  make(map[ast.Expression]int),
	}
}

// Processor is one stage of the compilation pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Every stage is called in order, but the parser
// and resolver stages do nothing once an earlier stage has recorded an error,
// so the diagnostics come from the first stage that failed.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
