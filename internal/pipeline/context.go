// Package pipeline chains the compile-time stages — tokenize, parse,
// validate, optimize, lower — into one ordered run over a source string.
package pipeline

import (
	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/lexer"
	"github.com/vahlkar/pixmath/internal/lowerer"
	"github.com/vahlkar/pixmath/internal/optimizer"
	"github.com/vahlkar/pixmath/internal/parser"
	"github.com/vahlkar/pixmath/internal/registry"
	"github.com/vahlkar/pixmath/internal/symbols"
	"github.com/vahlkar/pixmath/internal/validator"
)

// Context holds everything passed between stages. A stage either advances
// it or records its error in Err and lets later stages short-circuit.
type Context struct {
	Source      string
	Declarations string

	Catalog  *catalog.Catalog
	Registry registry.Registry
	GenCtx   *catalog.GenContext
	Symbols  *symbols.Table

	LexResult *lexer.Result
	Program   *parser.Program
	Lowered   []lowerer.Program // one per statement, aligned with Program.Statements

	PeepholeEnabled bool

	Err error
}

// NewContext builds a ready-to-run Context. gc.Registry and gc.Cache must
// already be wired to reg and the run's image cache respectively.
func NewContext(source, declarations string, cat *catalog.Catalog, reg registry.Registry, gc *catalog.GenContext) *Context {
	return &Context{
		Source: source, Declarations: declarations,
		Catalog: cat, Registry: reg, GenCtx: gc,
		PeepholeEnabled: true,
	}
}

// Processor is one pipeline stage: any component that can process a
// context and return a modified context.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline runs an ordered sequence of Processors, stopping early once a
// stage has recorded an error so later stages never see a broken Context.
type Pipeline struct {
	stages []Processor
}

// Default returns the fixed compile pipeline of symbol table,
// tokenizer, parser (which folds in its own stage-2 semantic parse and
// generator execution), global-role validator, optimizer, lowerer.
func Default() *Pipeline {
	return New(
		symbolStage{},
		lexStage{},
		parseStage{},
		validateStage{},
		optimizeStage{},
		lowerStage{},
	)
}

func New(stages ...Processor) *Pipeline { return &Pipeline{stages: stages} }

// Run executes every stage in order against ctx, short-circuiting after the
// first stage that records an error.
func (p *Pipeline) Run(ctx *Context) *Context {
	for _, stage := range p.stages {
		if ctx.Err != nil {
			return ctx
		}
		ctx = stage.Process(ctx)
	}
	return ctx
}

func fail(ctx *Context, err error) *Context {
	ctx.Err = err
	return ctx
}

type symbolStage struct{}

func (symbolStage) Process(ctx *Context) *Context {
	table, err := symbols.ParseDeclarations(ctx.Declarations, ctx.Catalog.IsReserved)
	if err != nil {
		return fail(ctx, err)
	}
	if err := table.Resolve(ctx.Registry); err != nil {
		return fail(ctx, err)
	}
	ctx.Symbols = table
	return ctx
}

type lexStage struct{}

func (lexStage) Process(ctx *Context) *Context {
	res, err := lexer.Lex(ctx.Source)
	if err != nil {
		return fail(ctx, err)
	}
	ctx.LexResult = res
	return ctx
}

type parseStage struct{}

func (parseStage) Process(ctx *Context) *Context {
	prog, err := parser.ParseProgram(ctx.LexResult.Statements, ctx.Catalog, ctx.Symbols, ctx.GenCtx)
	if err != nil {
		return fail(ctx, err)
	}
	ctx.Program = prog
	return ctx
}

type validateStage struct{}

func (validateStage) Process(ctx *Context) *Context {
	if err := validator.CheckProgram(ctx.Program, ctx.Symbols); err != nil {
		return fail(ctx, err)
	}
	return ctx
}

type optimizeStage struct{}

func (optimizeStage) Process(ctx *Context) *Context {
	for i, stmt := range ctx.Program.Statements {
		folded, err := optimizer.Fold(stmt.Expr, ctx.Catalog, ctx.PeepholeEnabled)
		if err != nil {
			return fail(ctx, err)
		}
		ctx.Program.Statements[i].Expr = folded
	}
	return ctx
}

type lowerStage struct{}

func (lowerStage) Process(ctx *Context) *Context {
	ctx.Lowered = make([]lowerer.Program, len(ctx.Program.Statements))
	for i, stmt := range ctx.Program.Statements {
		ctx.Lowered[i] = lowerer.Lower(stmt.Expr)
	}
	return ctx
}
