package pipeline_test

import (
	"math"
	"testing"

	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/cache"
	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/evaluator"
	"github.com/vahlkar/pixmath/internal/imageio"
	"github.com/vahlkar/pixmath/internal/interpolate"
	"github.com/vahlkar/pixmath/internal/lowerer"
	"github.com/vahlkar/pixmath/internal/pipeline"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/runner"
)

// compile runs the full compile-time pipeline for source against a target
// image, with no extra symbol declarations.
func compile(t *testing.T, source string, target *rasterimg.Image) *pipeline.Context {
	t.Helper()
	named := imageio.NewNamedRegistry()
	if target != nil {
		named.Add("target", target, true)
	}
	imgCache := cache.New()
	reg := runner.NewCompositeRegistry(named, imgCache)
	gc := &catalog.GenContext{
		Registry: reg,
		Cache:    imgCache,
		Interp:   interpolate.Factory{},
	}
	ctx := pipeline.NewContext(source, "", catalog.Default(), reg, gc)
	return pipeline.Default().Run(ctx)
}

// evalAt evaluates the first statement's lowered program at one pixel,
// using a fresh TLS with no variable cells.
func evalAt(t *testing.T, ctx *pipeline.Context, x, y int) pixel.Pixel {
	t.Helper()
	prog := ctx.Lowered[0]
	tls := pixel.NewTLS(1, 0, ctx.Symbols.NumVariableSlots())
	stack := evaluator.NewStack(lowerer.MaxStackDepth(prog))
	p, err := evaluator.Eval(prog, x, y, tls, ctx.Registry, ctx.Catalog, stack)
	if err != nil {
		t.Fatalf("Eval: unexpected error: %v", err)
	}
	return p
}

func TestLiteralScalar(t *testing.T) {
	target := rasterimg.New(4, 1, 1)
	ctx := compile(t, "0.5", target)
	if ctx.Err != nil {
		t.Fatalf("compile: %v", ctx.Err)
	}
	for x := 0; x < 4; x++ {
		p := evalAt(t, ctx, x, 0)
		if p.Sample(0) != 0.5 {
			t.Errorf("pixel (%d,0): got %v, want 0.5", x, p.Sample(0))
		}
	}
}

func TestImageIdentityWithMetasymbol(t *testing.T) {
	target := rasterimg.New(3, 2, 1)
	samples := [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}
	for y, row := range samples {
		for x, v := range row {
			target.Set(x, y, 0, v)
		}
	}
	ctx := compile(t, "$T", target)
	if ctx.Err != nil {
		t.Fatalf("compile: %v", ctx.Err)
	}
	for y, row := range samples {
		for x, want := range row {
			p := evalAt(t, ctx, x, y)
			if got := p.Sample(0); math.Abs(got-want) > 1e-12 {
				t.Errorf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestAbsPerPixel(t *testing.T) {
	target := rasterimg.New(1, 1, 1)
	target.Set(0, 0, 0, 0.25)
	ctx := compile(t, "abs($T-0.5)", target)
	if ctx.Err != nil {
		t.Fatalf("compile: %v", ctx.Err)
	}
	p := evalAt(t, ctx, 0, 0)
	if got := p.Sample(0); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("got %v, want 0.25", got)
	}
}

func TestInlineIfConstantFold(t *testing.T) {
	target := rasterimg.New(2, 1, 1)
	ctx := compile(t, "iif(1>0, 0.9, 0.1)", target)
	if ctx.Err != nil {
		t.Fatalf("compile: %v", ctx.Err)
	}
	stmt := ctx.Program.Statements[0]
	if stmt.Expr.Kind != ast.KindSampleLiteral {
		t.Fatalf("expected the iif to fold to a literal, got node kind %v", stmt.Expr.Kind)
	}
	for x := 0; x < 2; x++ {
		p := evalAt(t, ctx, x, 0)
		if p.Sample(0) != 0.9 {
			t.Errorf("pixel (%d,0): got %v, want 0.9", x, p.Sample(0))
		}
	}
}

func TestInvariantSubexpressionFolds(t *testing.T) {
	ctx := compile(t, "sin(pi()/4) + 0", nil)
	if ctx.Err != nil {
		t.Fatalf("compile: %v", ctx.Err)
	}
	stmt := ctx.Program.Statements[0]
	if stmt.Expr.Kind != ast.KindSampleLiteral {
		t.Fatalf("expected full constant fold, got node kind %v", stmt.Expr.Kind)
	}
	want := math.Sin(math.Pi / 4)
	if got := stmt.Expr.SampleValue; math.Abs(got-want) > 1e-12 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRejectWrongArity(t *testing.T) {
	ctx := compile(t, "atan(1,2,3)", nil)
	if ctx.Err == nil {
		t.Fatal("expected a parse error for atan/3, got none")
	}
	msg := ctx.Err.Error()
	if !contains(msg, "atan") {
		t.Errorf("error %q does not name the offending functional", msg)
	}
}

func TestKconvIdentityKernel(t *testing.T) {
	target := rasterimg.New(2, 2, 1)
	target.Set(0, 0, 0, 0.1)
	target.Set(1, 0, 0, 0.2)
	target.Set(0, 1, 0, 0.3)
	target.Set(1, 1, 0, 0.4)
	ctx := compile(t, "kconv($T,0,0,0, 0,1,0, 0,0,0) - $T", target)
	if ctx.Err != nil {
		t.Fatalf("compile: %v", ctx.Err)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			p := evalAt(t, ctx, x, y)
			if got := p.Sample(0); math.Abs(got) > 1e-12 {
				t.Errorf("pixel (%d,%d): got %v, want 0 (identity kernel)", x, y, got)
			}
		}
	}
}

func TestKconvRejectsNonSquareArgCount(t *testing.T) {
	ctx := compile(t, "kconv($T,1,2,3,4,5,6,7,8,9,10,11,12)", rasterimg.New(1, 1, 1))
	if ctx.Err == nil {
		t.Fatal("expected an error for a kernel-element count that isn't a perfect odd square, got none")
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
