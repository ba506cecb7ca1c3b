package evaluator_test

import (
	"math"
	"testing"

	"github.com/vahlkar/pixmath/internal/cache"
	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/evaluator"
	"github.com/vahlkar/pixmath/internal/imageio"
	"github.com/vahlkar/pixmath/internal/interpolate"
	"github.com/vahlkar/pixmath/internal/lexer"
	"github.com/vahlkar/pixmath/internal/lowerer"
	"github.com/vahlkar/pixmath/internal/parser"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/symbols"
)

func evalSource(t *testing.T, source string, target *rasterimg.Image, x, y int) pixel.Pixel {
	t.Helper()
	cat := catalog.Default()
	symtab, err := symbols.ParseDeclarations("", cat.IsReserved)
	if err != nil {
		t.Fatalf("ParseDeclarations: %v", err)
	}
	named := imageio.NewNamedRegistry()
	named.Add("target", target, true)
	if err := symtab.Resolve(named); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	gc := &catalog.GenContext{Registry: named, Cache: cache.New(), Interp: interpolate.Factory{}}

	lexed, err := lexer.Lex(source)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	prog, err := parser.ParseProgram(lexed.Statements, cat, symtab, gc)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	lowered := lowerer.Lower(prog.Statements[0].Expr)
	tls := pixel.NewTLS(1, 0, symtab.NumVariableSlots())
	stack := evaluator.NewStack(lowerer.MaxStackDepth(lowered))
	p, err := evaluator.Eval(lowered, x, y, tls, named, cat, stack)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	return p
}

func TestEvalArithmetic(t *testing.T) {
	target := rasterimg.New(1, 1, 1)
	testCases := []struct {
		name   string
		source string
		want   float64
	}{
		{"addition", "2+3", 5},
		{"precedence", "2+3*4", 14},
		{"unary_minus", "-5+2", -3},
		{"abs", "abs(-7)", 7},
		{"nested", "(1+2)*(3+4)", 21},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := evalSource(t, tc.source, target, 0, 0)
			if math.Abs(p.Sample(0)-tc.want) > 1e-12 {
				t.Errorf("%s: got %v, want %v", tc.source, p.Sample(0), tc.want)
			}
		})
	}
}

func TestEvalImageSampleOutOfBoundsIsZero(t *testing.T) {
	target := rasterimg.New(2, 2, 1)
	target.Set(0, 0, 0, 0.9)
	p := evalSource(t, "$T", target, 5, 5)
	if p.Sample(0) != 0 {
		t.Errorf("out-of-bounds sample: got %v, want 0", p.Sample(0))
	}
}

func TestEvalComparisonProducesBoolean(t *testing.T) {
	target := rasterimg.New(1, 1, 1)
	testCases := []struct {
		source string
		want   float64
	}{
		{"3>2", 1},
		{"3<2", 0},
		{"3==3", 1},
		{"3!=3", 0},
	}
	for _, tc := range testCases {
		p := evalSource(t, tc.source, target, 0, 0)
		if p.Sample(0) != tc.want {
			t.Errorf("%s: got %v, want %v", tc.source, p.Sample(0), tc.want)
		}
	}
}
