package optimizer_test

import (
	"math"
	"testing"

	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/cache"
	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/imageio"
	"github.com/vahlkar/pixmath/internal/interpolate"
	"github.com/vahlkar/pixmath/internal/lexer"
	"github.com/vahlkar/pixmath/internal/optimizer"
	"github.com/vahlkar/pixmath/internal/parser"
	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/symbols"
)

func parseExpr(t *testing.T, source string) (*ast.Node, *catalog.Catalog) {
	t.Helper()
	cat := catalog.Default()
	symtab, err := symbols.ParseDeclarations("", cat.IsReserved)
	if err != nil {
		t.Fatalf("ParseDeclarations: %v", err)
	}
	named := imageio.NewNamedRegistry()
	named.Add("target", rasterimg.New(1, 1, 1), true)
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
	return prog.Statements[0].Expr, cat
}

func TestFoldInvariantSubtree(t *testing.T) {
	expr, cat := parseExpr(t, "sin(pi()/4) + 0")
	folded, err := optimizer.Fold(expr, cat, true)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if folded.Kind != ast.KindSampleLiteral {
		t.Fatalf("expected a folded literal, got node kind %v", folded.Kind)
	}
	want := math.Sin(math.Pi / 4)
	if math.Abs(folded.SampleValue-want) > 1e-12 {
		t.Errorf("got %v, want %v", folded.SampleValue, want)
	}
}

func TestPeepholeCollapsesIifToChosenBranch(t *testing.T) {
	expr, cat := parseExpr(t, "iif(1>0, 0.9, 0.1)")
	folded, err := optimizer.Fold(expr, cat, true)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if folded.Kind != ast.KindSampleLiteral || folded.SampleValue != 0.9 {
		t.Fatalf("expected folded literal 0.9, got kind %v value %v", folded.Kind, folded.SampleValue)
	}
}

func TestPeepholeDisabledLeavesIifIntact(t *testing.T) {
	expr, cat := parseExpr(t, "iif(1>0, 0.9, 0.1)")
	folded, err := optimizer.Fold(expr, cat, false)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	// Peephole is off, but the whole expression is still invariant, so the
	// ordinary constant-fold path reduces it to the same literal value.
	if folded.Kind != ast.KindSampleLiteral || folded.SampleValue != 0.9 {
		t.Fatalf("expected the invariant fold to still collapse to 0.9, got kind %v value %v", folded.Kind, folded.SampleValue)
	}
}

func TestNonInvariantExpressionIsNotFolded(t *testing.T) {
	expr, cat := parseExpr(t, "abs($T)")
	folded, err := optimizer.Fold(expr, cat, true)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if folded.Kind == ast.KindSampleLiteral {
		t.Fatal("an expression depending on the target image should not fold to a constant")
	}
}
