package validator

import (
	"testing"

	"github.com/vahlkar/pixmath/internal/cache"
	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/imageio"
	"github.com/vahlkar/pixmath/internal/interpolate"
	"github.com/vahlkar/pixmath/internal/lexer"
	"github.com/vahlkar/pixmath/internal/parser"
	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/symbols"
)

func parseWithGlobal(t *testing.T, source string) (*parser.Program, *symbols.Table) {
	t.Helper()
	cat := catalog.Default()
	symtab, err := symbols.ParseDeclarations("s=global(+,0), x", cat.IsReserved)
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
	return prog, symtab
}

func TestRejectsGlobalReadAsRvalue(t *testing.T) {
	prog, symtab := parseWithGlobal(t, "x = s + 1")
	if err := CheckProgram(prog, symtab); err == nil {
		t.Fatal("expected an error reading a global variable as an rvalue, got none")
	}
}

func TestAllowsGlobalAsAssignmentTarget(t *testing.T) {
	prog, symtab := parseWithGlobal(t, "s = $T")
	if err := CheckProgram(prog, symtab); err != nil {
		t.Fatalf("assigning to a global should be legal, got: %v", err)
	}
}

func TestAllowsOrdinaryVariableRead(t *testing.T) {
	cat := catalog.Default()
	symtab, err := symbols.ParseDeclarations("k=init(3)", cat.IsReserved)
	if err != nil {
		t.Fatalf("ParseDeclarations: %v", err)
	}
	named := imageio.NewNamedRegistry()
	named.Add("target", rasterimg.New(1, 1, 1), true)
	if err := symtab.Resolve(named); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	gc := &catalog.GenContext{Registry: named, Cache: cache.New(), Interp: interpolate.Factory{}}

	lexed, err := lexer.Lex("k = k + 1")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	prog, err := parser.ParseProgram(lexed.Statements, cat, symtab, gc)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	if err := CheckProgram(prog, symtab); err != nil {
		t.Fatalf("reading an ordinary variable should be legal, got: %v", err)
	}
}
