// Package validator implements the global-variable role check: after
// parsing, every reference to a global variable must be the lvalue of its
// own assignment statement (combined through its declared reduction
// operator); reading a global as an ordinary rvalue is forbidden.
package validator

import (
	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/diagnostics"
	"github.com/vahlkar/pixmath/internal/parser"
	"github.com/vahlkar/pixmath/internal/symbols"
)

// CheckProgram walks every statement's expression tree and reports the
// first illegal global-variable read it finds.
func CheckProgram(prog *parser.Program, symtab *symbols.Table) error {
	for _, stmt := range prog.Statements {
		if err := checkRvalue(stmt.Expr, symtab); err != nil {
			return err
		}
	}
	return nil
}

func checkRvalue(n *ast.Node, symtab *symbols.Table) error {
	if n == nil {
		return nil
	}
	if n.Kind == ast.KindVarRef {
		if sym, ok := symtab.Lookup(n.VarName); ok && sym.Kind == symbols.KindGlobal {
			return diagnostics.New(diagnostics.PhaseValidate, diagnostics.ErrVGlobalRole, n.Pos, n.VarName, "rvalue")
		}
	}
	for _, a := range n.Args {
		if err := checkRvalue(a, symtab); err != nil {
			return err
		}
	}
	return nil
}
