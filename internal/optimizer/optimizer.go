// Package optimizer folds invariant subtrees to literals and applies the
// iif/iswitch peephole rewrite before lowering: when enabled, a
// peephole-eligible node with an invariant condition is replaced by its
// chosen branch ahead of lowering, so the lowerer only ever walks an
// already-reduced tree.
package optimizer

import (
	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/diagnostics"
	"github.com/vahlkar/pixmath/internal/pixel"
)

// Fold recursively optimizes n: children first, then peephole, then
// constant folding. peepholeEnabled lets callers (tests, debugging tools)
// disable the rewrite and observe the unreduced tree.
func Fold(n *ast.Node, cat *catalog.Catalog, peepholeEnabled bool) (*ast.Node, error) {
	if n == nil || !n.Kind.IsFunctional() {
		return n, nil
	}

	for i, a := range n.Args {
		folded, err := Fold(a, cat, peepholeEnabled)
		if err != nil {
			return nil, err
		}
		n.Args[i] = folded
	}

	entry, _, _, ok := cat.Lookup(n.FuncName)
	if !ok {
		return nil, diagnostics.Internal(n.Pos, n.FuncName, "optimizer: functional missing its catalog entry")
	}

	if peepholeEnabled && entry.CanOptimize != nil && entry.CanOptimize(n) {
		replacement := entry.Optimized(n)
		return Fold(replacement, cat, peepholeEnabled)
	}

	if n.InvariantKnown() && n.Invariant() && entry.EvalConst != nil {
		value, err := entry.EvalConst(n.Args)
		if err != nil {
			return nil, diagnostics.New(diagnostics.PhaseGenerate, diagnostics.ErrGFailed, n.Pos, n.FuncName, err.Error())
		}
		return literalNode(n, value), nil
	}

	return n, nil
}

func literalNode(n *ast.Node, v pixel.Pixel) *ast.Node {
	if v.Length == 1 {
		return ast.NewSampleLiteral(n.Pos, v.Samples[0])
	}
	return ast.NewPixelLiteral(n.Pos, v)
}
