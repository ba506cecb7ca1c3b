package catalog

import (
	"fmt"

	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/token"
)

// controlEntries covers the two conditional functionals with their peephole
// pair.
func controlEntries() []*Entry {
	return []*Entry{
		{
			Token: "iif", Signature: "iif(cond,a,b)", Description: "Select a if cond is true, else b", Arity: Arity{3, 3},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("iif", Arity{3, 3}, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: allInvariant,
			EvalPixel: func(result *pixel.Pixel, args []pixel.Pixel) error {
				cond, a, b := args[0], args[1], args[2]
				if cond.IsTrue(0) {
					*result = a
				} else {
					*result = b
				}
				return nil
			},
			EvalConst: func(args []*ast.Node) (pixel.Pixel, error) {
				cond, err := literalPixel(args[0])
				if err != nil {
					return pixel.Pixel{}, err
				}
				chosen := args[2]
				if cond.IsTrue(0) {
					chosen = args[1]
				}
				return literalPixel(chosen)
			},
			CanOptimize: func(n *ast.Node) bool {
				cond := n.Args[0]
				return cond.InvariantKnown() && cond.Invariant()
			},
			Optimized: func(n *ast.Node) *ast.Node {
				cond, err := literalPixel(n.Args[0])
				if err != nil {
					return n
				}
				if cond.IsTrue(0) {
					return n.Args[1]
				}
				return n.Args[2]
			},
		},
		{
			// iswitch(cond1, val1, cond2, val2, ..., default): the first true
			// condition's value wins; default covers the fall-through case.
			Token: "iswitch", Signature: "iswitch(cond1,val1,...,default)",
			Description: "First matching (cond,value) pair, or default",
			Arity:       Arity{3, 1 << 20},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if len(args) < 3 || len(args)%2 != 1 {
					return reject(-1, fmt.Sprintf("iswitch: expected an odd number of arguments (pairs plus a default), got %d", len(args)))
				}
				return accept()
			},
			Invariant: allInvariant,
			EvalPixel: func(result *pixel.Pixel, args []pixel.Pixel) error {
				n := len(args)
				for i := 0; i+1 < n-1; i += 2 {
					if args[i].IsTrue(0) {
						*result = args[i+1]
						return nil
					}
				}
				*result = args[n-1]
				return nil
			},
			EvalConst: func(args []*ast.Node) (pixel.Pixel, error) {
				n := len(args)
				for i := 0; i+1 < n-1; i += 2 {
					cond, err := literalPixel(args[i])
					if err != nil {
						return pixel.Pixel{}, err
					}
					if cond.IsTrue(0) {
						return literalPixel(args[i+1])
					}
				}
				return literalPixel(args[n-1])
			},
			CanOptimize: func(n *ast.Node) bool {
				// Only safe to fully collapse once every condition ahead of
				// the first non-invariant one is known; conservatively only
				// fold when ALL conditions are invariant, matching iif.
				for i := 0; i+1 < len(n.Args)-1; i += 2 {
					if !n.Args[i].InvariantKnown() || !n.Args[i].Invariant() {
						return false
					}
				}
				return true
			},
			Optimized: func(n *ast.Node) *ast.Node {
				args := n.Args
				for i := 0; i+1 < len(args)-1; i += 2 {
					cond, err := literalPixel(args[i])
					if err != nil {
						return n
					}
					if cond.IsTrue(0) {
						return args[i+1]
					}
				}
				return args[len(args)-1]
			},
		},
	}
}
