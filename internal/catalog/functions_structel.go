package catalog

import (
	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/token"
)

// structEntry builds a nullary-shaped structuring-element selector such as
// str_square(size). These never appear as a generator's sole argument in
// isolation; morphological generators (erosion, dilation, medfilt) inspect
// the argument node's FuncName directly to pick a structel.Build kind and
// read its size from Args[0], the way generator contracts reach
// past a marker argument instead of evaluating it. A stray standalone use
// still evaluates cleanly to its size, so it is never a dead end.
func structEntry(name string) *Entry {
	return &Entry{
		Token: name, Signature: name + "(size)", Description: "Structuring element selector", Arity: Arity{1, 1},
		Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
			if r := checkArity(name, Arity{1, 1}, args); r != nil {
				return *r
			}
			if r := requireInvariant(name, 0, args); r != nil {
				return *r
			}
			return accept()
		},
		Invariant: alwaysInvariant,
		EvalPixel: func(result *pixel.Pixel, args []pixel.Pixel) error {
			*result = args[0]
			return nil
		},
		EvalConst: func(args []*ast.Node) (pixel.Pixel, error) {
			return literalPixel(args[0])
		},
	}
}

// StructelKind maps a structuring-element marker's canonical token to the
// structel.Build kind name, used by the morphological generators.
func StructelKind(funcName string) (string, bool) {
	switch funcName {
	case "str_square":
		return "square", true
	case "str_circular":
		return "circular", true
	case "str_orthogonal":
		return "orthogonal", true
	case "str_diagonal":
		return "diagonal", true
	case "str_star":
		return "star", true
	case "str_threeway":
		return "three-way", true
	default:
		return "", false
	}
}

func structelEntries() []*Entry {
	return []*Entry{
		structEntry("str_square"),
		structEntry("str_circular"),
		structEntry("str_orthogonal"),
		structEntry("str_diagonal"),
		structEntry("str_star"),
		structEntry("str_threeway"),
	}
}
