package catalog

import (
	"math"

	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/token"
)

func boolToSample(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func binaryOpEntry(token_ string, arity Arity, f func(a, b float64) float64) *Entry {
	eval := broadcastBinary(f)
	return &Entry{
		Token: token_, Arity: arity,
		Validate:  func(pos token.Token, args []*ast.Node) ValidateResult {
			if r := checkArity(token_, arity, args); r != nil {
				return *r
			}
			return accept()
		},
		Invariant: allInvariant,
		EvalPixel: eval,
		EvalConst: foldConstBinary(eval),
	}
}

func unaryOpEntry(token_ string, f func(a float64) float64) *Entry {
	eval := broadcastUnary(f)
	return &Entry{
		Token: token_, Arity: Arity{1, 1},
		Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
			if r := checkArity(token_, Arity{1, 1}, args); r != nil {
				return *r
			}
			return accept()
		},
		Invariant: allInvariant,
		EvalPixel: eval,
		EvalConst: foldConstUnary(eval),
	}
}

// operatorEntries wires every binary/unary arithmetic, comparison, and
// logical token to its op_* catalog entry.
func operatorEntries() []*Entry {
	nanPropagatingDiv := func(a, b float64) float64 {
		if b == 0 {
			return math.NaN()
		}
		return a / b
	}
	cmp := func(f func(a, b float64) bool) func(a, b float64) float64 {
		return func(a, b float64) float64 {
			if isNaN(a) || isNaN(b) {
				return 0 // "comparisons against NaN return false"
			}
			return boolToSample(f(a, b))
		}
	}
	logical := func(f func(a, b bool) bool) func(a, b float64) float64 {
		return func(a, b float64) float64 { return boolToSample(f(a != 0, b != 0)) }
	}

	return []*Entry{
		binaryOpEntry("op_add", Arity{2, 2}, func(a, b float64) float64 { return a + b }),
		binaryOpEntry("op_sub", Arity{2, 2}, func(a, b float64) float64 { return a - b }),
		binaryOpEntry("op_mul", Arity{2, 2}, func(a, b float64) float64 { return a * b }),
		binaryOpEntry("op_div", Arity{2, 2}, nanPropagatingDiv),
		binaryOpEntry("op_mod", Arity{2, 2}, math.Mod),
		binaryOpEntry("op_pow", Arity{2, 2}, math.Pow),
		binaryOpEntry("op_eq", Arity{2, 2}, cmp(func(a, b float64) bool { return a == b })),
		binaryOpEntry("op_neq", Arity{2, 2}, cmp(func(a, b float64) bool { return a != b })),
		binaryOpEntry("op_lt", Arity{2, 2}, cmp(func(a, b float64) bool { return a < b })),
		binaryOpEntry("op_gt", Arity{2, 2}, cmp(func(a, b float64) bool { return a > b })),
		binaryOpEntry("op_le", Arity{2, 2}, cmp(func(a, b float64) bool { return a <= b })),
		binaryOpEntry("op_ge", Arity{2, 2}, cmp(func(a, b float64) bool { return a >= b })),
		binaryOpEntry("op_and", Arity{2, 2}, logical(func(a, b bool) bool { return a && b })),
		binaryOpEntry("op_or", Arity{2, 2}, logical(func(a, b bool) bool { return a || b })),
		binaryOpEntry("op_band", Arity{2, 2}, func(a, b float64) float64 { return float64(int64(a) & int64(b)) }),
		binaryOpEntry("op_bor", Arity{2, 2}, func(a, b float64) float64 { return float64(int64(a) | int64(b)) }),

		unaryOpEntry("op_neg", func(a float64) float64 { return -a }),
		unaryOpEntry("op_not", func(a float64) float64 { return boolToSample(a == 0) }),
		unaryOpEntry("op_bnot", func(a float64) float64 { return float64(^int64(a)) }),
	}
}
