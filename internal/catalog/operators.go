// Package catalog is the fixed, sorted index of operators and built-in
// functions. It is the single source of truth for precedence, arity,
// invariance, and the four per-function contracts (validate, invariance,
// per-pixel eval, invariant eval).
package catalog

// Assoc is operator associativity.
type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
)

// Precedence levels, low to high binding"standard
// arithmetic conventions ... left-to-right tie-breaks except for `^` which
// is right-associative".
const (
	PrecOr = iota
	PrecAnd
	PrecComparison
	PrecBitwiseOr
	PrecBitwiseAnd
	PrecAdditive
	PrecMultiplicative
	PrecPower
	PrecUnary
)

// OperatorInfo describes one infix/prefix operator token.
type OperatorInfo struct {
	Symbol     string
	Precedence int
	Assoc      Assoc
	Canonical  string // the catalog function entry implementing this operator
}

// AllOperators is the single source of truth for operator precedence.
var AllOperators = []OperatorInfo{
	{Symbol: "||", Precedence: PrecOr, Assoc: AssocLeft, Canonical: "op_or"},
	{Symbol: "&&", Precedence: PrecAnd, Assoc: AssocLeft, Canonical: "op_and"},
	{Symbol: "==", Precedence: PrecComparison, Assoc: AssocLeft, Canonical: "op_eq"},
	{Symbol: "!=", Precedence: PrecComparison, Assoc: AssocLeft, Canonical: "op_neq"},
	{Symbol: "<", Precedence: PrecComparison, Assoc: AssocLeft, Canonical: "op_lt"},
	{Symbol: ">", Precedence: PrecComparison, Assoc: AssocLeft, Canonical: "op_gt"},
	{Symbol: "<=", Precedence: PrecComparison, Assoc: AssocLeft, Canonical: "op_le"},
	{Symbol: ">=", Precedence: PrecComparison, Assoc: AssocLeft, Canonical: "op_ge"},
	{Symbol: "|", Precedence: PrecBitwiseOr, Assoc: AssocLeft, Canonical: "op_bor"},
	{Symbol: "&", Precedence: PrecBitwiseAnd, Assoc: AssocLeft, Canonical: "op_band"},
	{Symbol: "+", Precedence: PrecAdditive, Assoc: AssocLeft, Canonical: "op_add"},
	{Symbol: "-", Precedence: PrecAdditive, Assoc: AssocLeft, Canonical: "op_sub"},
	{Symbol: "*", Precedence: PrecMultiplicative, Assoc: AssocLeft, Canonical: "op_mul"},
	{Symbol: "/", Precedence: PrecMultiplicative, Assoc: AssocLeft, Canonical: "op_div"},
	{Symbol: "%", Precedence: PrecMultiplicative, Assoc: AssocLeft, Canonical: "op_mod"},
	{Symbol: "^", Precedence: PrecPower, Assoc: AssocRight, Canonical: "op_pow"},
}

// UnaryOperators are the prefix-only operators: unary minus and logical/
// bitwise not.
var UnaryOperators = map[string]string{
	"-": "op_neg",
	"!": "op_not",
	"~": "op_bnot",
}

// LookupOperator finds operator metadata by its surface symbol.
func LookupOperator(symbol string) (OperatorInfo, bool) {
	for _, op := range AllOperators {
		if op.Symbol == symbol {
			return op, true
		}
	}
	return OperatorInfo{}, false
}
