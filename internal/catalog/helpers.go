package catalog

import (
	"fmt"
	"math"

	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/token"
)

// checkArity is the common shape of "exact arity" / "arity window" checks
// every validator starts with.
func checkArity(name string, arity Arity, args []*ast.Node) *ValidateResult {
	if len(args) < arity.Min || len(args) > arity.Max {
		r := reject(-1, fmt.Sprintf("%s: expected between %d and %d argument(s), got %d",
			name, arity.Min, arity.Max, len(args)))
		return &r
	}
	return nil
}

// requireInvariant rejects the validator call unless args[i] is known
// invariant.
func requireInvariant(name string, i int, args []*ast.Node) *ValidateResult {
	if !args[i].InvariantKnown() || !args[i].Invariant() {
		r := reject(i, fmt.Sprintf("%s: argument %d must be invariant", name, i+1))
		return &r
	}
	return nil
}

// requireImageRef rejects the validator call unless args[i] is an
// IMAGE_REF node.
func requireImageRef(name string, i int, args []*ast.Node) *ValidateResult {
	if args[i].Kind != ast.KindImageRef {
		r := reject(i, fmt.Sprintf("%s: argument %d must be an image reference", name, i+1))
		return &r
	}
	return nil
}

// allInvariant is the default InvarianceFunc: a functional is invariant iff
// every argument is.
func allInvariant(args []*ast.Node) bool {
	for _, a := range args {
		if !a.InvariantKnown() || !a.Invariant() {
			return false
		}
	}
	return true
}

// alwaysInvariant marks nullary literal functions unconditionally
// invariant.
func alwaysInvariant(args []*ast.Node) bool { return true }

// broadcastUnary applies f channel-wise, preserving the input's
// monochrome/RGB mode.
func broadcastUnary(f func(float64) float64) EvalPixelFunc {
	return func(result *pixel.Pixel, args []pixel.Pixel) error {
		a := args[0]
		result.Length = a.Length
		for c := 0; c < a.Length; c++ {
			result.Samples[c] = f(a.Samples[c])
		}
		return nil
	}
}

// broadcastBinary combines two arguments channel-wise. If exactly one
// side is a scalar and the other RGB, the scalar broadcasts across all
// three channels.
func broadcastBinary(f func(a, b float64) float64) EvalPixelFunc {
	return func(result *pixel.Pixel, args []pixel.Pixel) error {
		a, b := args[0], args[1]
		length := a.Length
		if b.Length > length {
			length = b.Length
		}
		result.Length = length
		for c := 0; c < length; c++ {
			result.Samples[c] = f(a.Sample(c), b.Sample(c))
		}
		return nil
	}
}

// foldConstUnary evaluates a unary function at constant-fold time using the
// same per-pixel entry point: invariant subtrees never need RNG or
// coordinates.
func foldConstUnary(entryEval EvalPixelFunc) EvalConstFunc {
	return func(args []*ast.Node) (pixel.Pixel, error) {
		a, err := literalPixel(args[0])
		if err != nil {
			return pixel.Pixel{}, err
		}
		var result pixel.Pixel
		if err := entryEval(&result, []pixel.Pixel{a}); err != nil {
			return pixel.Pixel{}, err
		}
		return result, nil
	}
}

func foldConstBinary(entryEval EvalPixelFunc) EvalConstFunc {
	return func(args []*ast.Node) (pixel.Pixel, error) {
		a, err := literalPixel(args[0])
		if err != nil {
			return pixel.Pixel{}, err
		}
		b, err := literalPixel(args[1])
		if err != nil {
			return pixel.Pixel{}, err
		}
		var result pixel.Pixel
		if err := entryEval(&result, []pixel.Pixel{a, b}); err != nil {
			return pixel.Pixel{}, err
		}
		return result, nil
	}
}

// literalPixel extracts the folded value from a SAMPLE_LITERAL or
// PIXEL_LITERAL node, as produced by an earlier constant-folding pass.
func literalPixel(n *ast.Node) (pixel.Pixel, error) {
	switch n.Kind {
	case ast.KindSampleLiteral:
		return pixel.NewScalar(0, 0, n.SampleValue, nil), nil
	case ast.KindPixelLiteral:
		return n.PixelValue, nil
	default:
		return pixel.Pixel{}, fmt.Errorf("catalog: expected a folded literal, got non-literal node kind %v", n.Kind)
	}
}

// nodeFromPixel builds the literal AST node a fold or generator result
// becomes (sample literal for monochrome, pixel literal for RGB).
func nodeFromPixel(pos token.Token, p pixel.Pixel) *ast.Node {
	if p.Length == 1 {
		return ast.NewSampleLiteral(pos, p.Samples[0])
	}
	return ast.NewPixelLiteral(pos, p)
}

func isNaN(v float64) bool { return math.IsNaN(v) }
