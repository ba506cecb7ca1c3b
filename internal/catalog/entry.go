package catalog

import (
	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/registry"
	"github.com/vahlkar/pixmath/internal/token"
)

// Arity is a functional's declared argument-count window, inclusive on
// both ends (invariant: "argument count matches its declared
// arity window").
type Arity struct{ Min, Max int }

// Decision is the outcome of an argument validator.
type Decision int

const (
	Accept Decision = iota
	AcceptRewrite
	Reject
)

// ValidateResult is the argument-validator contract output (// "Argument validation contract").
type ValidateResult struct {
	Decision  Decision
	Reason    string
	ArgIndex  int    // offending argument, -1 if none
	Code      string // diagnostics code suffix for the reason, e.g. "arity"
	Rewrite   *ast.Node
}

func accept() ValidateResult { return ValidateResult{Decision: Accept, ArgIndex: -1} }

func reject(argIndex int, reason string) ValidateResult {
	return ValidateResult{Decision: Reject, ArgIndex: argIndex, Reason: reason}
}

func rewriteTo(n *ast.Node) ValidateResult {
	return ValidateResult{Decision: AcceptRewrite, ArgIndex: -1, Rewrite: n}
}

// ValidateFunc is a functional's argument validator.
type ValidateFunc func(pos token.Token, args []*ast.Node) ValidateResult

// InvarianceFunc reports whether a functional is invariant given that its
// arguments' own invariance flags are already known (// "Invariance contract").
type InvarianceFunc func(args []*ast.Node) bool

// EvalPixelFunc is the per-pixel evaluation entry point: result arrives
// pre-assigned the target coordinates and thread state; args holds the
// already-evaluated argument pixels, top-of-stack last (// "Per-pixel evaluation contract").
type EvalPixelFunc func(result *pixel.Pixel, args []pixel.Pixel) error

// EvalConstFunc is the invariant-evaluation entry point used by constant
// folding: same shape as EvalPixelFunc but the arguments are already-folded
// literal nodes rather than stack pixels.
type EvalConstFunc func(args []*ast.Node) (pixel.Pixel, error)

// GenContext is everything a generator needs to materialize an image
// during parsing.
type GenContext struct {
	Registry        registry.Registry
	Cache           ImageCache
	Interp          registry.InterpolatorFactory
	InterpAlgorithm string
	ClampThreshold  float64
}

// GenerateFunc computes a generator's result image and returns the IMAGE_REF
// node that replaces the call site, keyed by a deterministic fingerprint.
type GenerateFunc func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error)

// CanOptimizeFunc reports whether a peephole rewrite applies to this node
// (iif/iswitch collapsing to a chosen branch).
type CanOptimizeFunc func(n *ast.Node) bool

// OptimizedFunc returns the rewritten subtree for a peephole-eligible node.
type OptimizedFunc func(n *ast.Node) *ast.Node

// Entry is one row of the function catalogue.
type Entry struct {
	Token       string // canonical token, case-sensitive
	Aliases     []string
	Signature   string
	Description string
	Arity       Arity

	Validate  ValidateFunc
	Invariant InvarianceFunc
	EvalPixel EvalPixelFunc
	EvalConst EvalConstFunc

	IsGenerator bool
	Generate    GenerateFunc

	CanOptimize CanOptimizeFunc
	Optimized   OptimizedFunc
}

// ImageCache is the narrow view of cache.Cache that catalog needs; cache
// implements it directly since the method signatures already match.
type ImageCache interface {
	GetOrCreate(key string, build func() (registry.Image, error)) (registry.Image, error)
	Get(key string) (registry.Image, bool)
}
