package catalog

import (
	"math"

	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/token"
)

func unary(name string, aliases []string, sig, desc string, f func(float64) float64) *Entry {
	eval := broadcastUnary(f)
	return &Entry{
		Token: name, Aliases: aliases, Signature: sig, Description: desc, Arity: Arity{1, 1},
		Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
			if r := checkArity(name, Arity{1, 1}, args); r != nil {
				return *r
			}
			return accept()
		},
		Invariant: allInvariant,
		EvalPixel: eval,
		EvalConst: foldConstUnary(eval),
	}
}

func nullaryConst(name, sig, desc string, v float64) *Entry {
	return &Entry{
		Token: name, Signature: sig, Description: desc, Arity: Arity{0, 0},
		Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
			if r := checkArity(name, Arity{0, 0}, args); r != nil {
				return *r
			}
			return accept()
		},
		Invariant: alwaysInvariant,
		EvalPixel: func(result *pixel.Pixel, args []pixel.Pixel) error {
			result.Length = 1
			result.Samples[0] = v
			return nil
		},
		EvalConst: func(args []*ast.Node) (pixel.Pixel, error) {
			return pixel.NewScalar(0, 0, v, nil), nil
		},
	}
}

// mathEntries covers scalar math functions: abs, sign,
// rounding, powers/roots, logarithms, trigonometry, hyperbolics, and the
// nullary constants pi()/e() (all unconditionally invariant).
func mathEntries() []*Entry {
	entries := []*Entry{
		unary("abs", nil, "abs(x)", "Absolute value", math.Abs),
		unary("sign", nil, "sign(x)", "Sign: -1, 0, or 1", func(x float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			default:
				return 0
			}
		}),
		unary("sqrt", nil, "sqrt(x)", "Square root", math.Sqrt),
		unary("exp", nil, "exp(x)", "e^x", math.Exp),
		unary("ln", nil, "ln(x)", "Natural logarithm", math.Log),
		unary("log", []string{"log10"}, "log(x)", "Base-10 logarithm", math.Log10),
		unary("log2", nil, "log2(x)", "Base-2 logarithm", math.Log2),
		unary("floor", nil, "floor(x)", "Round towards negative infinity", math.Floor),
		unary("ceil", nil, "ceil(x)", "Round towards positive infinity", math.Ceil),
		unary("round", nil, "round(x)", "Round to nearest integer", math.Round),
		unary("trunc", nil, "trunc(x)", "Round towards zero", math.Trunc),
		unary("frac", nil, "frac(x)", "Fractional part", func(x float64) float64 { return x - math.Trunc(x) }),

		unary("sin", []string{"Sin"}, "sin(x)", "Sine, radians", math.Sin),
		unary("cos", []string{"Cos"}, "cos(x)", "Cosine, radians", math.Cos),
		unary("tan", []string{"Tan"}, "tan(x)", "Tangent, radians", math.Tan),
		unary("asin", []string{"ArcSin"}, "asin(x)", "Arcsine, radians", math.Asin),
		unary("acos", []string{"ArcCos"}, "acos(x)", "Arccosine, radians", math.Acos),
		unary("atan", []string{"ArcTan"}, "atan(x)", "Arctangent, radians", math.Atan),
		unary("sind", nil, "sind(x)", "Sine, degrees", func(x float64) float64 { return math.Sin(x * math.Pi / 180) }),
		unary("cosd", nil, "cosd(x)", "Cosine, degrees", func(x float64) float64 { return math.Cos(x * math.Pi / 180) }),
		unary("tand", nil, "tand(x)", "Tangent, degrees", func(x float64) float64 { return math.Tan(x * math.Pi / 180) }),
		unary("asind", nil, "asind(x)", "Arcsine, degrees", func(x float64) float64 { return math.Asin(x) * 180 / math.Pi }),
		unary("acosd", nil, "acosd(x)", "Arccosine, degrees", func(x float64) float64 { return math.Acos(x) * 180 / math.Pi }),
		unary("atand", nil, "atand(x)", "Arctangent, degrees", func(x float64) float64 { return math.Atan(x) * 180 / math.Pi }),

		unary("sinh", []string{"Sinh"}, "sinh(x)", "Hyperbolic sine", math.Sinh),
		unary("cosh", []string{"Cosh"}, "cosh(x)", "Hyperbolic cosine", math.Cosh),
		unary("tanh", []string{"Tanh"}, "tanh(x)", "Hyperbolic tangent", math.Tanh),
		unary("asinh", []string{"ArcSinh"}, "asinh(x)", "Inverse hyperbolic sine", math.Asinh),
		unary("acosh", []string{"ArcCosh"}, "acosh(x)", "Inverse hyperbolic cosine", math.Acosh),
		unary("atanh", []string{"ArcTanh"}, "atanh(x)", "Inverse hyperbolic tangent", math.Atanh),

		nullaryConst("pi", "pi()", "The constant pi", math.Pi),
		nullaryConst("e", "e()", "Euler's number", math.E),

		{
			Token: "mod", Signature: "mod(a,b)", Description: "Floating point remainder", Arity: Arity{2, 2},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("mod", Arity{2, 2}, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: allInvariant,
			EvalPixel: broadcastBinary(math.Mod),
			EvalConst: foldConstBinary(broadcastBinary(math.Mod)),
		},
		{
			Token: "atan2", Signature: "atan2(y,x)", Description: "Two-argument arctangent, radians", Arity: Arity{2, 2},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("atan2", Arity{2, 2}, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: allInvariant,
			EvalPixel: broadcastBinary(math.Atan2),
			EvalConst: foldConstBinary(broadcastBinary(math.Atan2)),
		},
		{
			Token: "pow", Signature: "pow(base,exp)", Description: "Power", Arity: Arity{2, 2},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("pow", Arity{2, 2}, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: allInvariant,
			EvalPixel: broadcastBinary(math.Pow),
			EvalConst: foldConstBinary(broadcastBinary(math.Pow)),
		},
		{
			Token: "range", Signature: "range(x,lo,hi)", Description: "Clamp x into [lo,hi]", Arity: Arity{3, 3},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("range", Arity{3, 3}, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: allInvariant,
			EvalPixel: func(result *pixel.Pixel, args []pixel.Pixel) error {
				x, lo, hi := args[0], args[1], args[2]
				result.Length = x.Length
				for c := 0; c < x.Length; c++ {
					v, l, h := x.Sample(c), lo.Sample(c), hi.Sample(c)
					if v < l {
						v = l
					} else if v > h {
						v = h
					}
					result.Samples[c] = v
				}
				return nil
			},
		},
		{
			Token: "rescale", Signature: "rescale(x,lo,hi)", Description: "Linearly rescale [lo,hi] to [0,1], clamped", Arity: Arity{3, 3},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("rescale", Arity{3, 3}, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: allInvariant,
			EvalPixel: func(result *pixel.Pixel, args []pixel.Pixel) error {
				x, lo, hi := args[0], args[1], args[2]
				result.Length = x.Length
				for c := 0; c < x.Length; c++ {
					v, l, h := x.Sample(c), lo.Sample(c), hi.Sample(c)
					span := h - l
					var r float64
					if span != 0 {
						r = (v - l) / span
					}
					if r < 0 {
						r = 0
					} else if r > 1 {
						r = 1
					}
					result.Samples[c] = r
				}
				return nil
			},
		},
		{
			Token: "mtf", Signature: "mtf(m,x)", Description: "Midtones transfer function", Arity: Arity{2, 2},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("mtf", Arity{2, 2}, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: allInvariant,
			EvalPixel: broadcastBinary(midtonesTransfer),
			EvalConst: foldConstBinary(broadcastBinary(midtonesTransfer)),
		},
		{
			Token: "gauss", Signature: "gauss(x,sigma)", Description: "Gaussian function centered at 0", Arity: Arity{1, 2},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("gauss", Arity{1, 2}, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: allInvariant,
			EvalPixel: func(result *pixel.Pixel, args []pixel.Pixel) error {
				sigma := 1.0
				if len(args) == 2 {
					sigma = args[1].Sample(0)
				}
				x := args[0]
				result.Length = x.Length
				for c := 0; c < x.Length; c++ {
					v := x.Sample(c)
					result.Samples[c] = math.Exp(-(v * v) / (2 * sigma * sigma))
				}
				return nil
			},
		},
		{
			Token: "poisson", Signature: "poisson(lambda)", Description: "Poisson-distributed random sample", Arity: Arity{1, 1},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("poisson", Arity{1, 1}, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: func(args []*ast.Node) bool { return false }, // depends on thread RNG
			EvalPixel: func(result *pixel.Pixel, args []pixel.Pixel) error {
				lambda := args[0].Sample(0)
				tls := args[0].TLS
				result.Length = 1
				result.Samples[0] = poissonSample(tls, lambda)
				return nil
			},
		},
	}
	return entries
}

// midtonesTransfer is PixInsight's standard midtones balance curve.
func midtonesTransfer(m, x float64) float64 {
	switch {
	case x == 0:
		return 0
	case x == m:
		return 0.5
	case x == 1:
		return 1
	default:
		return ((m - 1) * x) / ((2*m-1)*x - m)
	}
}

func poissonSample(tls *pixel.TLS, lambda float64) float64 {
	if tls == nil || tls.RNG == nil || lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0.0
	p := 1.0
	for {
		k++
		p *= tls.RNG.Float64()
		if p <= l {
			break
		}
	}
	return k - 1
}
