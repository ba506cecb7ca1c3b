package catalog

import (
	"fmt"
	"math"

	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/cache"
	"github.com/vahlkar/pixmath/internal/kernel"
	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/registry"
	"github.com/vahlkar/pixmath/internal/structel"
	"github.com/vahlkar/pixmath/internal/token"
)

// materialize caches build's result under a deterministic fingerprint and
// rewrites the call site to the IMAGE_REF that names it (// "Generators ... stores it in the image cache under a deterministic
// fingerprint ... rewrites the call site to an image reference").
func materialize(pos token.Token, gc *GenContext, fn, sourceImageID string, params []interface{}, build func() (registry.Image, error)) (*ast.Node, error) {
	key := cache.Fingerprint(fn, sourceImageID, params...)
	if _, err := gc.Cache.GetOrCreate(key, build); err != nil {
		return nil, err
	}
	return ast.NewImageRef(pos, key, 0, false), nil
}

func intArg(n *ast.Node) (int, error) {
	p, err := literalPixel(n)
	if err != nil {
		return 0, err
	}
	return int(p.Sample(0)), nil
}

func floatArg(n *ast.Node) (float64, error) {
	p, err := literalPixel(n)
	if err != nil {
		return 0, err
	}
	return p.Sample(0), nil
}

// oddSquareRoot reports whether n is a perfect square of an odd integer
// >= 3 (9, 25, 49, ...), returning that integer (the kernel's side length).
func oddSquareRoot(n int) (int, bool) {
	if n < 9 {
		return 0, false
	}
	size := int(math.Sqrt(float64(n)))
	for s := size - 1; s <= size+1; s++ {
		if s >= 3 && s%2 == 1 && s*s == n {
			return s, true
		}
	}
	return 0, false
}

// structelArg resolves a morphological generator's structuring-element
// argument: a str_* marker call whose Args[0] carries the invariant size.
func structelArg(n *ast.Node) (structel.Mask, error) {
	if !n.Kind.IsFunctional() {
		return structel.Mask{}, fmt.Errorf("catalog: expected a structuring-element selector, got a data node")
	}
	kindName, ok := StructelKind(n.FuncName)
	if !ok {
		return structel.Mask{}, fmt.Errorf("catalog: %q is not a structuring-element selector", n.FuncName)
	}
	size, err := intArg(n.Args[0])
	if err != nil {
		return structel.Mask{}, err
	}
	return structel.Build(kindName, size)
}

func buildInterpolator(gc *GenContext) (registry.Interpolator, error) {
	return gc.Interp.New(gc.InterpAlgorithm, gc.ClampThreshold)
}

// generatorEntries covers every image-materializing functional: direct and
// box convolution, morphological filters, geometric transforms, and the
// two-image blend.
func generatorEntries() []*Entry {
	return []*Entry{
		{
			Token: "gconv", Signature: "gconv(image,size,sigma)", Description: "Gaussian convolution",
			Arity:       Arity{3, 3},
			IsGenerator: true,
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("gconv", Arity{3, 3}, args); r != nil {
					return *r
				}
				if r := requireImageRef("gconv", 0, args); r != nil {
					return *r
				}
				if r := requireInvariant("gconv", 1, args); r != nil {
					return *r
				}
				if r := requireInvariant("gconv", 2, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: alwaysInvariant,
			Generate: func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error) {
				img, err := lookupImage(gc.Registry, args[0])
				if err != nil {
					return nil, err
				}
				size, err := intArg(args[1])
				if err != nil {
					return nil, err
				}
				if size < 3 || size%2 == 0 {
					return nil, fmt.Errorf("gconv: size must be an odd integer >= 3, got %d", size)
				}
				sigma, err := floatArg(args[2])
				if err != nil {
					return nil, err
				}
				return materialize(pos, gc, "gconv", args[0].ImageID, []interface{}{size, sigma}, func() (registry.Image, error) {
					return kernel.Convolve(img, kernel.GaussianKernel(size, sigma)), nil
				})
			},
		},
		{
			Token: "bconv", Signature: "bconv(image,size)", Description: "Box (flat) convolution",
			Arity:       Arity{2, 2},
			IsGenerator: true,
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("bconv", Arity{2, 2}, args); r != nil {
					return *r
				}
				if r := requireImageRef("bconv", 0, args); r != nil {
					return *r
				}
				if r := requireInvariant("bconv", 1, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: alwaysInvariant,
			Generate: func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error) {
				img, err := lookupImage(gc.Registry, args[0])
				if err != nil {
					return nil, err
				}
				size, err := intArg(args[1])
				if err != nil {
					return nil, err
				}
				if size < 3 || size%2 == 0 {
					return nil, fmt.Errorf("bconv: size must be an odd integer >= 3, got %d", size)
				}
				return materialize(pos, gc, "bconv", args[0].ImageID, []interface{}{size}, func() (registry.Image, error) {
					return kernel.Convolve(img, kernel.BoxKernel(size)), nil
				})
			},
		},
		{
			Token: "kconv", Signature: "kconv(image,k11,k12,...,kNN)", Description: "Convolution with an explicit flattened kernel",
			Arity:       Arity{10, 1 << 20},
			IsGenerator: true,
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("kconv", Arity{10, 1 << 20}, args); r != nil {
					return *r
				}
				if r := requireImageRef("kconv", 0, args); r != nil {
					return *r
				}
				if _, ok := oddSquareRoot(len(args) - 1); !ok {
					return reject(-1, fmt.Sprintf("kconv: kernel-element count must be a perfect odd square >= 9, got %d", len(args)-1))
				}
				for i := 1; i < len(args); i++ {
					if r := requireInvariant("kconv", i, args); r != nil {
						return *r
					}
				}
				return accept()
			},
			Invariant: alwaysInvariant,
			Generate: func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error) {
				img, err := lookupImage(gc.Registry, args[0])
				if err != nil {
					return nil, err
				}
				kernelArgs := args[1:]
				size, ok := oddSquareRoot(len(kernelArgs))
				if !ok {
					return nil, fmt.Errorf("kconv: kernel-element count must be a perfect odd square >= 9, got %d", len(kernelArgs))
				}
				weights := make([]float64, len(kernelArgs))
				params := make([]interface{}, len(kernelArgs))
				for i, a := range kernelArgs {
					w, err := floatArg(a)
					if err != nil {
						return nil, err
					}
					weights[i] = w
					params[i] = w
				}
				k := make([][]float64, size)
				for r := 0; r < size; r++ {
					k[r] = weights[r*size : (r+1)*size]
				}
				return materialize(pos, gc, "kconv", args[0].ImageID, params, func() (registry.Image, error) {
					return kernel.Convolve(img, k), nil
				})
			},
		},
		morphEntry("medfilt", "Median filter over a structuring neighborhood", kernel.MedianFilter),
		morphEntry("erosion", "Minimum over a structuring neighborhood", kernel.Erosion),
		morphEntry("dilation", "Maximum over a structuring neighborhood", kernel.Dilation),
		morphEntry("lvar", "Local sample variance over a structuring neighborhood", kernel.LocalVariance),
		{
			Token: "translate", Signature: "translate(image,dx,dy)", Description: "Shift an image by (dx,dy)",
			Arity:       Arity{3, 3},
			IsGenerator: true,
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("translate", Arity{3, 3}, args); r != nil {
					return *r
				}
				if r := requireImageRef("translate", 0, args); r != nil {
					return *r
				}
				if r := requireInvariant("translate", 1, args); r != nil {
					return *r
				}
				if r := requireInvariant("translate", 2, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: alwaysInvariant,
			Generate: func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error) {
				img, err := lookupImage(gc.Registry, args[0])
				if err != nil {
					return nil, err
				}
				dx, err := floatArg(args[1])
				if err != nil {
					return nil, err
				}
				dy, err := floatArg(args[2])
				if err != nil {
					return nil, err
				}
				interp, err := buildInterpolator(gc)
				if err != nil {
					return nil, err
				}
				return materialize(pos, gc, "translate", args[0].ImageID, []interface{}{dx, dy, gc.InterpAlgorithm}, func() (registry.Image, error) {
					return kernel.Translate(img, dx, dy, interp), nil
				})
			},
		},
		{
			Token: "rotate", Signature: "rotate(image,angle)", Description: "Rotate an image about its center, radians",
			Arity:       Arity{2, 2},
			IsGenerator: true,
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("rotate", Arity{2, 2}, args); r != nil {
					return *r
				}
				if r := requireImageRef("rotate", 0, args); r != nil {
					return *r
				}
				if r := requireInvariant("rotate", 1, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: alwaysInvariant,
			Generate: func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error) {
				img, err := lookupImage(gc.Registry, args[0])
				if err != nil {
					return nil, err
				}
				angle, err := floatArg(args[1])
				if err != nil {
					return nil, err
				}
				interp, err := buildInterpolator(gc)
				if err != nil {
					return nil, err
				}
				return materialize(pos, gc, "rotate", args[0].ImageID, []interface{}{angle, gc.InterpAlgorithm}, func() (registry.Image, error) {
					return kernel.Rotate(img, angle, interp), nil
				})
			},
		},
		unaryGenerator("hmirror", "Flip an image horizontally", func(img registry.Image, _ *GenContext) (registry.Image, error) {
			return kernel.HMirror(img), nil
		}),
		unaryGenerator("vmirror", "Flip an image vertically", func(img registry.Image, _ *GenContext) (registry.Image, error) {
			return kernel.VMirror(img), nil
		}),
		unaryGenerator("normalize", "Rescale [min,max] to [0,1]", func(img registry.Image, _ *GenContext) (registry.Image, error) {
			return kernel.Normalize(img), nil
		}),
		{
			Token: "truncate", Signature: "truncate(image,lo,hi)", Description: "Clamp samples into [lo,hi]",
			Arity:       Arity{3, 3},
			IsGenerator: true,
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("truncate", Arity{3, 3}, args); r != nil {
					return *r
				}
				if r := requireImageRef("truncate", 0, args); r != nil {
					return *r
				}
				if r := requireInvariant("truncate", 1, args); r != nil {
					return *r
				}
				if r := requireInvariant("truncate", 2, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: alwaysInvariant,
			Generate: func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error) {
				img, err := lookupImage(gc.Registry, args[0])
				if err != nil {
					return nil, err
				}
				lo, err := floatArg(args[1])
				if err != nil {
					return nil, err
				}
				hi, err := floatArg(args[2])
				if err != nil {
					return nil, err
				}
				return materialize(pos, gc, "truncate", args[0].ImageID, []interface{}{lo, hi}, func() (registry.Image, error) {
					return kernel.Truncate(img, lo, hi), nil
				})
			},
		},
		{
			Token: "binarize", Signature: "binarize(image,threshold)", Description: "Threshold to {0,1}",
			Arity:       Arity{2, 2},
			IsGenerator: true,
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("binarize", Arity{2, 2}, args); r != nil {
					return *r
				}
				if r := requireImageRef("binarize", 0, args); r != nil {
					return *r
				}
				if r := requireInvariant("binarize", 1, args); r != nil {
					return *r
				}
				return accept()
			},
			Invariant: alwaysInvariant,
			Generate: func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error) {
				img, err := lookupImage(gc.Registry, args[0])
				if err != nil {
					return nil, err
				}
				threshold, err := floatArg(args[1])
				if err != nil {
					return nil, err
				}
				return materialize(pos, gc, "binarize", args[0].ImageID, []interface{}{threshold}, func() (registry.Image, error) {
					return kernel.Binarize(img, threshold), nil
				})
			},
		},
		{
			Token: "combine", Signature: "combine(image,other,op,opacity)", Description: "Blend two images with a named op",
			Arity:       Arity{4, 4},
			IsGenerator: true,
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("combine", Arity{4, 4}, args); r != nil {
					return *r
				}
				if r := requireImageRef("combine", 0, args); r != nil {
					return *r
				}
				if r := requireImageRef("combine", 1, args); r != nil {
					return *r
				}
				if r := requireInvariant("combine", 3, args); r != nil {
					return *r
				}
				// The blend operator is a bare name (op_add, op_screen, ...),
				// carried as a CONST_REF rather than resolved through the
				// symbol table: it names a kernel.BlendOps key, not a value.
				if args[2].Kind != ast.KindConstRef {
					return reject(2, "combine: third argument must be a blend operator name")
				}
				op := args[2].ConstName
				if _, ok := kernel.BlendOps[op]; !ok {
					return reject(2, fmt.Sprintf("combine: unknown blend operator %q", op))
				}
				return accept()
			},
			Invariant: alwaysInvariant,
			Generate: func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error) {
				img, err := lookupImage(gc.Registry, args[0])
				if err != nil {
					return nil, err
				}
				other, err := lookupImage(gc.Registry, args[1])
				if err != nil {
					return nil, err
				}
				op := args[2].ConstName
				opacity, err := floatArg(args[3])
				if err != nil {
					return nil, err
				}
				return materialize(pos, gc, "combine", args[0].ImageID, []interface{}{args[1].ImageID, op, opacity}, func() (registry.Image, error) {
					return kernel.Combine(img, other, op, opacity), nil
				})
			},
		},
	}
}

// unaryGenerator covers the zero-parameter image-to-image generators:
// hmirror, vmirror, normalize.
func unaryGenerator(name, desc string, f func(registry.Image, *GenContext) (registry.Image, error)) *Entry {
	return &Entry{
		Token: name, Signature: name + "(image)", Description: desc, Arity: Arity{1, 1},
		IsGenerator: true,
		Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
			if r := checkArity(name, Arity{1, 1}, args); r != nil {
				return *r
			}
			if r := requireImageRef(name, 0, args); r != nil {
				return *r
			}
			return accept()
		},
		Invariant: alwaysInvariant,
		Generate: func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error) {
			img, err := lookupImage(gc.Registry, args[0])
			if err != nil {
				return nil, err
			}
			return materialize(pos, gc, name, args[0].ImageID, nil, func() (registry.Image, error) {
				return f(img, gc)
			})
		},
	}
}

// morphEntry covers the structuring-element-parameterized generators:
// medfilt, erosion, dilation, lvar.
func morphEntry(name, desc string, f func(registry.Image, structel.Mask) *rasterimg.Image) *Entry {
	return &Entry{
		Token: name, Signature: name + "(image,structel)", Description: desc, Arity: Arity{2, 2},
		IsGenerator: true,
		Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
			if r := checkArity(name, Arity{2, 2}, args); r != nil {
				return *r
			}
			if r := requireImageRef(name, 0, args); r != nil {
				return *r
			}
			if !args[1].Kind.IsFunctional() {
				return reject(1, fmt.Sprintf("%s: second argument must be a structuring-element selector", name))
			}
			if _, ok := StructelKind(args[1].FuncName); !ok {
				return reject(1, fmt.Sprintf("%s: %q is not a structuring-element selector", name, args[1].FuncName))
			}
			return accept()
		},
		Invariant: alwaysInvariant,
		Generate: func(pos token.Token, args []*ast.Node, gc *GenContext) (*ast.Node, error) {
			img, err := lookupImage(gc.Registry, args[0])
			if err != nil {
				return nil, err
			}
			mask, err := structelArg(args[1])
			if err != nil {
				return nil, err
			}
			kindName, _ := StructelKind(args[1].FuncName)
			size, _ := intArg(args[1].Args[0])
			return materialize(pos, gc, name, args[0].ImageID, []interface{}{kindName, size}, func() (registry.Image, error) {
				return f(img, mask), nil
			})
		},
	}
}
