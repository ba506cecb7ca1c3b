package catalog

import (
	"fmt"
	"math"

	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/registry"
	"github.com/vahlkar/pixmath/internal/token"
)

// lookupImage resolves an IMAGE_REF node's target through the registry
// bound at parse time, the same collaborator a generator uses.
func lookupImage(reg registry.Registry, n *ast.Node) (registry.Image, error) {
	if reg == nil {
		return nil, fmt.Errorf("catalog: no registry bound for image lookup")
	}
	if n.ImageID == "" {
		if img := reg.Target(); img != nil {
			return img, nil
		}
		return nil, fmt.Errorf("catalog: no target image bound")
	}
	img, ok := reg.Lookup(n.ImageID)
	if !ok {
		return nil, fmt.Errorf("catalog: unknown image %q", n.ImageID)
	}
	return img, nil
}

// statPixel evaluates a per-channel image statistic, honoring an explicit
// channel selector on the IMAGE_REF or producing
// one sample per channel of the source image otherwise.
func statPixel(img registry.Image, ref *ast.Node, f func(registry.Image, int) float64) pixel.Pixel {
	if ref.HasChannel {
		return pixel.NewScalar(0, 0, f(img, ref.Channel), nil)
	}
	if !img.IsColor() {
		return pixel.NewScalar(0, 0, f(img, 0), nil)
	}
	return pixel.NewRGB(0, 0, f(img, 0), f(img, 1), f(img, 2), nil)
}

// statEntry builds a nullary-on-pixel-stack, image-resolved statistic such
// as mean($a) or max($a): invariant, resolved once at parse time against the
// bound registry (keyword/property/statistic lookups are all
// resolved before the pixel loop starts).
func statEntry(name string, f func(registry.Image, int) float64) *Entry {
	return &Entry{
		Token: name, Signature: name + "(image)", Arity: Arity{1, 1},
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
			return nodeFromPixel(pos, statPixel(img, args[0], f)), nil
		},
	}
}

// statsEntries covers image-statistic and geometry functions,
// plus pixel() direct sampling.
func statsEntries() []*Entry {
	entries := []*Entry{
		statEntry("min", registry.Image.Min),
		statEntry("max", registry.Image.Max),
		statEntry("median", registry.Image.Median),
		statEntry("mean", registry.Image.Mean),
		statEntry("mdev", registry.Image.MDev),
		statEntry("adev", registry.Image.ADev),
		statEntry("sdev", registry.Image.SDev),
		statEntry("modulus", registry.Image.Modulus),
		statEntry("ssqr", registry.Image.SSqr),
		statEntry("asqr", registry.Image.ASqr),

		{
			Token: "width", Signature: "width(image)", Arity: Arity{1, 1},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("width", Arity{1, 1}, args); r != nil {
					return *r
				}
				if r := requireImageRef("width", 0, args); r != nil {
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
				return ast.NewSampleLiteral(pos, float64(img.Width())), nil
			},
		},
		{
			Token: "height", Signature: "height(image)", Arity: Arity{1, 1},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("height", Arity{1, 1}, args); r != nil {
					return *r
				}
				if r := requireImageRef("height", 0, args); r != nil {
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
				return ast.NewSampleLiteral(pos, float64(img.Height())), nil
			},
		},
		{
			Token: "area", Signature: "area(image)", Arity: Arity{1, 1},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("area", Arity{1, 1}, args); r != nil {
					return *r
				}
				if r := requireImageRef("area", 0, args); r != nil {
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
				return ast.NewSampleLiteral(pos, img.Area()), nil
			},
		},
		{
			Token: "invarea", Signature: "invarea(image)", Arity: Arity{1, 1},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("invarea", Arity{1, 1}, args); r != nil {
					return *r
				}
				if r := requireImageRef("invarea", 0, args); r != nil {
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
				return ast.NewSampleLiteral(pos, img.InvArea()), nil
			},
		},
		{
			Token: "iscolor", Signature: "iscolor(image)", Arity: Arity{1, 1},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("iscolor", Arity{1, 1}, args); r != nil {
					return *r
				}
				if r := requireImageRef("iscolor", 0, args); r != nil {
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
				return ast.NewSampleLiteral(pos, boolToSample(img.IsColor())), nil
			},
		},

		{
			// pixel(image, x, y [, c]) samples a fixed location through the
			// bound interpolator; all arguments must be invariant since the
			// location does not move with the evaluation pixel.
			Token: "pixel", Signature: "pixel(image,x,y[,c])", Arity: Arity{3, 4},
			Validate: func(pos token.Token, args []*ast.Node) ValidateResult {
				if r := checkArity("pixel", Arity{3, 4}, args); r != nil {
					return *r
				}
				if r := requireImageRef("pixel", 0, args); r != nil {
					return *r
				}
				for i := 1; i < len(args); i++ {
					if r := requireInvariant("pixel", i, args); r != nil {
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
				xp, err := literalPixel(args[1])
				if err != nil {
					return nil, err
				}
				yp, err := literalPixel(args[2])
				if err != nil {
					return nil, err
				}
				x, y := xp.Sample(0), yp.Sample(0)

				sampleChannel := func(c int) (float64, error) {
					if x == math.Trunc(x) && y == math.Trunc(y) {
						return img.Sample(int(x), int(y), c), nil
					}
					interp, err := gc.Interp.New(gc.InterpAlgorithm, gc.ClampThreshold)
					if err != nil {
						return 0, err
					}
					return interp.Sample(img, x, y, c), nil
				}

				if len(args) == 4 {
					cp, err := literalPixel(args[3])
					if err != nil {
						return nil, err
					}
					v, err := sampleChannel(int(cp.Sample(0)))
					if err != nil {
						return nil, err
					}
					return ast.NewSampleLiteral(pos, v), nil
				}
				if !img.IsColor() {
					v, err := sampleChannel(0)
					if err != nil {
						return nil, err
					}
					return ast.NewSampleLiteral(pos, v), nil
				}
				r, err := sampleChannel(0)
				if err != nil {
					return nil, err
				}
				g, err := sampleChannel(1)
				if err != nil {
					return nil, err
				}
				b, err := sampleChannel(2)
				if err != nil {
					return nil, err
				}
				return ast.NewPixelLiteral(pos, pixel.NewRGB(0, 0, r, g, b, nil)), nil
			},
		},
	}
	return entries
}
