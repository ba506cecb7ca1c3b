// Package pixel implements the Pixel value object and the per-thread state
// it carries ("Pixel", "Per-thread state").
package pixel

import "github.com/vahlkar/pixmath/internal/rng"

// Ref is an untyped reference carried by a REFERENCE-kind pixel: the image
// identity it points into plus the channel it was read from. The evaluator
// never dereferences Ref; functions that accept image-like arguments
// (pixel(), statistics queries) resolve their image from the IMAGE_REF node
// at parse time and do not read Ref either.
type Ref struct {
	ImageID string
	Channel int
}

// Pixel is the small value object that flows through the evaluator's stack.
// Length is 1 for a monochrome scalar and 3 for an RGB triple; Samples[0:Length]
// are the live slots. X, Y are the pixel's integer coordinates in the output
// image. TLS points at the owning worker's thread-local state.
type Pixel struct {
	Length  int
	Samples [3]float64
	X, Y    int
	Ref     *Ref
	TLS     *TLS
}

// NewScalar builds a monochrome pixel at (x,y).
func NewScalar(x, y int, v float64, tls *TLS) Pixel {
	return Pixel{Length: 1, Samples: [3]float64{v, 0, 0}, X: x, Y: y, TLS: tls}
}

// NewRGB builds an RGB pixel at (x,y).
func NewRGB(x, y int, r, g, b float64, tls *TLS) Pixel {
	return Pixel{Length: 3, Samples: [3]float64{r, g, b}, X: x, Y: y, TLS: tls}
}

// IsColor reports whether the pixel carries three channels.
func (p Pixel) IsColor() bool { return p.Length == 3 }

// Sample reads slot 0 for scalars, or slot c for RGB (an out-of-range c
// reads slot 0).
// This is the "logical zero/one test" read the spec calls for.
func (p Pixel) Sample(c int) float64 {
	if p.Length == 1 {
		return p.Samples[0]
	}
	if c < 0 || c >= p.Length {
		c = 0
	}
	return p.Samples[c]
}

// IsTrue performs the logical truth test used by comparisons, iif and
// iswitch: nonzero at the tested slot.
func (p Pixel) IsTrue(c int) bool { return p.Sample(c) != 0 }

// ToRGB returns an RGB copy of a scalar pixel by broadcasting slot 0,
//: "cheap: copies slot 0 into slots 1 and 2".
func (p Pixel) ToRGB() Pixel {
	if p.Length == 3 {
		return p
	}
	p.Samples[1] = p.Samples[0]
	p.Samples[2] = p.Samples[0]
	p.Length = 3
	return p
}

// ToGray sets Length to 1 without touching the sample slots ("set
// grayscale only changes length").
func (p Pixel) ToGray() Pixel {
	p.Length = 1
	return p
}

// TLS is the thread-local state attached to each evaluation stack: one
// xoshiro256** generator and one cell per variable symbol, private to the
// worker that owns it.
type TLS struct {
	RNG   *rng.XoShiRo256SS
	Cells []Pixel // indexed by variable id, sized by the symbol table
}

// NewTLS builds per-worker state seeded deterministically from the run seed
// and the worker index"Randomness".
func NewTLS(runSeed uint64, workerIndex int, numCells int) *TLS {
	return &TLS{
		RNG:   rng.New(runSeed, uint64(workerIndex)),
		Cells: make([]Pixel, numCells),
	}
}
