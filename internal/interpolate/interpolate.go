// Package interpolate implements the pixel-interpolation strategies named in
// nearest-neighbor, bilinear, bicubic spline, bicubic B-spline,
// Lanczos 3/4/5, Mitchell-Netravali, Catmull-Rom, and cubic B-spline. Each
// is a small struct implementing registry.Interpolator, selected by Factory.
package interpolate

import (
	"fmt"
	"math"

	"github.com/vahlkar/pixmath/internal/registry"
)

// Factory is the registry.InterpolatorFactory implementation.
type Factory struct{}

func (Factory) New(algorithm string, clampThreshold float64) (registry.Interpolator, error) {
	switch algorithm {
	case "nearest":
		return nearest{}, nil
	case "bilinear":
		return bilinear{clamp: clampThreshold}, nil
	case "bicubic-spline":
		return cubicKernel{f: cubicSplineWeight, support: 2, clamp: clampThreshold}, nil
	case "bicubic-bspline", "cubic-bspline":
		return cubicKernel{f: bsplineWeight, support: 2, clamp: clampThreshold}, nil
	case "mitchell-netravali":
		return cubicKernel{f: mitchellWeight, support: 2, clamp: clampThreshold}, nil
	case "catmull-rom":
		return cubicKernel{f: catmullRomWeight, support: 2, clamp: clampThreshold}, nil
	case "lanczos3":
		return lanczos{a: 3, clamp: clampThreshold}, nil
	case "lanczos4":
		return lanczos{a: 4, clamp: clampThreshold}, nil
	case "lanczos5":
		return lanczos{a: 5, clamp: clampThreshold}, nil
	default:
		return nil, fmt.Errorf("interpolate: unknown algorithm %q", algorithm)
	}
}

func clampFrac(v, threshold float64) float64 {
	// Values within threshold of an integer snap to it, avoiding
	// ringing artifacts from wide-support kernels on near-grid-aligned
	// samples.
	r := math.Round(v)
	if math.Abs(v-r) < threshold {
		return r
	}
	return v
}

type nearest struct{}

func (nearest) Sample(img registry.Image, x, y float64, c int) float64 {
	return img.Sample(int(math.Round(x)), int(math.Round(y)), c)
}

type bilinear struct{ clamp float64 }

func (b bilinear) Sample(img registry.Image, x, y float64, c int) float64 {
	x = clampFrac(x, b.clamp)
	y = clampFrac(y, b.clamp)
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	v00 := img.Sample(ix, iy, c)
	v10 := img.Sample(ix+1, iy, c)
	v01 := img.Sample(ix, iy+1, c)
	v11 := img.Sample(ix+1, iy+1, c)
	top := v00 + (v10-v00)*fx
	bot := v01 + (v11-v01)*fx
	return top + (bot-top)*fy
}

// cubicKernel implements every separable 4x4-support cubic family by
// plugging in a different one-dimensional weight function.
type cubicKernel struct {
	f       func(t float64) float64
	support int
	clamp   float64
}

func (k cubicKernel) Sample(img registry.Image, x, y float64, c int) float64 {
	x = clampFrac(x, k.clamp)
	y = clampFrac(y, k.clamp)
	x0, y0 := math.Floor(x), math.Floor(y)
	var sum, wsum float64
	for j := -1; j <= 2; j++ {
		wy := k.f(y - (y0 + float64(j)))
		for i := -1; i <= 2; i++ {
			wx := k.f(x - (x0 + float64(i)))
			w := wx * wy
			sum += w * img.Sample(int(x0)+i, int(y0)+j, c)
			wsum += w
		}
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

func cubicSplineWeight(t float64) float64 {
	t = math.Abs(t)
	const a = -0.5
	switch {
	case t <= 1:
		return (a+2)*t*t*t - (a+3)*t*t + 1
	case t < 2:
		return a*t*t*t - 5*a*t*t + 8*a*t - 4*a
	default:
		return 0
	}
}

func catmullRomWeight(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t <= 1:
		return 1.5*t*t*t - 2.5*t*t + 1
	case t < 2:
		return -0.5*t*t*t + 2.5*t*t - 4*t + 2
	default:
		return 0
	}
}

func bsplineWeight(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t < 1:
		return (4 - 6*t*t + 3*t*t*t) / 6
	case t < 2:
		d := 2 - t
		return (d * d * d) / 6
	default:
		return 0
	}
}

func mitchellWeight(t float64) float64 {
	const b, c = 1.0 / 3.0, 1.0 / 3.0
	t = math.Abs(t)
	if t < 1 {
		return ((12-9*b-6*c)*t*t*t + (-18+12*b+6*c)*t*t + (6 - 2*b)) / 6
	}
	if t < 2 {
		return ((-b-6*c)*t*t*t + (6*b+30*c)*t*t + (-12*b-48*c)*t + (8*b + 24*c)) / 6
	}
	return 0
}

type lanczos struct {
	a     int
	clamp float64
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

func (l lanczos) weight(t float64) float64 {
	t = math.Abs(t)
	if t >= float64(l.a) {
		return 0
	}
	return sinc(t) * sinc(t/float64(l.a))
}

func (l lanczos) Sample(img registry.Image, x, y float64, c int) float64 {
	x = clampFrac(x, l.clamp)
	y = clampFrac(y, l.clamp)
	x0, y0 := math.Floor(x), math.Floor(y)
	a := l.a
	var sum, wsum float64
	for j := -a + 1; j <= a; j++ {
		wy := l.weight(y - (y0 + float64(j)))
		for i := -a + 1; i <= a; i++ {
			wx := l.weight(x - (x0 + float64(i)))
			w := wx * wy
			sum += w * img.Sample(int(x0)+i, int(y0)+j, c)
			wsum += w
		}
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}
