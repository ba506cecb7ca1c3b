package kernel

import (
	"math"
	"sort"

	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/registry"
)

// Translate shifts an image by (dx,dy), sampled through the given
// interpolator; out-of-bounds source reads are zero.
func Translate(src registry.Image, dx, dy float64, interp registry.Interpolator) *rasterimg.Image {
	w, h, ch := src.Width(), src.Height(), src.Channels()
	out := rasterimg.New(w, h, ch)
	for channel := 0; channel < ch; channel++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Set(x, y, channel, interp.Sample(src, float64(x)-dx, float64(y)-dy, channel))
			}
		}
	}
	return out
}

// Rotate rotates an image by angleRadians about its center.
func Rotate(src registry.Image, angleRadians float64, interp registry.Interpolator) *rasterimg.Image {
	w, h, ch := src.Width(), src.Height(), src.Channels()
	out := rasterimg.New(w, h, ch)
	cx, cy := float64(w)/2, float64(h)/2
	sinA, cosA := math.Sin(-angleRadians), math.Cos(-angleRadians)
	for channel := 0; channel < ch; channel++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				rx := float64(x) - cx
				ry := float64(y) - cy
				sx := rx*cosA-ry*sinA + cx
				sy := rx*sinA+ry*cosA + cy
				out.Set(x, y, channel, interp.Sample(src, sx, sy, channel))
			}
		}
	}
	return out
}

// HMirror flips an image horizontally.
func HMirror(src registry.Image) *rasterimg.Image {
	w, h, ch := src.Width(), src.Height(), src.Channels()
	out := rasterimg.New(w, h, ch)
	for channel := 0; channel < ch; channel++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Set(x, y, channel, src.Sample(w-1-x, y, channel))
			}
		}
	}
	return out
}

// VMirror flips an image vertically.
func VMirror(src registry.Image) *rasterimg.Image {
	w, h, ch := src.Width(), src.Height(), src.Channels()
	out := rasterimg.New(w, h, ch)
	for channel := 0; channel < ch; channel++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.Set(x, y, channel, src.Sample(x, h-1-y, channel))
			}
		}
	}
	return out
}

// Normalize linearly rescales samples so the channel's [min,max] maps to
// [0,1].
func Normalize(src registry.Image) *rasterimg.Image {
	w, h, ch := src.Width(), src.Height(), src.Channels()
	out := rasterimg.New(w, h, ch)
	for channel := 0; channel < ch; channel++ {
		lo, hi := src.Min(channel), src.Max(channel)
		span := hi - lo
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := src.Sample(x, y, channel)
				if span == 0 {
					out.Set(x, y, channel, 0)
				} else {
					out.Set(x, y, channel, (v-lo)/span)
				}
			}
		}
	}
	return out
}

// Truncate clamps every sample into [lo,hi].
func Truncate(src registry.Image, lo, hi float64) *rasterimg.Image {
	w, h, ch := src.Width(), src.Height(), src.Channels()
	out := rasterimg.New(w, h, ch)
	for channel := 0; channel < ch; channel++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := src.Sample(x, y, channel)
				if v < lo {
					v = lo
				} else if v > hi {
					v = hi
				}
				out.Set(x, y, channel, v)
			}
		}
	}
	return out
}

// Binarize maps samples below threshold to 0 and at-or-above to 1.
func Binarize(src registry.Image, threshold float64) *rasterimg.Image {
	w, h, ch := src.Width(), src.Height(), src.Channels()
	out := rasterimg.New(w, h, ch)
	for channel := 0; channel < ch; channel++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if src.Sample(x, y, channel) >= threshold {
					out.Set(x, y, channel, 1)
				} else {
					out.Set(x, y, channel, 0)
				}
			}
		}
	}
	return out
}

// BlendOp is one of the op_* blend modes usable by combine().
type BlendOp func(a, b float64) float64

var BlendOps = map[string]BlendOp{
	"op_add": func(a, b float64) float64 { return a + b },
	"op_sub": func(a, b float64) float64 { return a - b },
	"op_mul": func(a, b float64) float64 { return a * b },
	"op_div": func(a, b float64) float64 {
		if b == 0 {
			return math.NaN()
		}
		return a / b
	},
	"op_dif": func(a, b float64) float64 { return math.Abs(a - b) },
	"op_min": func(a, b float64) float64 { return math.Min(a, b) },
	"op_max": func(a, b float64) float64 { return math.Max(a, b) },
	"op_pow": func(a, b float64) float64 { return math.Pow(a, b) },
	"op_mov": func(a, b float64) float64 { return b },
	"op_screen": func(a, b float64) float64 { return 1 - (1-a)*(1-b) },
	"op_overlay": func(a, b float64) float64 {
		if a < 0.5 {
			return 2 * a * b
		}
		return 1 - 2*(1-a)*(1-b)
	},
	"op_hard_light": func(a, b float64) float64 {
		if b < 0.5 {
			return 2 * a * b
		}
		return 1 - 2*(1-a)*(1-b)
	},
	"op_soft_light": func(a, b float64) float64 {
		if b < 0.5 {
			return a - (1-2*b)*a*(1-a)
		}
		return a + (2*b-1)*(math.Sqrt(a)-a)
	},
	"op_color_burn": func(a, b float64) float64 {
		if b == 0 {
			return 0
		}
		return 1 - math.Min(1, (1-a)/b)
	},
	"op_color_dodge": func(a, b float64) float64 {
		if b >= 1 {
			return 1
		}
		return math.Min(1, a/(1-b))
	},
	"op_linear_burn":  func(a, b float64) float64 { return a + b - 1 },
	"op_linear_light": func(a, b float64) float64 { return a + 2*b - 1 },
	"op_pin_light": func(a, b float64) float64 {
		if b < 0.5 {
			return math.Min(a, 2*b)
		}
		return math.Max(a, 2*b-1)
	},
	"op_vivid_light": func(a, b float64) float64 {
		if b < 0.5 {
			if b == 0 {
				return 0
			}
			return 1 - math.Min(1, (1-a)/(2*b))
		}
		d := 2 * (b - 0.5)
		if d >= 1 {
			return 1
		}
		return math.Min(1, a/(1-d))
	},
	"op_exclusion": func(a, b float64) float64 { return a + b - 2*a*b },
}

// Combine blends src with other using the named op and an opacity in
// [0,1].
func Combine(src, other registry.Image, op string, opacity float64) *rasterimg.Image {
	fn := BlendOps[op]
	w, h, ch := src.Width(), src.Height(), src.Channels()
	out := rasterimg.New(w, h, ch)
	for channel := 0; channel < ch; channel++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				a := src.Sample(x, y, channel)
				b := other.Sample(x, y, channel)
				blended := fn(a, b)
				out.Set(x, y, channel, a+(blended-a)*opacity)
			}
		}
	}
	return out
}

// sortedCopy returns an ascending copy of vals, leaving vals untouched.
func sortedCopy(vals []float64) []float64 {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	return cp
}
