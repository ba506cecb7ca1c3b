// Package kernel implements the numerical kernels behind the generator
// functions of the catalogue: convolution, morphological filters, geometric
// transforms, and whole-image operations.
//
// These are direct (not FFT) implementations: convolution strategy is an
// implementation detail behind a narrow contract, so a direct-sum kernel
// here is a faithful stand-in for a separable/FFT path.
package kernel

import (
	"math"

	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/registry"
	"github.com/vahlkar/pixmath/internal/structel"
)

// GaussianKernel builds a normalized 2D Gaussian kernel of the given odd
// size and sigma (used by gconv).
func GaussianKernel(size int, sigma float64) [][]float64 {
	c := size / 2
	k := make([][]float64, size)
	var sum float64
	for y := range k {
		k[y] = make([]float64, size)
		for x := range k[y] {
			dx, dy := float64(x-c), float64(y-c)
			v := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			k[y][x] = v
			sum += v
		}
	}
	if sum != 0 {
		for y := range k {
			for x := range k[y] {
				k[y][x] /= sum
			}
		}
	}
	return k
}

// BoxKernel builds a normalized flat (box) kernel of the given odd size
// (used by bconv).
func BoxKernel(size int) [][]float64 {
	k := make([][]float64, size)
	n := float64(size * size)
	for y := range k {
		k[y] = make([]float64, size)
		for x := range k[y] {
			k[y][x] = 1 / n
		}
	}
	return k
}

// Convolve applies a direct 2D convolution with edge samples treated as
// zero outside the image, matching "out-of-bounds samples
// ... treated as zero".
func Convolve(src registry.Image, k [][]float64) *rasterimg.Image {
	w, h, ch := src.Width(), src.Height(), src.Channels()
	out := rasterimg.New(w, h, ch)
	size := len(k)
	c := size / 2
	for channel := 0; channel < ch; channel++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var sum float64
				for ky := 0; ky < size; ky++ {
					for kx := 0; kx < size; kx++ {
						sum += k[ky][kx] * src.Sample(x+kx-c, y+ky-c, channel)
					}
				}
				out.Set(x, y, channel, sum)
			}
		}
	}
	return out
}

// MedianFilter replaces each sample with the median of its structuring
// neighborhood (medfilt).
func MedianFilter(src registry.Image, mask structel.Mask) *rasterimg.Image {
	return windowReduce(src, mask, func(vals []float64) float64 {
		return medianOf(vals)
	})
}

// Erosion takes the minimum over the structuring neighborhood.
func Erosion(src registry.Image, mask structel.Mask) *rasterimg.Image {
	return windowReduce(src, mask, func(vals []float64) float64 {
		m := vals[0]
		for _, v := range vals[1:] {
			if v < m {
				m = v
			}
		}
		return m
	})
}

// Dilation takes the maximum over the structuring neighborhood.
func Dilation(src registry.Image, mask structel.Mask) *rasterimg.Image {
	return windowReduce(src, mask, func(vals []float64) float64 {
		m := vals[0]
		for _, v := range vals[1:] {
			if v > m {
				m = v
			}
		}
		return m
	})
}

// LocalVariance computes the sample variance over the structuring
// neighborhood at each position (lvar).
func LocalVariance(src registry.Image, mask structel.Mask) *rasterimg.Image {
	return windowReduce(src, mask, func(vals []float64) float64 {
		var sum, sumSq float64
		for _, v := range vals {
			sum += v
			sumSq += v * v
		}
		n := float64(len(vals))
		mean := sum / n
		return sumSq/n - mean*mean
	})
}

func windowReduce(src registry.Image, mask structel.Mask, reduce func([]float64) float64) *rasterimg.Image {
	w, h, ch := src.Width(), src.Height(), src.Channels()
	out := rasterimg.New(w, h, ch)
	c := mask.Size / 2
	buf := make([]float64, 0, mask.Size*mask.Size)
	for channel := 0; channel < ch; channel++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				buf = buf[:0]
				for my := 0; my < mask.Size; my++ {
					for mx := 0; mx < mask.Size; mx++ {
						if !mask.At(mx, my) {
							continue
						}
						buf = append(buf, src.Sample(x+mx-c, y+my-c, channel))
					}
				}
				out.Set(x, y, channel, reduce(buf))
			}
		}
	}
	return out
}

func medianOf(vals []float64) float64 {
	cp := append([]float64(nil), vals...)
	// insertion sort: neighborhoods are small (structuring-element sized)
	for i := 1; i < len(cp); i++ {
		v := cp[i]
		j := i - 1
		for j >= 0 && cp[j] > v {
			cp[j+1] = cp[j]
			j--
		}
		cp[j+1] = v
	}
	n := len(cp)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return cp[n/2]
	}
	return (cp[n/2-1] + cp[n/2]) / 2
}
