// Package rasterimg implements registry.Image as a plain in-memory float64
// raster. It backs both the decoded-file adapter (internal/imageio) and
// every generator function's output (internal/kernel), since generator
// results must satisfy the same registry.Image contract as a caller-loaded
// image.
package rasterimg

import (
	"math"
	"sort"
	"sync"

	"github.com/vahlkar/pixmath/internal/registry"
)

// Image is a dense, channel-major float64 raster: Data[c][y*Width+x].
type Image struct {
	W, H int
	Data [][]float64 // len(Data) == 1 (gray) or 3 (RGB)

	keywords   map[string]registry.Pixel3
	properties map[string]registry.Pixel3

	statsOnce [3]sync.Once
	stats     [3]statBlock
}

type statBlock struct {
	min, max, median, mean, mdev, adev, sdev, modulus, ssqr, asqr float64
}

// New allocates a blank raster. channels must be 1 or 3.
func New(w, h, channels int) *Image {
	data := make([][]float64, channels)
	for c := range data {
		data[c] = make([]float64, w*h)
	}
	return &Image{W: w, H: h, Data: data}
}

func (im *Image) Width() int    { return im.W }
func (im *Image) Height() int   { return im.H }
func (im *Image) Channels() int { return len(im.Data) }
func (im *Image) IsColor() bool { return len(im.Data) == 3 }

// Sample returns 0 for any out-of-bounds coordinate, per the spec's
// "missing pixels are treated as zero" rule.
func (im *Image) Sample(x, y, channel int) float64 {
	if x < 0 || y < 0 || x >= im.W || y >= im.H {
		return 0
	}
	if channel < 0 || channel >= len(im.Data) {
		channel = 0
	}
	return im.Data[channel][y*im.W+x]
}

// Set writes a sample; used by generators while building their result.
func (im *Image) Set(x, y, channel int, v float64) {
	if x < 0 || y < 0 || x >= im.W || y >= im.H || channel < 0 || channel >= len(im.Data) {
		return
	}
	im.Data[channel][y*im.W+x] = v
}

func (im *Image) channel(c int) int {
	if c < 0 || c >= len(im.Data) {
		return 0
	}
	return c
}

func (im *Image) computeStats(c int) statBlock {
	data := im.Data[c]
	n := len(data)
	if n == 0 {
		return statBlock{}
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	var sum, sumSq float64
	min, max := sorted[0], sorted[n-1]
	for _, v := range data {
		sum += v
		sumSq += v * v
	}
	mean := sum / float64(n)

	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	var adevSum, mdevAbsSum float64
	absDevs := make([]float64, n)
	for i, v := range data {
		adevSum += math.Abs(v - mean)
		absDevs[i] = math.Abs(v - median)
	}
	sort.Float64s(absDevs)
	mdev := absDevs[n/2]
	if n%2 == 0 {
		mdev = (absDevs[n/2-1] + absDevs[n/2]) / 2
	}
	_ = mdevAbsSum

	var varSum float64
	for _, v := range data {
		d := v - mean
		varSum += d * d
	}
	sdev := math.Sqrt(varSum / float64(n))

	return statBlock{
		min: min, max: max, median: median, mean: mean,
		mdev: mdev, adev: adevSum / float64(n), sdev: sdev,
		modulus: sum, ssqr: sumSq, asqr: sumSq / float64(n),
	}
}

func (im *Image) statFor(c int) statBlock {
	c = im.channel(c)
	im.statsOnce[c].Do(func() { im.stats[c] = im.computeStats(c) })
	return im.stats[c]
}

func (im *Image) Min(c int) float64     { return im.statFor(c).min }
func (im *Image) Max(c int) float64     { return im.statFor(c).max }
func (im *Image) Median(c int) float64  { return im.statFor(c).median }
func (im *Image) Mean(c int) float64    { return im.statFor(c).mean }
func (im *Image) MDev(c int) float64    { return im.statFor(c).mdev }
func (im *Image) ADev(c int) float64    { return im.statFor(c).adev }
func (im *Image) SDev(c int) float64    { return im.statFor(c).sdev }
func (im *Image) Modulus(c int) float64 { return im.statFor(c).modulus }
func (im *Image) SSqr(c int) float64    { return im.statFor(c).ssqr }
func (im *Image) ASqr(c int) float64    { return im.statFor(c).asqr }
func (im *Image) Area() float64         { return float64(im.W * im.H) }
func (im *Image) InvArea() float64 {
	a := im.Area()
	if a == 0 {
		return 0
	}
	return 1 / a
}

func (im *Image) KeywordValue(name string) (registry.Pixel3, bool) {
	v, ok := im.keywords[name]
	return v, ok
}

func (im *Image) PropertyValue(name string) (registry.Pixel3, bool) {
	v, ok := im.properties[name]
	return v, ok
}

func (im *Image) Keywords() map[string]registry.Pixel3 { return im.keywords }

func (im *Image) Properties() map[string]registry.Pixel3 { return im.properties }

// SetKeyword attaches a FITS-style keyword/value pair (used by imageio).
func (im *Image) SetKeyword(name string, v registry.Pixel3) {
	if im.keywords == nil {
		im.keywords = make(map[string]registry.Pixel3)
	}
	im.keywords[name] = v
}

// SetProperty attaches a named property (used by imageio).
func (im *Image) SetProperty(name string, v registry.Pixel3) {
	if im.properties == nil {
		im.properties = make(map[string]registry.Pixel3)
	}
	im.properties[name] = v
}

var _ registry.Image = (*Image)(nil)
