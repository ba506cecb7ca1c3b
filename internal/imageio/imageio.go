// Package imageio implements registry.Image against real decoded image
// files, backing the CLI's non-mock image registry. PNG and JPEG decode through the standard library; BMP decodes
// through golang.org/x/image/bmp, which the standard library doesn't cover.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/registry"
)

// Load decodes the file at path into a rasterimg.Image normalized to
// [0,1] float64 samples, the sample domain every catalog function assumes.
// The format is chosen from the extension; ".png"/".jpg"/".jpeg"/".bmp" are
// supported.
func Load(path string) (*rasterimg.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	img, err := decode(f, path)
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", path, err)
	}
	return fromImage(img), nil
}

func decode(r io.Reader, path string) (image.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Decode(r)
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".bmp":
		return bmp.Decode(r)
	default:
		img, _, err := image.Decode(r)
		return img, err
	}
}

// fromImage converts a decoded image.Image into our dense raster,
// collapsing to one channel when every pixel is gray.
func fromImage(src image.Image) *rasterimg.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	color3 := make([][3]float64, w*h)
	isColor := false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := src.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rf, gf, bf := float64(r)/0xffff, float64(g)/0xffff, float64(b)/0xffff
			if rf != gf || gf != bf {
				isColor = true
			}
			color3[y*w+x] = [3]float64{rf, gf, bf}
		}
	}

	channels := 1
	if isColor {
		channels = 3
	}
	im := rasterimg.New(w, h, channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color3[y*w+x]
			if channels == 1 {
				im.Set(x, y, 0, c[0])
				continue
			}
			im.Set(x, y, 0, c[0])
			im.Set(x, y, 1, c[1])
			im.Set(x, y, 2, c[2])
		}
	}
	return im
}

// Save writes im to path as 16-bit PNG, the one lossless format the
// standard library encodes directly.
func Save(path string, im *rasterimg.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	defer f.Close()

	bounds := image.Rect(0, 0, im.Width(), im.Height())
	if im.IsColor() {
		dst := image.NewRGBA64(bounds)
		for y := 0; y < im.Height(); y++ {
			for x := 0; x < im.Width(); x++ {
				dst.SetRGBA64(x, y, color.RGBA64{
					R: to16(im.Sample(x, y, 0)),
					G: to16(im.Sample(x, y, 1)),
					B: to16(im.Sample(x, y, 2)),
					A: 0xffff,
				})
			}
		}
		return png.Encode(f, dst)
	}

	dst := image.NewGray16(bounds)
	for y := 0; y < im.Height(); y++ {
		for x := 0; x < im.Width(); x++ {
			dst.SetGray16(x, y, color.Gray16{Y: to16(im.Sample(x, y, 0))})
		}
	}
	return png.Encode(f, dst)
}

func to16(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

var _ registry.Image = (*rasterimg.Image)(nil)
