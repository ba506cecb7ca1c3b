package imageio

import (
	"fmt"

	"github.com/vahlkar/pixmath/internal/registry"
)

// NamedRegistry is the registry.Registry backing one CLI run: a fixed map
// of identifier to decoded image, plus the image bound to "$T"/"$target".
type NamedRegistry struct {
	images map[string]registry.Image
	target registry.Image
}

// NewNamedRegistry builds an empty registry; Target() resolves to the image
// most recently passed to Add with asTarget set.
func NewNamedRegistry() *NamedRegistry {
	return &NamedRegistry{images: make(map[string]registry.Image)}
}

// Add binds id to img. If asTarget is set, img also becomes the "$T" image.
func (r *NamedRegistry) Add(id string, img registry.Image, asTarget bool) {
	r.images[id] = img
	if asTarget {
		r.target = img
	}
}

func (r *NamedRegistry) Lookup(id string) (registry.Image, bool) {
	img, ok := r.images[id]
	return img, ok
}

func (r *NamedRegistry) Target() registry.Image { return r.target }

// drizzleImage decorates a decoded image with an externally supplied
// weight map: Area/InvArea report the sum of weights in place of the raw
// pixel count, the one effect attributed to a drizzle sidecar. Every
// other statistic passes through unchanged.
type drizzleImage struct {
	registry.Image
	weightSum float64
}

func (d *drizzleImage) Area() float64 { return d.weightSum }
func (d *drizzleImage) InvArea() float64 {
	if d.weightSum == 0 {
		return 0
	}
	return 1 / d.weightSum
}

// WithDrizzleWeights loads a single-channel weight map from sidecarPath and
// wraps img so its area-derived statistics reflect the cumulative weight
// instead of the plain pixel count.
func WithDrizzleWeights(img registry.Image, sidecarPath string) (registry.Image, error) {
	weights, err := Load(sidecarPath)
	if err != nil {
		return nil, fmt.Errorf("imageio: drizzle sidecar: %w", err)
	}
	if weights.Width() != img.Width() || weights.Height() != img.Height() {
		return nil, fmt.Errorf("imageio: drizzle sidecar %s is %dx%d, target is %dx%d",
			sidecarPath, weights.Width(), weights.Height(), img.Width(), img.Height())
	}
	var sum float64
	for y := 0; y < weights.Height(); y++ {
		for x := 0; x < weights.Width(); x++ {
			sum += weights.Sample(x, y, 0)
		}
	}
	return &drizzleImage{Image: img, weightSum: sum}, nil
}

var _ registry.Registry = (*NamedRegistry)(nil)
