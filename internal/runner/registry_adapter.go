// Package runner executes a compiled pipeline.Context's lowered programs
// over every pixel of a target image, dispatching independent row ranges
// as units of work across goroutines.
package runner

import "github.com/vahlkar/pixmath/internal/registry"

// compositeRegistry resolves named images against a caller-supplied
// registry first, then falls back to the run's image cache for the
// fingerprint-keyed synthetic images generators produced while parsing
//. Target() always defers to the named
// registry: "$T" never resolves to a generator's output.
type compositeRegistry struct {
	named  registry.Registry
	cacher interface {
		Get(key string) (registry.Image, bool)
	}
}

// NewCompositeRegistry builds the run-time registry adapter handed to the
// evaluator: named images resolve through named, and any identifier named
// doesn't know about falls through to the run's cache.
func NewCompositeRegistry(named registry.Registry, cacher interface {
	Get(key string) (registry.Image, bool)
}) registry.Registry {
	return &compositeRegistry{named: named, cacher: cacher}
}

func (r *compositeRegistry) Lookup(id string) (registry.Image, bool) {
	if img, ok := r.named.Lookup(id); ok {
		return img, true
	}
	return r.cacher.Get(id)
}

func (r *compositeRegistry) Target() registry.Image {
	return r.named.Target()
}
