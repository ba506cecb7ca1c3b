// Package cache implements the image cache keyed by fingerprint → image:
// entries are created on first demand and reused within a run, and
// generator calls sharing a fingerprint must share one cached image.
package cache

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vahlkar/pixmath/internal/registry"
)

// Cache is safe for concurrent inserts during parallel parsing (// "generators that populate it under parallel parsing guard the insert with
// a mutex").
type Cache struct {
	mu      sync.Mutex
	entries map[string]registry.Image
}

// New returns an empty cache. Callers simply construct a fresh Cache per
// run rather than reusing one across runs.
func New() *Cache {
	return &Cache{entries: make(map[string]registry.Image)}
}

// Fingerprint assembles a deterministic cache key from the source image
// identifier and the full parameter tuple of the producing generator,
// formatted with fixed precision.
func Fingerprint(fn string, sourceImageID string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(fn)
	b.WriteByte('(')
	b.WriteString(sourceImageID)
	for _, p := range params {
		b.WriteByte(',')
		switch v := p.(type) {
		case float64:
			b.WriteString(strconv.FormatFloat(v, 'f', 6, 64))
		case int:
			b.WriteString(strconv.Itoa(v))
		case string:
			b.WriteString(v)
		default:
			// Opaque parameter types (e.g. a structuring-element mask) don't
			// have a stable, content-addressed %v form — a pointer prints
			// its address, which would make the fingerprint non-deterministic
			// across otherwise-identical runs. Derive a stable token from the
			// formatted value's content instead, via a name-based (not
			// random) UUID, so two equal masks still fingerprint identically.
			id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%#v", v)))
			b.WriteString(id.String())
		}
	}
	b.WriteByte(')')
	return b.String()
}

// GetOrCreate returns the cached image for key, creating it via build if
// absent. Two calls with the same key within one run return the same
// pointer and leave the cache size unchanged on the second call.
func (c *Cache) GetOrCreate(key string, build func() (registry.Image, error)) (registry.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.entries[key]; ok {
		return img, nil
	}
	img, err := build()
	if err != nil {
		return nil, err
	}
	c.entries[key] = img
	return img, nil
}

// Get returns a previously cached image by key without creating it. Used by
// the run-time registry adapter to resolve IMAGE_REF nodes that a generator
// rewrote to point at a fingerprint instead of a named image.
func (c *Cache) Get(key string) (registry.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.entries[key]
	return img, ok
}

// Len reports the number of distinct cached images, used by tests asserting
// cache idempotence.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
