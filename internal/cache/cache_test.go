package cache

import (
	"testing"

	"github.com/vahlkar/pixmath/internal/rasterimg"
	"github.com/vahlkar/pixmath/internal/registry"
)

func TestGetOrCreateIdempotent(t *testing.T) {
	c := New()
	builds := 0
	build := func() (registry.Image, error) {
		builds++
		return rasterimg.New(2, 2, 1), nil
	}

	first, err := c.GetOrCreate("k", build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("got cache size %d after first call, want 1", c.Len())
	}

	second, err := c.GetOrCreate("k", build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("got cache size %d after second call, want 1 (unchanged)", c.Len())
	}
	if builds != 1 {
		t.Errorf("build func called %d times, want 1", builds)
	}
	if first != second {
		t.Errorf("second call returned a different image than the first")
	}
}

func TestGetMissing(t *testing.T) {
	c := New()
	if _, ok := c.Get("nope"); ok {
		t.Error("Get on an empty cache reported a hit")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("gconv", "target", 2.0, 1, "0.01")
	b := Fingerprint("gconv", "target", 2.0, 1, "0.01")
	if a != b {
		t.Errorf("Fingerprint not deterministic: %q != %q", a, b)
	}
	c := Fingerprint("gconv", "target", 3.0, 1, "0.01")
	if a == c {
		t.Errorf("Fingerprint collided for different parameters: %q", a)
	}
}

func TestFingerprintOpaqueParam(t *testing.T) {
	type mask struct{ bits []bool }
	m := mask{bits: []bool{true, false, true}}
	a := Fingerprint("erode", "target", m)
	b := Fingerprint("erode", "target", m)
	if a != b {
		t.Errorf("opaque-parameter fingerprint not stable across calls: %q != %q", a, b)
	}
}
