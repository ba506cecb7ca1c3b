package rasterimg

import (
	"math"
	"testing"
)

func TestSampleOutOfBoundsIsZero(t *testing.T) {
	im := New(2, 2, 1)
	im.Set(0, 0, 0, 1)
	if got := im.Sample(-1, 0, 0); got != 0 {
		t.Errorf("negative x: got %v, want 0", got)
	}
	if got := im.Sample(0, 2, 0); got != 0 {
		t.Errorf("y past bound: got %v, want 0", got)
	}
}

func TestStatistics(t *testing.T) {
	im := New(4, 1, 1)
	vals := []float64{1, 2, 3, 4}
	for x, v := range vals {
		im.Set(x, 0, 0, v)
	}

	if got := im.Min(0); got != 1 {
		t.Errorf("Min: got %v, want 1", got)
	}
	if got := im.Max(0); got != 4 {
		t.Errorf("Max: got %v, want 4", got)
	}
	if got := im.Mean(0); got != 2.5 {
		t.Errorf("Mean: got %v, want 2.5", got)
	}
	if got := im.Median(0); got != 2.5 {
		t.Errorf("Median: got %v, want 2.5", got)
	}
	if got := im.Modulus(0); got != 10 {
		t.Errorf("Modulus (sum): got %v, want 10", got)
	}
	wantSDev := math.Sqrt(((1.5*1.5)*2 + (0.5*0.5)*2) / 4)
	if got := im.SDev(0); math.Abs(got-wantSDev) > 1e-12 {
		t.Errorf("SDev: got %v, want %v", got, wantSDev)
	}
}

func TestStatisticsComputedOnce(t *testing.T) {
	im := New(2, 1, 1)
	im.Set(0, 0, 0, 1)
	im.Set(1, 0, 0, 3)
	first := im.Mean(0)
	// Mutate the backing data directly; a correctly cached statFor should
	// not notice, since it's computed only once via sync.Once.
	im.Data[0][0] = 100
	second := im.Mean(0)
	if first != second {
		t.Errorf("Mean changed after sync.Once should have cached it: %v != %v", first, second)
	}
}

func TestAreaAndInvArea(t *testing.T) {
	im := New(3, 2, 1)
	if got := im.Area(); got != 6 {
		t.Errorf("Area: got %v, want 6", got)
	}
	if got := im.InvArea(); math.Abs(got-1.0/6) > 1e-12 {
		t.Errorf("InvArea: got %v, want %v", got, 1.0/6)
	}
}

func TestChannelsAndIsColor(t *testing.T) {
	gray := New(1, 1, 1)
	if gray.Channels() != 1 || gray.IsColor() {
		t.Error("1-channel image should report Channels()==1 and IsColor()==false")
	}
	rgb := New(1, 1, 3)
	if rgb.Channels() != 3 || !rgb.IsColor() {
		t.Error("3-channel image should report Channels()==3 and IsColor()==true")
	}
}
