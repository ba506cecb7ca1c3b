// Package structel provides the fixed structuring-element set used by the
// morphological generators erosion/dilation/medfilt.
package structel

import "fmt"

// Mask is a square boolean structuring element, row-major, Size x Size.
type Mask struct {
	Size int
	On   []bool // len == Size*Size
}

func (m Mask) At(x, y int) bool { return m.On[y*m.Size+x] }

// Build constructs the named structuring element at the given odd size
// (validator rule: "filter size is an odd integer >= 3").
func Build(name string, size int) (Mask, error) {
	if size < 3 || size%2 == 0 {
		return Mask{}, fmt.Errorf("structel: size must be an odd integer >= 3, got %d", size)
	}
	on := make([]bool, size*size)
	c := size / 2
	switch name {
	case "square":
		for i := range on {
			on[i] = true
		}
	case "circular":
		r := float64(c)
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				dx, dy := float64(x-c), float64(y-c)
				on[y*size+x] = dx*dx+dy*dy <= r*r+1e-9
			}
		}
	case "orthogonal":
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				on[y*size+x] = x == c || y == c
			}
		}
	case "diagonal":
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				on[y*size+x] = x == y || x+y == size-1
			}
		}
	case "star":
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				on[y*size+x] = x == c || y == c || x == y || x+y == size-1
			}
		}
	case "three-way":
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				on[y*size+x] = y == c || x == y
			}
		}
	default:
		return Mask{}, fmt.Errorf("structel: unknown structuring element %q", name)
	}
	return Mask{Size: size, On: on}, nil
}
