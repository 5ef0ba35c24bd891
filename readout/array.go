package readout

import (
	"fmt"

	"github.com/arloliu/go-xspress/internal/util"
)

// Array is a dense row-major array of float64 tagged with its shape.
// Region arrays are 1-D, 2-D or 3-D depending on the region kind and grade count.
type Array struct {
	Shape []int
	Data  []float64
}

// NewArray allocates a zeroed array of the given shape.
func NewArray(shape ...int) Array {
	return Array{
		Shape: util.CloneSlice(shape, 0),
		Data:  make([]float64, util.Product(shape)),
	}
}

// Rank returns the number of dimensions.
func (a Array) Rank() int { return len(a.Shape) }

// Len returns the number of values.
func (a Array) Len() int { return len(a.Data) }

// At returns the value at the given index. It panics if the index does not match the shape.
func (a Array) At(idx ...int) float64 {
	return a.Data[a.offset(idx)]
}

// Row returns the innermost row addressed by the leading indices, sharing the array storage.
func (a Array) Row(idx ...int) []float64 {
	if len(idx) != len(a.Shape)-1 {
		panic(fmt.Sprintf("readout: row index rank %d for array of rank %d", len(idx), len(a.Shape)))
	}
	width := a.Shape[len(a.Shape)-1]
	start := a.offset(append(util.CloneSlice(idx, 0), 0))

	return a.Data[start : start+width : start+width]
}

func (a Array) offset(idx []int) int {
	if len(idx) != len(a.Shape) {
		panic(fmt.Sprintf("readout: index rank %d for array of rank %d", len(idx), len(a.Shape)))
	}
	off := 0
	for d, i := range idx {
		if i < 0 || i >= a.Shape[d] {
			panic(fmt.Sprintf("readout: index %d out of range [0, %d) in dimension %d", i, a.Shape[d], d))
		}
		off = off*a.Shape[d] + i
	}

	return off
}
