package api

import (
	"errors"
	"fmt"
)

// Array is a dense row-major float64 array with named dimensions. The last
// dimension varies fastest in Data.
type Array struct {
	Shape []int
	Dims  []string
	Data  []float64
}

var ErrIndex = errors.New("index out of range")

// NewArray allocates a zeroed array of the given shape.
func NewArray(shape []int, dims []string) *Array {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Array{
		Shape: append([]int(nil), shape...),
		Dims:  append([]string(nil), dims...),
		Data:  make([]float64, n),
	}
}

// Len returns the total element count.
func (a *Array) Len() int {
	n := 1
	for _, s := range a.Shape {
		n *= s
	}
	return n
}

// Rank returns the number of dimensions.
func (a *Array) Rank() int {
	return len(a.Shape)
}

// Strides returns the row-major stride of each dimension, in elements.
func (a *Array) Strides() []int {
	strides := make([]int, len(a.Shape))
	stride := 1
	for i := len(a.Shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= a.Shape[i]
	}
	return strides
}

// At returns the element at the given multi-index.
func (a *Array) At(index ...int) (float64, error) {
	off, err := a.offset(index)
	if err != nil {
		return 0, err
	}
	return a.Data[off], nil
}

// Set stores the element at the given multi-index.
func (a *Array) Set(v float64, index ...int) error {
	off, err := a.offset(index)
	if err != nil {
		return err
	}
	a.Data[off] = v
	return nil
}

func (a *Array) offset(index []int) (int, error) {
	if len(index) != len(a.Shape) {
		return 0, fmt.Errorf("%w: got %d indices for rank %d", ErrIndex, len(index), len(a.Shape))
	}
	off := 0
	for i, strides := 0, a.Strides(); i < len(index); i++ {
		if index[i] < 0 || index[i] >= a.Shape[i] {
			return 0, fmt.Errorf("%w: index %d out of [0,%d) on axis %q",
				ErrIndex, index[i], a.Shape[i], a.Dims[i])
		}
		off += index[i] * strides[i]
	}
	return off, nil
}

// ShapeEquals reports whether two shapes are identical.
func ShapeEquals(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
