// pkg/tensor/tensor.go
package tensor

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrShapeMismatch = errors.New("tensor: shape mismatch")
	ErrInvalidShape  = errors.New("tensor: invalid shape")
	ErrInvalidTensor = errors.New("tensor: invalid tensor")
	ErrIndex         = errors.New("tensor: index out of range")
)

// Tensor is a dense row-major array of float64 values.
// The zero value is not a valid tensor; use New, Scalar or Vector.
type Tensor struct {
	shape  []int
	values []float64
}

// New copies shape and values into a tensor, checking that the element count
// matches the shape.
func New(shape []int, values []float64) (*Tensor, error) {
	n, err := elements(shape)
	if err != nil {
		return nil, err
	}
	if n != len(values) {
		return nil, fmt.Errorf("%w: shape %v holds %d values, got %d", ErrShapeMismatch, shape, n, len(values))
	}
	return &Tensor{
		shape:  append([]int{}, shape...),
		values: append([]float64{}, values...),
	}, nil
}

// Must panics on error; handy for literals in tests and demo functions.
func Must(t *Tensor, err error) *Tensor {
	if err != nil {
		panic(err)
	}
	return t
}

func Scalar(v float64) *Tensor { return &Tensor{shape: []int{}, values: []float64{v}} }

func Vector(values []float64) *Tensor {
	return &Tensor{shape: []int{len(values)}, values: append([]float64{}, values...)}
}

// Shape returns a copy of the dimensions.
func (t *Tensor) Shape() []int { return append([]int{}, t.shape...) }

// Values returns a copy of the flat row-major values.
func (t *Tensor) Values() []float64 { return append([]float64{}, t.values...) }

func (t *Tensor) Rank() int { return len(t.shape) }
func (t *Tensor) Size() int { return len(t.values) }

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(idx ...int) (float64, error) {
	if len(idx) != len(t.shape) {
		return 0, fmt.Errorf("%w: rank %d, got %d indices", ErrIndex, len(t.shape), len(idx))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= t.shape[i] {
			return 0, fmt.Errorf("%w: index %d is %d, dim is %d", ErrIndex, i, x, t.shape[i])
		}
		off = off*t.shape[i] + x
	}
	return t.values[off], nil
}

// Reshape returns a tensor sharing no memory with t, with the same values in a
// new shape.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	return New(shape, t.values)
}

func (t *Tensor) Equal(o *Tensor) bool {
	if t == nil || o == nil {
		return t == o
	}
	return slices.Equal(t.shape, o.shape) && slices.Equal(t.values, o.values)
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v%v", t.shape, t.values)
}

// Validate reports whether t satisfies the shape/value invariant.
func (t *Tensor) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil", ErrInvalidTensor)
	}
	n, err := elements(t.shape)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTensor, err)
	}
	if n != len(t.values) {
		return fmt.Errorf("%w: shape %v holds %d values, has %d", ErrInvalidTensor, t.shape, n, len(t.values))
	}
	return nil
}

// elements is the product of the dimensions; an empty shape is a scalar.
func elements(shape []int) (int, error) {
	n := 1
	for i, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: dim %d is negative (%d)", ErrInvalidShape, i, d)
		}
		if d != 0 && n > math.MaxInt32/d {
			// No value list can match such a shape.
			return 0, fmt.Errorf("%w: %w: %v is too large", ErrShapeMismatch, ErrInvalidShape, shape)
		}
		n *= d
	}
	return n, nil
}
