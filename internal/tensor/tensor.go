// Dense float32 tensors with explicit shape and channel layout
package tensor

import (
	"errors"
	"fmt"
)

// ErrBufferSizeMismatch is returned when two buffers that must line up
// element for element do not.
var ErrBufferSizeMismatch = errors.New("buffer size mismatch")

// Layout describes how channels are arranged in Data.
type Layout int

const (
	// Planar stores each channel as a contiguous H*W plane (NCHW).
	Planar Layout = iota
	// Interleaved stores channel triplets per pixel (NHWC).
	Interleaved
)

func (l Layout) String() string {
	if l == Interleaved {
		return "interleaved"
	}
	return "planar"
}

// Shape is a batch/channel/height/width quadruple. The order of the fields
// is logical and independent of Layout.
type Shape struct {
	N, C, H, W int
}

// Len returns the number of elements described by the shape.
func (s Shape) Len() int {
	return s.N * s.C * s.H * s.W
}

// Dims returns the shape in NCHW order as int64, the form model runtimes expect.
func (s Shape) Dims() []int64 {
	return []int64{int64(s.N), int64(s.C), int64(s.H), int64(s.W)}
}

func (s Shape) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", s.N, s.C, s.H, s.W)
}

// ShapeFromDims builds a Shape from a four-element NCHW slice.
func ShapeFromDims(dims []int) (Shape, error) {
	if len(dims) != 4 {
		return Shape{}, fmt.Errorf("expected 4 dims, got %d: %v", len(dims), dims)
	}
	return Shape{N: dims[0], C: dims[1], H: dims[2], W: dims[3]}, nil
}

type Tensor struct {
	Shape  Shape
	Layout Layout
	Data   []float32
}

// New allocates a zeroed tensor.
func New(shape Shape, layout Layout) *Tensor {
	return &Tensor{Shape: shape, Layout: layout, Data: make([]float32, shape.Len())}
}

// FromData wraps data, checking that its length matches shape.
func FromData(shape Shape, layout Layout, data []float32) (*Tensor, error) {
	if len(data) != shape.Len() {
		return nil, fmt.Errorf("%w: shape %s needs %d elements, got %d",
			ErrBufferSizeMismatch, shape, shape.Len(), len(data))
	}
	return &Tensor{Shape: shape, Layout: layout, Data: data}, nil
}

// Full returns a tensor with every element set to v.
func Full(shape Shape, layout Layout, v float32) *Tensor {
	t := New(shape, layout)
	for i := range t.Data {
		t.Data[i] = v
	}
	return t
}

func (t *Tensor) Len() int {
	return len(t.Data)
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.Data))
	copy(data, t.Data)
	return &Tensor{Shape: t.Shape, Layout: t.Layout, Data: data}
}

// Validate checks that Data agrees with Shape.
func (t *Tensor) Validate() error {
	if t == nil {
		return errors.New("nil tensor")
	}
	if len(t.Data) != t.Shape.Len() {
		return fmt.Errorf("%w: shape %s needs %d elements, got %d",
			ErrBufferSizeMismatch, t.Shape, t.Shape.Len(), len(t.Data))
	}
	return nil
}

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float32) float32 {
	if v != v || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
