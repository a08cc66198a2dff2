// Package tensor implements the dense float32 tensor used by every module in this repository.
//
// Tensors are row-major and always contiguous. Shape mismatches are programming errors and
// panic with an "op: ..." message; file and configuration errors elsewhere are returned.
package tensor

import (
	"fmt"
	"strings"
)

// Device represents the compute device a tensor lives on.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// Tensor is a dense, contiguous, row-major float32 tensor.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{2, 3})
//	x.Set(1.5, 0, 2)
//	v := x.At(0, 2) // 1.5
type Tensor struct {
	shape  Shape
	data   []float32
	device Device
}

// New wraps data as a tensor of the given shape without copying.
//
// Panics if len(data) does not match the shape.
func New(data []float32, shape Shape) *Tensor {
	if shape.NumElements() != len(data) {
		panic(fmt.Sprintf("tensor: shape %v requires %d elements, got %d", shape, shape.NumElements(), len(data)))
	}
	return &Tensor{shape: shape.Clone(), data: data, device: CPU}
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	buf := make([]float32, len(data))
	copy(buf, data)
	return &Tensor{shape: shape.Clone(), data: buf, device: CPU}, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Device returns the device holding the tensor.
func (t *Tensor) Device() Device {
	return t.device
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the underlying storage. Writes are visible to the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// Item returns the single value of a one-element tensor.
func (t *Tensor) Item() float32 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("item: tensor has %d elements, expected 1", len(t.data)))
	}
	return t.data[0]
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) float32 {
	return t.data[t.offset(indices)]
}

// Set writes value at the given indices.
func (t *Tensor) Set(value float32, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("index: expected %d indices, got %d", len(t.shape), len(indices)))
	}
	strides := t.shape.ComputeStrides()
	off := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index: %d out of range for dimension %d of size %d", idx, i, t.shape[i]))
		}
		off += idx * strides[i]
	}
	return off
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	buf := make([]float32, len(t.data))
	copy(buf, t.data)
	return &Tensor{shape: t.shape.Clone(), data: buf, device: t.device}
}

// Reshape returns a view of the same storage with a new shape.
//
// A single dimension may be -1 and is inferred from the others.
func (t *Tensor) Reshape(shape Shape) *Tensor {
	shape = shape.Clone()
	infer := -1
	known := 1
	for i, d := range shape {
		if d == -1 {
			if infer >= 0 {
				panic("reshape: only one dimension can be -1")
			}
			infer = i
			continue
		}
		known *= d
	}
	if infer >= 0 {
		if known == 0 || len(t.data)%known != 0 {
			panic(fmt.Sprintf("reshape: cannot infer dimension for %v from %d elements", shape, len(t.data)))
		}
		shape[infer] = len(t.data) / known
	}
	if shape.NumElements() != len(t.data) {
		panic(fmt.Sprintf("reshape: cannot reshape %v into %v", t.shape, shape))
	}
	return &Tensor{shape: shape, data: t.data, device: t.device}
}

// String returns a short description, not the full contents.
func (t *Tensor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tensor(shape=%v, device=%s", t.shape, t.device)
	if len(t.data) <= 8 {
		fmt.Fprintf(&sb, ", data=%v", t.data)
	}
	sb.WriteString(")")
	return sb.String()
}
