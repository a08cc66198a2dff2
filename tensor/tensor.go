// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/siamese/internal/tensor"
)

// Tensor is a dense, contiguous, row-major float32 tensor.
type Tensor = tensor.Tensor

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Backend defines the compute kernels that modules delegate to.
type Backend = tensor.Backend

// Device represents the compute device a tensor lives on.
type Device = tensor.Device

// CPU is the only supported device.
const CPU = tensor.CPU

// New wraps data in a tensor of the given shape without copying.
// It panics if len(data) does not match the shape.
func New(data []float32, shape Shape) *Tensor {
	return tensor.New(data, shape)
}

// FromSlice copies data into a new tensor, returning an error on a shape mismatch.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// RandUniform samples every element uniformly from [lo, hi).
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	w := tensor.RandUniform(tensor.Shape{25, 2}, -0.1, 0.1, rng)
func RandUniform(shape Shape, lo, hi float32, rng *rand.Rand) *Tensor {
	return tensor.RandUniform(shape, lo, hi, rng)
}

// Cat concatenates tensors along dim.
func Cat(tensors []*Tensor, dim int) *Tensor {
	return tensor.Cat(tensors, dim)
}
