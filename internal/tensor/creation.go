package tensor

import (
	"fmt"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("zeros: %v", err))
	}
	return &Tensor{shape: shape.Clone(), data: make([]float32, shape.NumElements()), device: CPU}
}

// ZerosLike creates a zero tensor with the same shape as t.
func ZerosLike(t *Tensor) *Tensor {
	return Zeros(t.shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// RandUniform creates a tensor with values drawn uniformly from [lo, hi).
//
// A nil rng uses the global math/rand source.
func RandUniform(shape Shape, lo, hi float32, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	span := float64(hi - lo)
	for i := range t.data {
		var u float64
		if rng != nil {
			u = rng.Float64()
		} else {
			//nolint:gosec // Weight initialization is not security-critical.
			u = rand.Float64()
		}
		t.data[i] = lo + float32(u*span)
	}
	return t
}
