package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/siamese/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	bound := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	return tensor.RandUniform(shape, -bound, bound, rng)
}

// FanInUniform draws from U(-1/sqrt(fan_in), 1/sqrt(fan_in)).
//
// This is what PyTorch's Linear and Conv2d default initialization reduces to
// (kaiming_uniform with a=sqrt(5)) and is used for both weights and biases.
func FanInUniform(fanIn int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	bound := float32(1 / math.Sqrt(float64(fanIn)))
	return tensor.RandUniform(shape, -bound, bound, rng)
}
