package nn

import (
	"math"

	"github.com/born-ml/siamese/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Forward applies the element-wise function:
//
//	y = x * (x > 0)
//
// Backward uses the sign-based derivative
//
//	dy/dx = 0.5 * (sign(x) + 1)
//
// which is 1 for x > 0, 0 for x < 0 and 0.5 at exactly x == 0.
//
// Example:
//
//	relu := nn.NewReLU()
//	output := relu.Forward(input)  // All negative values become 0
type ReLU struct {
	input *tensor.Tensor
}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation and caches the input.
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	r.input = input
	return input.Map(func(x float32) float32 {
		if x > 0 {
			return x
		}
		return 0
	})
}

// Backward returns dL/dx = 0.5 * (sign(x) + 1) * dL/dy.
func (r *ReLU) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	mustHaveInput("relu", r.input)
	return r.input.Zip(gradOutput, func(x, g float32) float32 {
		return 0.5 * (sign(x) + 1) * g
	})
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
//
// Backward uses the cached output: dσ/dx = σ(x) * (1 - σ(x)).
type Sigmoid struct {
	output *tensor.Tensor
}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies Sigmoid activation.
func (s *Sigmoid) Forward(input *tensor.Tensor) *tensor.Tensor {
	s.output = input.Map(sigmoid)
	return s.output
}

// Backward returns dL/dx = σ(x)(1 - σ(x)) * dL/dy.
func (s *Sigmoid) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	mustHaveInput("sigmoid", s.output)
	return s.output.Zip(gradOutput, func(y, g float32) float32 {
		return y * (1 - y) * g
	})
}

// Parameters returns nil (Sigmoid has no trainable parameters).
func (s *Sigmoid) Parameters() []*Parameter {
	return nil
}

// Tanh is a hyperbolic tangent activation module.
//
// Backward uses the cached output: dtanh/dx = 1 - tanh(x)^2.
type Tanh struct {
	output *tensor.Tensor
}

// NewTanh creates a new Tanh activation module.
func NewTanh() *Tanh {
	return &Tanh{}
}

// Forward applies Tanh activation.
func (t *Tanh) Forward(input *tensor.Tensor) *tensor.Tensor {
	t.output = input.Map(func(x float32) float32 {
		return float32(math.Tanh(float64(x)))
	})
	return t.output
}

// Backward returns dL/dx = (1 - tanh(x)^2) * dL/dy.
func (t *Tanh) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	mustHaveInput("tanh", t.output)
	return t.output.Zip(gradOutput, func(y, g float32) float32 {
		return (1 - y*y) * g
	})
}

// Parameters returns nil (Tanh has no trainable parameters).
func (t *Tanh) Parameters() []*Parameter {
	return nil
}

func sign(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

// sigmoid is computed in the branch that cannot overflow exp.
func sigmoid(x float32) float32 {
	if x >= 0 {
		return float32(1 / (1 + math.Exp(-float64(x))))
	}
	e := math.Exp(float64(x))
	return float32(e / (1 + e))
}
