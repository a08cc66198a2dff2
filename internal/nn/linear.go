package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/siamese/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Backward:
//
//	dW += dy.T @ x
//	db += sum over batch of dy
//	dx  = dy @ W
//
// Example:
//
//	layer := nn.NewLinear(196, 64, backend, rng)
//	output := layer.Forward(input)  // [batch, 196] -> [batch, 64]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]
	backend     tensor.Backend

	input *tensor.Tensor
}

// NewLinear creates a new Linear layer.
//
// Weights and biases are drawn from U(-1/sqrt(in), 1/sqrt(in)).
// A nil rng uses the global math/rand source.
func NewLinear(inFeatures, outFeatures int, backend tensor.Backend, rng *rand.Rand) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("linear.weight", FanInUniform(inFeatures, tensor.Shape{outFeatures, inFeatures}, rng)),
		bias:        NewParameter("linear.bias", FanInUniform(inFeatures, tensor.Shape{outFeatures}, rng)),
		backend:     backend,
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features].
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 2 || shape[1] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected input [batch, %d], got %v", l.inFeatures, shape))
	}
	l.input = input

	output := l.backend.MatMul(input, l.weight.Tensor(), false, true)
	out, b := output.Data(), l.bias.Tensor().Data()
	for i := 0; i < shape[0]; i++ {
		row := out[i*l.outFeatures : (i+1)*l.outFeatures]
		for j := range row {
			row[j] += b[j]
		}
	}
	return output
}

// Backward accumulates dW and db and returns dL/dx.
func (l *Linear) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	mustHaveInput("linear", l.input)
	batch := l.input.Shape()[0]
	if !gradOutput.Shape().Equal(tensor.Shape{batch, l.outFeatures}) {
		panic(fmt.Sprintf("linear: grad shape %v, expected [%d, %d]", gradOutput.Shape(), batch, l.outFeatures))
	}

	l.weight.Accumulate(l.backend.MatMul(gradOutput, l.input, true, false))

	db := tensor.Zeros(tensor.Shape{l.outFeatures})
	gd, dbd := gradOutput.Data(), db.Data()
	for i := 0; i < batch; i++ {
		for j := 0; j < l.outFeatures; j++ {
			dbd[j] += gd[i*l.outFeatures+j]
		}
	}
	l.bias.Accumulate(db)

	return l.backend.MatMul(gradOutput, l.weight.Tensor(), false, false)
}

// Parameters returns the weight and bias parameters.
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
