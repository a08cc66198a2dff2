// Package nn implements a neural network module system with hand-written backward passes.
//
// This package provides building blocks for constructing neural networks:
//   - Module interface: Forward, Backward and Parameters
//   - Parameter: Trainable value with an accumulated gradient
//   - Linear, Conv2D, MaxPool2D, Flatten: layers
//   - Activations: ReLU, Sigmoid, Tanh
//   - Loss functions: MSE, BCE, CrossEntropy
//   - Sequential: Container for stacking layers
//
// There is no automatic differentiation. Every module caches what its local
// derivative needs during Forward and applies the analytic derivative in Backward.
//
// Design inspired by PyTorch's nn.Module.
package nn

import "github.com/born-ml/siamese/internal/tensor"

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input, caching what Backward needs
//   - Backward: Given dL/doutput, accumulate parameter gradients and return dL/dinput
//   - Parameters: Return all trainable parameters
//
// Backward always refers to the most recent Forward call. Calling Backward
// before Forward panics.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(196, 64, backend, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(64, 10, backend, rng),
//	)
//	logits := model.Forward(x)
//	loss := criterion.Forward(logits, labels)
//	model.Backward(criterion.Backward())
type Module interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor) *tensor.Tensor

	// Backward computes the gradient of the loss with respect to the input
	// of the last Forward call. Parameter gradients are accumulated, not overwritten.
	Backward(gradOutput *tensor.Tensor) *tensor.Tensor

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter
}

// ZeroGrad clears the gradients of every parameter.
func ZeroGrad(params []*Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// CountParameters returns the number of scalar trainable values in m.
func CountParameters(m Module) int {
	n := 0
	for _, p := range m.Parameters() {
		n += p.Tensor().NumElements()
	}
	return n
}

func mustHaveInput(op string, input *tensor.Tensor) {
	if input == nil {
		panic(op + ": Backward called before Forward")
	}
}
