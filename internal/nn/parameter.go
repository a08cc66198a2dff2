package nn

import (
	"fmt"

	"github.com/born-ml/siamese/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are tensors that receive gradients during Backward.
// They typically represent weights and biases of layers.
//
// Example:
//
//	weight := nn.NewParameter("linear.weight", w)
//	model.Backward(grad)
//	g := weight.Grad() // accumulated dL/dweight
type Parameter struct {
	name   string         // Parameter name (e.g., "weight", "bias")
	tensor *tensor.Tensor // The parameter tensor
	grad   *tensor.Tensor // Accumulated gradient, nil until the first Backward
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been accumulated since the last ZeroGrad.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// Accumulate adds g to the parameter gradient.
//
// Gradients add up across Backward calls, which is what makes a module reused
// in several places of a graph receive the sum of its contributions.
func (p *Parameter) Accumulate(g *tensor.Tensor) {
	if !g.Shape().Equal(p.tensor.Shape()) {
		panic(fmt.Sprintf("parameter %s: gradient shape %v != parameter shape %v", p.name, g.Shape(), p.tensor.Shape()))
	}
	if p.grad == nil {
		p.grad = g.Clone()
		return
	}
	p.grad.AddInPlace(g)
}

// ZeroGrad clears the gradient tensor.
//
// This should be called before each training iteration to avoid
// accumulating gradients from previous iterations.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}
