package nn

import (
	"github.com/born-ml/siamese/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input. Backward walks the
// chain in reverse, feeding each module the gradient returned by its successor.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(2, 25, backend, rng),
//	    nn.NewReLU(),
//	    nn.NewLinear(25, 2, backend, rng),
//	)
//
//	output := model.Forward(input)
//	gradInput := model.Backward(gradOutput)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Backward applies every module's Backward in reverse order.
func (s *Sequential) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	grad := gradOutput
	for i := len(s.modules) - 1; i >= 0; i-- {
		grad = s.modules[i].Backward(grad)
	}
	return grad
}

// Parameters returns all trainable parameters from all modules.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
//
// This allows building models incrementally:
//
//	model := nn.NewSequential()
//	for i := 0; i < nbHidden; i++ {
//	    model.Add(nn.NewLinear(in, hidden, backend, rng))
//	    model.Add(nn.NewReLU())
//	}
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Modules returns the contained modules.
func (s *Sequential) Modules() []Module {
	return s.modules
}
