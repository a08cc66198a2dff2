// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - StepLR: step-wise learning rate decay
//
// Optimizers read the gradients accumulated on nn.Parameter by the modules'
// Backward methods.
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//	scheduler := optim.NewStepLR(optimizer, optim.StepLRConfig{StepSize: 1, Gamma: 0.9})
//
//	for epoch := range epochs {
//	    for _, batch := range batches {
//	        optimizer.ZeroGrad()
//	        out := model.Forward(batch.Inputs)
//	        loss := criterion.Forward(out, batch.Targets)
//	        model.Backward(criterion.Backward())
//	        optimizer.Step()
//	    }
//	    scheduler.Step()
//	}
package optim

import "github.com/born-ml/siamese/internal/nn"

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient.
	// Parameters without a gradient (not reached by Backward) are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// This should be called before each backward pass to prevent
	// gradient accumulation from previous iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR updates the learning rate. Used by schedulers.
	SetLR(lr float32)
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// dedupe removes repeated parameters so a shared module is updated once per Step.
func dedupe(params []*nn.Parameter) []*nn.Parameter {
	seen := make(map[*nn.Parameter]struct{}, len(params))
	out := make([]*nn.Parameter, 0, len(params))
	for _, p := range params {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
