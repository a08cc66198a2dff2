// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - StepLR: step-wise learning rate decay
//   - Optimizer and LRScheduler interfaces
//
// Optimizers update the parameters they were built with, reading the
// gradients that Backward accumulated on them. A parameter passed twice is
// updated once per Step.
//
// # Training Loop Pattern
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//	scheduler := optim.NewStepLR(optimizer, optim.StepLRConfig{StepSize: 1, Gamma: 0.9})
//
//	for epoch := range numEpochs {
//	    for _, batch := range batches {
//	        // 1. Zero gradients
//	        optimizer.ZeroGrad()
//
//	        // 2. Forward pass
//	        loss := criterion.Forward(model.Forward(batch.Input), batch.Target)
//
//	        // 3. Backward pass
//	        model.Backward(criterion.Backward())
//
//	        // 4. Update parameters
//	        optimizer.Step()
//	    }
//	    scheduler.Step()
//	}
package optim
