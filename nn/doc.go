// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear, Conv2D, MaxPool2D, Flatten
//   - Activations: ReLU, Sigmoid, Tanh
//   - Loss functions: MSELoss, BCELoss, CrossEntropyLoss
//   - Utilities: Sequential, Module interface, Parameter
//
// Every module implements its own Backward. There is no tape: a Forward call
// caches what the matching Backward needs, and Backward accumulates
// gradients into the module's parameters.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/siamese/backend/cpu"
//	    "github.com/born-ml/siamese/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    rng := rand.New(rand.NewSource(0))
//
//	    model := nn.NewSequential(
//	        nn.NewLinear(2, 25, backend, rng),
//	        nn.NewReLU(),
//	        nn.NewLinear(25, 2, backend, rng),
//	    )
//
//	    criterion := nn.NewMSELoss()
//	    loss := criterion.Forward(model.Forward(x), y)
//	    model.Backward(criterion.Backward())
//	}
package nn
