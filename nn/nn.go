// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/siamese/internal/nn"
	"github.com/born-ml/siamese/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module = nn.Module

// Parameter represents a trainable parameter in a neural network.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// ZeroGrad clears the gradient of every parameter.
func ZeroGrad(params []*Parameter) {
	nn.ZeroGrad(params)
}

// CountParameters returns the number of scalar weights in m.
func CountParameters(m Module) int {
	return nn.CountParameters(m)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(784, 128, backend, rng)
func NewLinear(inFeatures, outFeatures int, backend tensor.Backend, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, backend, rng)
}

// Conv2D represents a 2D convolutional layer.
type Conv2D = nn.Conv2D

// NewConv2D creates a new 2D convolutional layer.
//
// Example:
//
//	conv := nn.NewConv2D(1, 32, 3, 3, 1, 1, true, backend, rng) // 3x3 kernel, stride 1, padding 1
func NewConv2D(
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	backend tensor.Backend,
	rng *rand.Rand,
) *Conv2D {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, backend, rng)
}

// MaxPool2D represents a 2D max pooling layer.
type MaxPool2D = nn.MaxPool2D

// NewMaxPool2D creates a new 2D max pooling layer.
func NewMaxPool2D(kernelSize, stride int, backend tensor.Backend) *MaxPool2D {
	return nn.NewMaxPool2D(kernelSize, stride, backend)
}

// Flatten reshapes [N, ...] to [N, features].
type Flatten = nn.Flatten

// NewFlatten creates a new flatten layer.
func NewFlatten() *Flatten {
	return nn.NewFlatten()
}

// Activations

// ReLU represents the Rectified Linear Unit activation function.
type ReLU = nn.ReLU

// NewReLU creates a new ReLU activation layer.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Sigmoid represents the logistic activation function.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a new sigmoid activation layer.
func NewSigmoid() *Sigmoid {
	return nn.NewSigmoid()
}

// Tanh represents the hyperbolic tangent activation function.
type Tanh = nn.Tanh

// NewTanh creates a new tanh activation layer.
func NewTanh() *Tanh {
	return nn.NewTanh()
}

// Containers

// Sequential chains modules, running Backward in reverse order.
type Sequential = nn.Sequential

// NewSequential creates a new sequential container.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Loss functions

// MSELoss is the mean squared error over all elements.
type MSELoss = nn.MSELoss

// NewMSELoss creates a new MSE loss.
func NewMSELoss() *MSELoss {
	return nn.NewMSELoss()
}

// BCELoss is the binary cross-entropy on probabilities.
type BCELoss = nn.BCELoss

// NewBCELoss creates a new binary cross-entropy loss.
func NewBCELoss() *BCELoss {
	return nn.NewBCELoss()
}

// CrossEntropyLoss is softmax cross-entropy on logits and integer labels.
type CrossEntropyLoss = nn.CrossEntropyLoss

// NewCrossEntropyLoss creates a new cross-entropy loss.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return nn.NewCrossEntropyLoss()
}

// Predictions returns the arg-max class of every row of logits.
func Predictions(logits *tensor.Tensor) []int {
	return nn.Predictions(logits)
}
