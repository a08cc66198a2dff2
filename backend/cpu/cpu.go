// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/siamese/internal/backend/cpu"
	"github.com/born-ml/siamese/internal/parallel"
	"github.com/born-ml/siamese/tensor"
)

// Backend represents the CPU backend implementation.
//
// Matrix products go through gonum's BLAS and convolutions are lowered to
// matrix products with im2col. Batches are split across a worker pool sized
// from the detected CPU.
type Backend = internalcpu.CPUBackend

// Config controls the worker pool of the backend.
type Config = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend using every physical core.
//
// Example:
//
//	import (
//	    "github.com/born-ml/siamese/backend/cpu"
//	    "github.com/born-ml/siamese/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    layer := nn.NewLinear(2, 25, backend, rng)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with an explicit worker pool configuration.
func NewWithConfig(cfg Config) *Backend {
	return internalcpu.NewWithConfig(cfg)
}
