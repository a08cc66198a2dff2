// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - gonum BLAS matrix multiplication
//   - Im2col algorithm for convolutions
//   - Batch processing across a worker pool
//
// # Basic Usage
//
//	backend := cpu.New()
//	fmt.Println(backend.Describe()) // e.g. "Intel(R) Xeon(R) ... (8 cores, AVX2, FMA3)"
//
// # Thread Safety
//
// The CPU backend holds no mutable state after construction and is safe
// for concurrent use.
package cpu
