// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float32 tensor used throughout siamese.
//
// # Overview
//
// Tensors are row-major and always contiguous. This package provides:
//   - Construction helpers (New, FromSlice, Zeros, Ones, Full, RandUniform)
//   - Element-wise arithmetic (Map, Zip, Mul, Scale, AddInPlace)
//   - Slicing and concatenation along any dimension (Narrow, Cat)
//   - The Backend interface implemented by backend/cpu
//
// # Basic Usage
//
//	import "github.com/born-ml/siamese/tensor"
//
//	func main() {
//	    x := tensor.Zeros(tensor.Shape{2, 3})
//	    x.Set(1.5, 0, 2)
//	    y := x.Scale(2)
//	    fmt.Println(y.At(0, 2)) // 3
//	}
//
// # Errors
//
// Shape mismatches are programming errors and panic. FromSlice is the only
// constructor that reports a bad shape as an error.
package tensor
