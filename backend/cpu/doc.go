// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - BLAS-backed float32 matrix multiplication
//   - Float32 and Float64 support
//   - NumPy-compatible broadcasting
//   - Worker-pool parallelism sized by detected SIMD features
//
// # Basic Usage
//
//	import (
//	    "github.com/ember-ml/ember/backend/cpu"
//	    "github.com/ember-ml/ember/tensor"
//	    "github.com/ember-ml/ember/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//
//	    model := nn.NewLinear(784, 10, backend)
//	    _ = model
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation is
// isolated and does not share mutable state.
package cpu
