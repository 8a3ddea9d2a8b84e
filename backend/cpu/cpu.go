// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/tensor"
)

// Backend represents the CPU backend implementation.
//
// The CPU backend provides pure Go implementations of all tensor
// operations, parallelized across cores with chunk sizes tuned to the
// detected SIMD capabilities.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/ember-ml/ember/backend/cpu"
//	    "github.com/ember-ml/ember/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}
