// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation
// (backpropagation) using a gradient tape. It wraps any backend to add
// autodiff capabilities.
//
// Example:
//
//	import (
//	    "github.com/ember-ml/ember/autodiff"
//	    "github.com/ember-ml/ember/backend/cpu"
//	    "github.com/ember-ml/ember/tensor"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    backend.Tape().StartRecording()
//
//	    x := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    y := x.Mul(x) // recorded on the tape
//
//	    grads := backend.Backward(y.Raw())
//	    _ = grads[x.Raw()]
//	}
package autodiff

import (
	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/tensor"
)

// Backend is the autodiff-enabled backend decorator.
type Backend[B tensor.Backend] = autodiff.AutodiffBackend[B]

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New[B tensor.Backend](backend B) *Backend[B] {
	return autodiff.New(backend)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}
