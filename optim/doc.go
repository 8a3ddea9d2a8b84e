// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient-based parameter optimizers.
//
// Optimizers consume the gradient map produced by autodiff's Backward
// and update parameters in place:
//
//	grads := backend.Backward(loss.Raw())
//	optimizer.Step(grads)
//	optimizer.ZeroGrad()
//
// SGD (optionally with momentum) and Adam are provided.
package optim
