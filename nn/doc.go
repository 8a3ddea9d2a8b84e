// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers, losses, and metrics.
//
// Layers are Modules: they transform a tensor in Forward and expose
// their trainable Parameters. Sequential chains modules into a model.
//
// A typical classifier:
//
//	backend := autodiff.New(cpu.New())
//	model := nn.NewSequential[*autodiff.Backend[*cpu.Backend]](
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[*autodiff.Backend[*cpu.Backend]](),
//	    nn.NewLinear(128, 10, backend),
//	    nn.NewLogSoftmax[*autodiff.Backend[*cpu.Backend]](),
//	)
//	criterion := nn.NewNLLLoss(backend)
package nn
