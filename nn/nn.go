// Copyright 2025 Ember ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// Module is the interface all neural network layers implement.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named, trainable tensor with an optional gradient slot.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a named parameter from a tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear is a fully-connected layer computing y = x @ W^T + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a Linear layer with Xavier-initialized weights and
// zero bias.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	layer := nn.NewLinear(784, 128, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// ReLU applies the rectified linear unit element-wise.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// LogSoftmax applies a row-wise log-softmax over class scores.
type LogSoftmax[B tensor.Backend] = nn.LogSoftmax[B]

// NewLogSoftmax creates a LogSoftmax module.
func NewLogSoftmax[B tensor.Backend]() *LogSoftmax[B] {
	return nn.NewLogSoftmax[B]()
}

// Sequential chains modules, feeding each one's output to the next.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container.
//
// Example:
//
//	model := nn.NewSequential[*autodiff.Backend[*cpu.Backend]](
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[*autodiff.Backend[*cpu.Backend]](),
//	    nn.NewLinear(128, 10, backend),
//	    nn.NewLogSoftmax[*autodiff.Backend[*cpu.Backend]](),
//	)
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Losses

// NLLLoss computes the negative log-likelihood of log-probabilities
// against integer class targets.
type NLLLoss[B tensor.Backend] = nn.NLLLoss[B]

// NewNLLLoss creates an NLLLoss criterion.
func NewNLLLoss[B tensor.Backend](backend B) *NLLLoss[B] {
	return nn.NewNLLLoss(backend)
}

// CrossEntropyLoss fuses log-softmax and negative log-likelihood over
// raw logits.
type CrossEntropyLoss[B tensor.Backend] = nn.CrossEntropyLoss[B]

// NewCrossEntropyLoss creates a CrossEntropyLoss criterion.
func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return nn.NewCrossEntropyLoss(backend)
}

// Metrics

// Accuracy returns the fraction of rows whose argmax matches the target.
func Accuracy[B tensor.Backend](scores *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) float64 {
	return nn.Accuracy(scores, targets)
}

// Initializers

// Xavier returns a tensor initialized with Xavier/Glorot uniform values.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}
