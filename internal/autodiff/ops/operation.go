// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation captures its input and output tensors during the forward
// pass and knows how to turn a gradient with respect to its output into
// gradients with respect to its inputs. The tape walks recorded operations
// in reverse and chains these local rules together.
package ops

import "github.com/ember-ml/ember/internal/tensor"

// Operation is one recorded step of the forward computation.
type Operation interface {
	// Backward computes input gradients given the gradient of the loss
	// with respect to this operation's output. The returned slice is
	// parallel to Inputs().
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the tensors this operation consumed.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor this operation produced.
	Output() *tensor.RawTensor
}
