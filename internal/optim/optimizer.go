// Package optim implements the optimization algorithms that turn gradients
// into parameter updates.
//
// Optimizers consume the gradient map produced by the tape's backward pass
// and mutate parameter data directly. Updates write straight into the
// parameter buffers, never through the backend, so they cannot land on a
// recording tape.
//
//	grads := backend.Backward(loss.Raw())
//	optimizer.Step(grads)
//	optimizer.ZeroGrad()
package optim

import (
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// Optimizer updates model parameters from a gradient map.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient in
	// the map. Parameters absent from the map are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears the gradient slot of every managed parameter.
	// Call it before each training step so gradients never accumulate
	// across batches.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// getGradient looks up the gradient recorded for a parameter's tensor.
// Returns nil when the parameter took no part in the forward pass.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
