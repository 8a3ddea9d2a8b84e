// Package nn implements the neural network building blocks: the Module
// interface, trainable parameters, the fully connected layer, activations,
// loss functions and the Sequential container.
//
// Modules compose into classifiers the PyTorch way, adapted to Go
// generics:
//
//	model := nn.NewSequential[B](
//	    nn.NewLinear(784, 128, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear(128, 10, backend),
//	    nn.NewLogSoftmax[B](),
//	)
package nn

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// Module is the interface all network components implement.
type Module[B tensor.Backend] interface {
	// Forward computes the module's output for the given input. Shape
	// expectations are module-specific; Linear wants [batch, features].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns the module's trainable parameters, nested
	// modules included. Parameter-free modules return nil.
	Parameters() []*Parameter[B]
}
