package nn

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// ReLUBackend is implemented by backends providing a native rectifier.
type ReLUBackend interface {
	ReLU(*tensor.RawTensor) *tensor.RawTensor
}

// ReLU applies f(x) = max(0, x) element-wise.
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies the rectifier through the backend's ReLU so the
// operation lands on the gradient tape when one is recording.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()

	reluBackend, ok := any(backend).(ReLUBackend)
	if !ok {
		panic("relu: backend does not implement ReLU")
	}
	return tensor.New[float32, B](reluBackend.ReLU(input.Raw()), backend)
}

// Parameters returns nil; ReLU is parameter-free.
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// LogSoftmax converts logits to log-probabilities along the class
// dimension. Placing it as the final model layer pairs with NLLLoss to
// form the classification loss.
type LogSoftmax[B tensor.Backend] struct{}

// NewLogSoftmax creates a LogSoftmax module.
func NewLogSoftmax[B tensor.Backend]() *LogSoftmax[B] {
	return &LogSoftmax[B]{}
}

// Forward computes row-wise log-softmax of a [batch, classes] tensor.
func (l *LogSoftmax[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.LogSoftmax()
}

// Parameters returns nil; LogSoftmax is parameter-free.
func (l *LogSoftmax[B]) Parameters() []*Parameter[B] {
	return nil
}
