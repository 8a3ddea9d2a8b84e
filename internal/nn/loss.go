package nn

import (
	"github.com/ember-ml/ember/internal/autodiff/ops"
	"github.com/ember-ml/ember/internal/tensor"
)

// NLLBackend is implemented by backends that record the negative
// log-likelihood loss for backpropagation.
type NLLBackend interface {
	NLLLoss(logProbs, targets *tensor.RawTensor) *tensor.RawTensor
}

// CrossEntropyBackend is implemented by backends that record the fused
// softmax + NLL loss from raw logits.
type CrossEntropyBackend interface {
	CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor
}

// NLLLoss computes the mean negative log-likelihood of log-probabilities
// against integer class targets:
//
//	loss = mean_b(-logProbs[b, targets[b]])
//
// It expects log-probabilities, i.e. a model ending in LogSoftmax. Targets
// outside [0, classes) panic: a bad label is a data bug, not a runtime
// condition.
type NLLLoss[B tensor.Backend] struct {
	backend B
}

// NewNLLLoss creates an NLL loss criterion.
func NewNLLLoss[B tensor.Backend](backend B) *NLLLoss[B] {
	return &NLLLoss[B]{backend: backend}
}

// Forward computes the scalar loss for logProbs [batch, classes] and
// targets [batch]. On an autodiff backend the operation is recorded for
// the backward pass; on a plain backend only the value is computed.
func (n *NLLLoss[B]) Forward(
	logProbs *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) *tensor.Tensor[float32, B] {
	if adBackend, ok := any(n.backend).(NLLBackend); ok {
		raw := adBackend.NLLLoss(logProbs.Raw(), targets.Raw())
		return tensor.New[float32, B](raw, n.backend)
	}
	return tensor.New[float32, B](ops.NLLForward(logProbs.Raw(), targets.Raw()), n.backend)
}

// CrossEntropyLoss computes the classification loss straight from logits,
// fusing the stabilized log-softmax with the NLL. Equivalent in value to
// LogSoftmax + NLLLoss; the fused backward rule (softmax - onehot)/batch
// makes it the cheaper choice when the model does not need
// log-probabilities as its output.
type CrossEntropyLoss[B tensor.Backend] struct {
	backend B
}

// NewCrossEntropyLoss creates a cross-entropy loss criterion.
func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return &CrossEntropyLoss[B]{backend: backend}
}

// Forward computes the scalar loss for logits [batch, classes] and
// targets [batch].
func (c *CrossEntropyLoss[B]) Forward(
	logits *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) *tensor.Tensor[float32, B] {
	if adBackend, ok := any(c.backend).(CrossEntropyBackend); ok {
		raw := adBackend.CrossEntropy(logits.Raw(), targets.Raw())
		return tensor.New[float32, B](raw, c.backend)
	}
	return tensor.New[float32, B](ops.CrossEntropyForward(logits.Raw(), targets.Raw()), c.backend)
}
