package autodiff

import (
	"github.com/ember-ml/ember/internal/autodiff/ops"
	"github.com/ember-ml/ember/internal/tensor"
)

// GradientTape records operations during the forward pass and replays them
// in reverse to compute gradients.
//
// Usage:
//
//	tape := NewGradientTape()
//	tape.StartRecording()
//	// ... forward pass ...
//	grads := tape.Backward(lossGrad, backend)
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

// NewGradientTape creates an empty tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 64),
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording reports whether operations are currently being recorded.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record appends an operation if the tape is recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// Clear drops all recorded operations. Recording state is preserved, so a
// training loop can Clear between steps without re-arming the tape.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Backward walks the tape in reverse, chaining each operation's local
// gradient rule and accumulating per-tensor gradients. outputGrad seeds
// the gradient of the final recorded operation's output, typically a ones
// tensor for a scalar loss.
//
// Gradients for tensors used by multiple operations accumulate by
// addition. The returned map is keyed by input tensor identity.
func (t *GradientTape) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	if len(t.operations) == 0 {
		return grads
	}

	// The gradient ops below must not themselves land on the tape.
	wasRecording := t.recording
	t.recording = false
	defer func() { t.recording = wasRecording }()

	lastOp := t.operations[len(t.operations)-1]
	grads[lastOp.Output()] = outputGrad

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			// No gradient flows through this operation's output.
			continue
		}

		inputGrads := op.Backward(outGrad, backend)
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}

	return grads
}
