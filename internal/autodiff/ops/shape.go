package ops

import "github.com/ember-ml/ember/internal/tensor"

// ReshapeOp records output = reshape(input).
//
// Reshape moves no data, so the backward pass just reshapes the output
// gradient back to the input's shape. Recording it matters: the backend
// returns a new tensor, and without the tape entry a gradient computed for
// the reshaped view would never reach the original parameter.
type ReshapeOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReshapeOp creates a ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{input: input, output: output}
}

// Backward reshapes the output gradient to the input's shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}

// Inputs returns the input tensor.
func (op *ReshapeOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the reshaped tensor.
func (op *ReshapeOp) Output() *tensor.RawTensor {
	return op.output
}

// TransposeOp records output = transpose(input, axes).
//
// The backward pass applies the inverse permutation to the output gradient.
// Like Reshape, the backend materializes transposes as new tensors, so the
// op must be on the tape for parameter gradients to resolve. The linear
// layer hits this every step: it multiplies by the transposed weight, and
// the optimizer needs the gradient keyed by the original weight tensor.
type TransposeOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	axes   []int
}

// NewTransposeOp creates a TransposeOp.
func NewTransposeOp(input, output *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{input: input, output: output, axes: axes}
}

// Backward applies the inverse axis permutation to the output gradient.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverse[ax] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}

// Inputs returns the input tensor.
func (op *TransposeOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the transposed tensor.
func (op *TransposeOp) Output() *tensor.RawTensor {
	return op.output
}
