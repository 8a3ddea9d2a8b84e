package ops

import "github.com/ember-ml/ember/internal/tensor"

// MatMulOp records output = a @ b for 2D matrices.
//
// Backward:
//
//	grad_a = outputGrad @ bᵀ
//	grad_b = aᵀ @ outputGrad
type MatMulOp struct{ binaryOp }

// NewMatMulOp creates a MatMulOp.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{binaryOp{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]

	bT := backend.Transpose(b, 1, 0)
	gradA := backend.MatMul(outputGrad, bT)

	aT := backend.Transpose(a, 1, 0)
	gradB := backend.MatMul(aT, outputGrad)

	return []*tensor.RawTensor{gradA, gradB}
}
