package ops

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// ReLUOp records output = max(0, input).
//
// Backward: the gradient passes through where the input was positive and
// is zero elsewhere. The subgradient at exactly zero is taken as zero.
type ReLUOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewReLUOp creates a ReLUOp.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{input: input, output: output}
}

// Backward masks the output gradient by the sign of the input.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad, err := tensor.NewRaw(op.input.Shape(), op.input.DType(), op.input.Device())
	if err != nil {
		panic(fmt.Sprintf("relu backward: %v", err))
	}

	switch op.input.DType() {
	case tensor.Float32:
		in, g, out := op.input.AsFloat32(), outputGrad.AsFloat32(), grad.AsFloat32()
		for i, v := range in {
			if v > 0 {
				out[i] = g[i]
			}
		}
	case tensor.Float64:
		in, g, out := op.input.AsFloat64(), outputGrad.AsFloat64(), grad.AsFloat64()
		for i, v := range in {
			if v > 0 {
				out[i] = g[i]
			}
		}
	default:
		panic(fmt.Sprintf("relu backward: unsupported dtype %s", op.input.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the input tensor.
func (op *ReLUOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the activated tensor.
func (op *ReLUOp) Output() *tensor.RawTensor {
	return op.output
}
