package ops

import "github.com/ember-ml/ember/internal/tensor"

// binaryOp holds the shared input/output bookkeeping for the element-wise
// arithmetic operations.
type binaryOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

func (op *binaryOp) Inputs() []*tensor.RawTensor {
	return op.inputs
}

func (op *binaryOp) Output() *tensor.RawTensor {
	return op.output
}

// AddOp records output = a + b.
//
// Both partial derivatives are 1, so the output gradient flows to each
// input unchanged, reduced along any broadcast dimensions.
type AddOp struct{ binaryOp }

// NewAddOp creates an AddOp.
func NewAddOp(a, b, output *tensor.RawTensor) *AddOp {
	return &AddOp{binaryOp{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Backward returns [grad, grad] reduced to each input's shape.
func (op *AddOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, a.Shape(), backend),
		reduceBroadcast(outputGrad, b.Shape(), backend),
	}
}

// SubOp records output = a - b.
type SubOp struct{ binaryOp }

// NewSubOp creates a SubOp.
func NewSubOp(a, b, output *tensor.RawTensor) *SubOp {
	return &SubOp{binaryOp{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Backward returns [grad, -grad] reduced to each input's shape.
func (op *SubOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	gradB := backend.MulScalar(outputGrad, -1)
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, a.Shape(), backend),
		reduceBroadcast(gradB, b.Shape(), backend),
	}
}

// MulOp records output = a * b.
type MulOp struct{ binaryOp }

// NewMulOp creates a MulOp.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{binaryOp{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Backward returns [grad*b, grad*a] reduced to each input's shape.
func (op *MulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]

	defer outputGrad.ForceNonUnique()()
	gradA := backend.Mul(outputGrad, b)
	gradB := backend.Mul(outputGrad, a)

	return []*tensor.RawTensor{
		reduceBroadcast(gradA, a.Shape(), backend),
		reduceBroadcast(gradB, b.Shape(), backend),
	}
}

// DivOp records output = a / b.
type DivOp struct{ binaryOp }

// NewDivOp creates a DivOp.
func NewDivOp(a, b, output *tensor.RawTensor) *DivOp {
	return &DivOp{binaryOp{inputs: []*tensor.RawTensor{a, b}, output: output}}
}

// Backward returns [grad/b, -grad*a/b²] reduced to each input's shape.
func (op *DivOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]

	defer outputGrad.ForceNonUnique()()
	defer a.ForceNonUnique()()
	defer b.ForceNonUnique()()

	gradA := backend.Div(outputGrad, b)

	// grad_b = -grad * a / b²
	bSquared := backend.Mul(b, b)
	gradB := backend.Mul(outputGrad, a)
	gradB = backend.Div(gradB, bSquared)
	gradB = backend.MulScalar(gradB, -1)

	return []*tensor.RawTensor{
		reduceBroadcast(gradA, a.Shape(), backend),
		reduceBroadcast(gradB, b.Shape(), backend),
	}
}
