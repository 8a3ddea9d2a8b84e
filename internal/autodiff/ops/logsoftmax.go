package ops

import (
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/tensor"
)

// LogSoftmaxOp records output = log_softmax(input) over the last dimension
// of a 2D tensor.
//
// Backward, per row:
//
//	grad_input_i = grad_i - softmax(input)_i * Σ_j grad_j
//
// The softmax is recovered as exp(output), so the backward pass needs no
// second stabilized pass over the logits.
type LogSoftmaxOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewLogSoftmaxOp creates a LogSoftmaxOp.
func NewLogSoftmaxOp(input, output *tensor.RawTensor) *LogSoftmaxOp {
	return &LogSoftmaxOp{input: input, output: output}
}

// Backward computes the input gradient from the saved log-probabilities.
func (op *LogSoftmaxOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.output.Shape()
	rows, cols := shape[0], shape[1]

	grad, err := tensor.NewRaw(shape, op.output.DType(), op.output.Device())
	if err != nil {
		panic(fmt.Sprintf("logsoftmax backward: %v", err))
	}

	switch op.output.DType() {
	case tensor.Float32:
		logProbs, g, out := op.output.AsFloat32(), outputGrad.AsFloat32(), grad.AsFloat32()
		for r := 0; r < rows; r++ {
			rowG := g[r*cols : (r+1)*cols]
			rowLP := logProbs[r*cols : (r+1)*cols]
			rowOut := out[r*cols : (r+1)*cols]

			gradSum := 0.0
			for _, v := range rowG {
				gradSum += float64(v)
			}
			for i := range rowOut {
				rowOut[i] = rowG[i] - float32(math.Exp(float64(rowLP[i]))*gradSum)
			}
		}
	case tensor.Float64:
		logProbs, g, out := op.output.AsFloat64(), outputGrad.AsFloat64(), grad.AsFloat64()
		for r := 0; r < rows; r++ {
			rowG := g[r*cols : (r+1)*cols]
			rowLP := logProbs[r*cols : (r+1)*cols]
			rowOut := out[r*cols : (r+1)*cols]

			gradSum := 0.0
			for _, v := range rowG {
				gradSum += v
			}
			for i := range rowOut {
				rowOut[i] = rowG[i] - math.Exp(rowLP[i])*gradSum
			}
		}
	default:
		panic(fmt.Sprintf("logsoftmax backward: unsupported dtype %s", op.output.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the logits tensor.
func (op *LogSoftmaxOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.input}
}

// Output returns the log-probability tensor.
func (op *LogSoftmaxOp) Output() *tensor.RawTensor {
	return op.output
}
