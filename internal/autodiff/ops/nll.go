package ops

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// NLLOp records the negative log-likelihood loss over log-probabilities:
//
//	loss = mean_b(-logProbs[b, targets[b]])
//
// It expects the log-softmax to have been applied already, so together
// LogSoftmaxOp + NLLOp form the classification loss. The targets carry no
// gradient; only the log-probability input does.
//
// Backward:
//
//	grad_logProbs[b, i] = -gradScale / batchSize  if i == targets[b]
//	                       0                      otherwise
type NLLOp struct {
	logProbs *tensor.RawTensor
	targets  *tensor.RawTensor
	output   *tensor.RawTensor
}

// NewNLLOp creates an NLLOp.
func NewNLLOp(logProbs, targets, output *tensor.RawTensor) *NLLOp {
	return &NLLOp{logProbs: logProbs, targets: targets, output: output}
}

// Backward scatters -gradScale/batchSize into each row's target column.
func (op *NLLOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.logProbs.Shape()
	batchSize, numClasses := shape[0], shape[1]
	targets := op.targets.AsInt32()

	grad, err := tensor.NewRaw(shape, op.logProbs.DType(), op.logProbs.Device())
	if err != nil {
		panic(fmt.Sprintf("nll backward: %v", err))
	}

	switch op.logProbs.DType() {
	case tensor.Float32:
		gradScale := outputGrad.AsFloat32()[0]
		out := grad.AsFloat32()
		scale := -gradScale / float32(batchSize)
		for b := 0; b < batchSize; b++ {
			out[b*numClasses+int(targets[b])] = scale
		}
	case tensor.Float64:
		gradScale := outputGrad.AsFloat64()[0]
		out := grad.AsFloat64()
		scale := -gradScale / float64(batchSize)
		for b := 0; b < batchSize; b++ {
			out[b*numClasses+int(targets[b])] = scale
		}
	default:
		panic(fmt.Sprintf("nll backward: unsupported dtype %s", op.logProbs.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the log-probability tensor. Targets are integer class
// indices and take no gradient.
func (op *NLLOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logProbs}
}

// Output returns the scalar loss tensor.
func (op *NLLOp) Output() *tensor.RawTensor {
	return op.output
}

// NLLForward computes the mean negative log-likelihood of logProbs
// [batch, classes] against targets [batch]. Used by both the autodiff
// decorator and the plain evaluation path.
func NLLForward(logProbs, targets *tensor.RawTensor) *tensor.RawTensor {
	shape := logProbs.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("nll: log-probabilities must be 2D [batch, classes], got %v", shape))
	}
	targetShape := targets.Shape()
	if len(targetShape) != 1 || targetShape[0] != shape[0] {
		panic(fmt.Sprintf("nll: targets must be 1D [%d], got %v", shape[0], targetShape))
	}

	batchSize, numClasses := shape[0], shape[1]
	targetData := targets.AsInt32()

	output, err := tensor.NewRaw(tensor.Shape{1}, logProbs.DType(), logProbs.Device())
	if err != nil {
		panic(fmt.Sprintf("nll: %v", err))
	}

	switch logProbs.DType() {
	case tensor.Float32:
		data := logProbs.AsFloat32()
		total := 0.0
		for b := 0; b < batchSize; b++ {
			target := int(targetData[b])
			if target < 0 || target >= numClasses {
				panic(fmt.Sprintf("nll: target %d out of range [0, %d) at row %d", target, numClasses, b))
			}
			total += float64(-data[b*numClasses+target])
		}
		output.AsFloat32()[0] = float32(total / float64(batchSize))
	case tensor.Float64:
		data := logProbs.AsFloat64()
		total := 0.0
		for b := 0; b < batchSize; b++ {
			target := int(targetData[b])
			if target < 0 || target >= numClasses {
				panic(fmt.Sprintf("nll: target %d out of range [0, %d) at row %d", target, numClasses, b))
			}
			total += -data[b*numClasses+target]
		}
		output.AsFloat64()[0] = total / float64(batchSize)
	default:
		panic(fmt.Sprintf("nll: unsupported dtype %s", logProbs.DType()))
	}

	return output
}
