package ops

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// CrossEntropyOp records the fused softmax + negative log-likelihood loss
// straight from logits:
//
//	loss = mean_b(-log_softmax(logits)[b, targets[b]])
//
// Fusing the two produces the well-known gradient
//
//	grad_logits[b, i] = (softmax(logits[b])_i - onehot(targets[b])_i) / batchSize
//
// which is both cheaper and better conditioned than chaining the separate
// log-softmax and NLL backward rules.
type CrossEntropyOp struct {
	logits  *tensor.RawTensor
	targets *tensor.RawTensor
	output  *tensor.RawTensor
}

// NewCrossEntropyOp creates a CrossEntropyOp.
func NewCrossEntropyOp(logits, targets, output *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{logits: logits, targets: targets, output: output}
}

// Backward computes (softmax - onehot) / batchSize scaled by the upstream
// gradient.
func (op *CrossEntropyOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	shape := op.logits.Shape()
	batchSize, numClasses := shape[0], shape[1]
	targets := op.targets.AsInt32()

	grad, err := tensor.NewRaw(shape, op.logits.DType(), op.logits.Device())
	if err != nil {
		panic(fmt.Sprintf("cross-entropy backward: %v", err))
	}

	switch op.logits.DType() {
	case tensor.Float32:
		logits, out := op.logits.AsFloat32(), grad.AsFloat32()
		gradScale := outputGrad.AsFloat32()[0]
		probs := make([]float32, numClasses)
		for b := 0; b < batchSize; b++ {
			softmaxRowFloat32(probs, logits[b*numClasses:(b+1)*numClasses])
			target := int(targets[b])
			for i, p := range probs {
				if i == target {
					p -= 1
				}
				out[b*numClasses+i] = gradScale * p / float32(batchSize)
			}
		}
	case tensor.Float64:
		logits, out := op.logits.AsFloat64(), grad.AsFloat64()
		gradScale := outputGrad.AsFloat64()[0]
		probs := make([]float64, numClasses)
		for b := 0; b < batchSize; b++ {
			softmaxRowFloat64(probs, logits[b*numClasses:(b+1)*numClasses])
			target := int(targets[b])
			for i, p := range probs {
				if i == target {
					p -= 1
				}
				out[b*numClasses+i] = gradScale * p / float64(batchSize)
			}
		}
	default:
		panic(fmt.Sprintf("cross-entropy backward: unsupported dtype %s", op.logits.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// Inputs returns the logits tensor. As with NLLOp, targets carry no
// gradient.
func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logits}
}

// Output returns the scalar loss tensor.
func (op *CrossEntropyOp) Output() *tensor.RawTensor {
	return op.output
}

// CrossEntropyForward computes the fused loss from raw logits. It applies
// the stabilized log-softmax internally so callers never exponentiate
// unbounded scores.
func CrossEntropyForward(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross-entropy: logits must be 2D [batch, classes], got %v", shape))
	}
	targetShape := targets.Shape()
	if len(targetShape) != 1 || targetShape[0] != shape[0] {
		panic(fmt.Sprintf("cross-entropy: targets must be 1D [%d], got %v", shape[0], targetShape))
	}

	batchSize, numClasses := shape[0], shape[1]
	targetData := targets.AsInt32()

	output, err := tensor.NewRaw(tensor.Shape{1}, logits.DType(), logits.Device())
	if err != nil {
		panic(fmt.Sprintf("cross-entropy: %v", err))
	}

	switch logits.DType() {
	case tensor.Float32:
		data := logits.AsFloat32()
		logProbs := make([]float32, numClasses)
		total := 0.0
		for b := 0; b < batchSize; b++ {
			logSoftmaxRowFloat32(logProbs, data[b*numClasses:(b+1)*numClasses])
			target := int(targetData[b])
			if target < 0 || target >= numClasses {
				panic(fmt.Sprintf("cross-entropy: target %d out of range [0, %d) at row %d", target, numClasses, b))
			}
			total += float64(-logProbs[target])
		}
		output.AsFloat32()[0] = float32(total / float64(batchSize))
	case tensor.Float64:
		data := logits.AsFloat64()
		logProbs := make([]float64, numClasses)
		total := 0.0
		for b := 0; b < batchSize; b++ {
			logSoftmaxRowFloat64(logProbs, data[b*numClasses:(b+1)*numClasses])
			target := int(targetData[b])
			if target < 0 || target >= numClasses {
				panic(fmt.Sprintf("cross-entropy: target %d out of range [0, %d) at row %d", target, numClasses, b))
			}
			total += -logProbs[target]
		}
		output.AsFloat64()[0] = total / float64(batchSize)
	default:
		panic(fmt.Sprintf("cross-entropy: unsupported dtype %s", logits.DType()))
	}

	return output
}
