// Package autodiff implements reverse-mode automatic differentiation as a
// backend decorator.
//
// AutodiffBackend wraps any tensor.Backend, delegates the forward
// computation to it, and records each differentiable operation on a
// GradientTape. Walking the tape backwards then yields the gradient of a
// scalar loss with respect to every tensor that fed into it.
//
// Usage:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	// ... forward pass, loss ...
//	grads := backend.Backward(loss)
package autodiff

import (
	"github.com/ember-ml/ember/internal/autodiff/ops"
	"github.com/ember-ml/ember/internal/tensor"
)

// AutodiffBackend wraps a Backend and records operations for
// backpropagation. It satisfies tensor.Backend itself, so model code is
// oblivious to whether gradients are being tracked.
type AutodiffBackend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New creates an AutodiffBackend wrapping the given backend.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{
		inner: backend,
		tape:  NewGradientTape(),
	}
}

// Tape returns the gradient tape for recording control and inspection.
func (b *AutodiffBackend[B]) Tape() *GradientTape {
	return b.tape
}

// Inner returns the wrapped backend.
func (b *AutodiffBackend[B]) Inner() B {
	return b.inner
}

// Name returns the backend name.
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the compute device.
func (b *AutodiffBackend[B]) Device() tensor.Device {
	return b.inner.Device()
}

// Backward seeds a ones gradient for the given scalar output and walks the
// tape, returning the gradient map. The gradient arithmetic runs on the
// inner backend so it is never itself recorded.
func (b *AutodiffBackend[B]) Backward(output *tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	seed, err := tensor.NewRaw(output.Shape(), output.DType(), output.Device())
	if err != nil {
		panic(err)
	}
	switch output.DType() {
	case tensor.Float32:
		data := seed.AsFloat32()
		for i := range data {
			data[i] = 1
		}
	case tensor.Float64:
		data := seed.AsFloat64()
		for i := range data {
			data[i] = 1
		}
	}
	return b.tape.Backward(seed, b.inner)
}

// Add performs element-wise addition and records the operation.
//
// The inputs are pinned non-unique for the duration of the call so the
// inner backend cannot take its inplace fast path. A recorded operation
// holds its inputs by reference; mutating one in place would corrupt every
// earlier tape entry that produced it.
func (b *AutodiffBackend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()

	result := b.inner.Add(x, y)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAddOp(x, y, result))
	}
	return result
}

// Sub performs element-wise subtraction and records the operation.
func (b *AutodiffBackend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()

	result := b.inner.Sub(x, y)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSubOp(x, y, result))
	}
	return result
}

// Mul performs element-wise multiplication and records the operation.
func (b *AutodiffBackend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()

	result := b.inner.Mul(x, y)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMulOp(x, y, result))
	}
	return result
}

// Div performs element-wise division and records the operation.
func (b *AutodiffBackend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()

	result := b.inner.Div(x, y)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewDivOp(x, y, result))
	}
	return result
}

// MatMul performs matrix multiplication and records the operation.
func (b *AutodiffBackend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()

	result := b.inner.MatMul(x, y)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMatMulOp(x, y, result))
	}
	return result
}

// Reshape reshapes a tensor and records the operation, so gradients reach
// the pre-reshape tensor rather than stopping at the new view.
func (b *AutodiffBackend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	defer t.ForceNonUnique()()

	result := b.inner.Reshape(t, newShape)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReshapeOp(t, result))
	}
	return result
}

// Transpose permutes dimensions and records the operation. The linear
// layer transposes its weight every forward pass; without the tape entry
// the weight's gradient would be keyed by the transposed copy and the
// optimizer would never see it.
func (b *AutodiffBackend[B]) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	defer t.ForceNonUnique()()

	// Resolve default axes here so the recorded op knows the exact
	// permutation to invert.
	if len(axes) == 0 {
		ndim := len(t.Shape())
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	result := b.inner.Transpose(t, axes...)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewTransposeOp(t, result, axes))
	}
	return result
}

// LogSoftmax computes row-wise log-softmax and records the operation.
func (b *AutodiffBackend[B]) LogSoftmax(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := b.inner.LogSoftmax(x)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewLogSoftmaxOp(x, result))
	}
	return result
}

// ReLU applies the rectifier and records the operation. It is not part of
// the tensor.Backend interface; callers reach it through the ReLUBackend
// assertion.
func (b *AutodiffBackend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()

	result := reluForward(x, b.inner)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReLUOp(x, result))
	}
	return result
}

// NLLLoss computes the mean negative log-likelihood of log-probabilities
// against integer targets and records the operation.
func (b *AutodiffBackend[B]) NLLLoss(logProbs, targets *tensor.RawTensor) *tensor.RawTensor {
	defer logProbs.ForceNonUnique()()

	result := ops.NLLForward(logProbs, targets)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewNLLOp(logProbs, targets, result))
	}
	return result
}

// CrossEntropy computes the fused softmax + NLL loss from raw logits and
// records a single operation with the closed-form gradient.
func (b *AutodiffBackend[B]) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	defer logits.ForceNonUnique()()

	result := ops.CrossEntropyForward(logits, targets)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewCrossEntropyOp(logits, targets, result))
	}
	return result
}

// AddScalar adds a scalar without recording. Scalar ops only appear on
// inference-side paths here.
func (b *AutodiffBackend[B]) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	return b.inner.AddScalar(x, scalar)
}

// MulScalar multiplies by a scalar without recording.
func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	return b.inner.MulScalar(x, scalar)
}

// Exp computes the element-wise exponential without recording. Training
// uses it to recover probabilities from log-probabilities for display.
func (b *AutodiffBackend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	return b.inner.Exp(x)
}

// Sum reduces to a scalar without recording.
func (b *AutodiffBackend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	return b.inner.Sum(x)
}

// Argmax returns row maxima indices. Integer outputs carry no gradient.
func (b *AutodiffBackend[B]) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Argmax(x, dim)
}

// reluForward computes max(0, x), using the inner backend's ReLU when it
// has one.
func reluForward(x *tensor.RawTensor, inner tensor.Backend) *tensor.RawTensor {
	if rb, ok := inner.(interface {
		ReLU(*tensor.RawTensor) *tensor.RawTensor
	}); ok {
		return rb.ReLU(x)
	}

	result, err := tensor.NewRaw(x.Shape(), x.DType(), x.Device())
	if err != nil {
		panic(err)
	}
	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			if v > 0 {
				dst[i] = v
			}
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			if v > 0 {
				dst[i] = v
			}
		}
	}
	return result
}

// Interface conformance checks.
var _ tensor.Backend = (*AutodiffBackend[tensor.Backend])(nil)
