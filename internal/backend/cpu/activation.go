package cpu

import (
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (cpu *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	result := newRawOrPanic("relu", x.Shape(), x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		parallel.For(len(src), func(i int) {
			if src[i] > 0 {
				dst[i] = src[i]
			}
		}, cpu.cfg)
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		parallel.For(len(src), func(i int) {
			if src[i] > 0 {
				dst[i] = src[i]
			}
		}, cpu.cfg)
	default:
		panic(fmt.Sprintf("relu: unsupported dtype %s", x.DType()))
	}

	return result
}

// Exp computes the element-wise exponential.
func (cpu *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	result := newRawOrPanic("exp", x.Shape(), x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		parallel.For(len(src), func(i int) {
			dst[i] = float32(math.Exp(float64(src[i])))
		}, cpu.cfg)
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		parallel.For(len(src), func(i int) {
			dst[i] = math.Exp(src[i])
		}, cpu.cfg)
	default:
		panic(fmt.Sprintf("exp: unsupported dtype %s", x.DType()))
	}

	return result
}

// LogSoftmax computes the row-wise log-softmax of a 2D tensor.
//
// Per row: logsoftmax(z)_i = z_i - (max(z) + log(sum_j exp(z_j - max(z)))).
// Subtracting the row maximum before exponentiating keeps the sum finite
// for any score magnitude; this is a correctness requirement, not a tuning.
func (cpu *Backend) LogSoftmax(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("logsoftmax: expected 2D tensor [batch, classes], got shape %v", shape))
	}

	rows, cols := shape[0], shape[1]
	result := newRawOrPanic("logsoftmax", shape, x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		parallel.ForRows(rows, cols, func(r int) {
			logSoftmaxRowFloat32(dst[r*cols:(r+1)*cols], src[r*cols:(r+1)*cols])
		}, cpu.cfg)
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		parallel.ForRows(rows, cols, func(r int) {
			logSoftmaxRowFloat64(dst[r*cols:(r+1)*cols], src[r*cols:(r+1)*cols])
		}, cpu.cfg)
	default:
		panic(fmt.Sprintf("logsoftmax: unsupported dtype %s", x.DType()))
	}

	return result
}

func logSoftmaxRowFloat32(dst, z []float32) {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}

	sumExp := 0.0
	for _, v := range z {
		sumExp += math.Exp(float64(v - maxZ))
	}
	logSumExp := maxZ + float32(math.Log(sumExp))

	for i, v := range z {
		dst[i] = v - logSumExp
	}
}

func logSoftmaxRowFloat64(dst, z []float64) {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}

	sumExp := 0.0
	for _, v := range z {
		sumExp += math.Exp(v - maxZ)
	}
	logSumExp := maxZ + math.Log(sumExp)

	for i, v := range z {
		dst[i] = v - logSumExp
	}
}
