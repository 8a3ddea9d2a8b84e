package ops

import (
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/tensor"
)

// reduceBroadcast reduces a gradient to the target shape by summing along
// the dimensions that were expanded during forward broadcasting. The
// bias-add in the linear layer is the common case: [batch, out] gradients
// collapse to the [1, out] bias.
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()

	// Clone when shapes match so later inplace ops cannot alias the
	// accumulated gradient.
	if gradShape.Equal(targetShape) {
		return grad.Clone()
	}

	// Broadcasting aligns shapes from the right: sum away leading
	// dimensions the target does not have.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = sumAlongDimension(result, 0)
		result = backend.Reshape(result, result.Shape()[1:])
	}

	// Then sum the dimensions where the target is 1.
	for i, size := range targetShape {
		if size == 1 && result.Shape()[i] > 1 {
			result = sumAlongDimension(result, i)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}

// sumAlongDimension sums a tensor along dim, keeping that dimension with
// size 1.
func sumAlongDimension(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("sumAlongDimension: invalid dim %d for shape %v", dim, shape))
	}

	outShape := shape.Clone()
	outShape[dim] = 1

	result, err := tensor.NewRaw(outShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("sumAlongDimension: %v", err))
	}

	// Walk the tensor as outer x reduced x inner blocks.
	outer := 1
	for _, s := range shape[:dim] {
		outer *= s
	}
	reduced := shape[dim]
	inner := 1
	for _, s := range shape[dim+1:] {
		inner *= s
	}

	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for o := 0; o < outer; o++ {
			for r := 0; r < reduced; r++ {
				base := (o*reduced + r) * inner
				for i := 0; i < inner; i++ {
					dst[o*inner+i] += src[base+i]
				}
			}
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for o := 0; o < outer; o++ {
			for r := 0; r < reduced; r++ {
				base := (o*reduced + r) * inner
				for i := 0; i < inner; i++ {
					dst[o*inner+i] += src[base+i]
				}
			}
		}
	default:
		panic(fmt.Sprintf("sumAlongDimension: unsupported dtype %s", t.DType()))
	}

	return result
}

// softmaxRowFloat32 writes the stabilized softmax of z into dst.
func softmaxRowFloat32(dst, z []float32) {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}

	sum := 0.0
	for i, v := range z {
		e := math.Exp(float64(v - maxZ))
		dst[i] = float32(e)
		sum += e
	}
	for i := range dst {
		dst[i] /= float32(sum)
	}
}

// softmaxRowFloat64 writes the stabilized softmax of z into dst.
func softmaxRowFloat64(dst, z []float64) {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}

	sum := 0.0
	for i, v := range z {
		dst[i] = math.Exp(v - maxZ)
		sum += dst[i]
	}
	for i := range dst {
		dst[i] /= sum
	}
}

// logSoftmaxRowFloat32 writes the stabilized log-softmax of z into dst.
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

// logSoftmaxRowFloat64 writes the stabilized log-softmax of z into dst.
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
