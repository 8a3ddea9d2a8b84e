package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Sum reduces all elements to a single scalar tensor of shape [1].
func (cpu *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := newRawOrPanic("sum", tensor.Shape{1}, x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		total := 0.0
		for _, v := range x.AsFloat32() {
			total += float64(v)
		}
		result.AsFloat32()[0] = float32(total)
	case tensor.Float64:
		total := 0.0
		for _, v := range x.AsFloat64() {
			total += v
		}
		result.AsFloat64()[0] = total
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

// Argmax returns the index of the maximum value along dim for a 2D tensor.
// The result is an Int32 tensor of shape [rows]. Only dim=1 is supported,
// which is the prediction case: one class index per batch row. Ties resolve
// to the lowest index.
func (cpu *Backend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("argmax: expected 2D tensor, got shape %v", shape))
	}
	if dim != 1 {
		panic(fmt.Sprintf("argmax: only dim=1 supported, got dim=%d", dim))
	}

	rows, cols := shape[0], shape[1]
	result := newRawOrPanic("argmax", tensor.Shape{rows}, tensor.Int32, cpu.device)
	out := result.AsInt32()

	switch x.DType() {
	case tensor.Float32:
		data := x.AsFloat32()
		for r := 0; r < rows; r++ {
			row := data[r*cols : (r+1)*cols]
			best := 0
			for i, v := range row[1:] {
				if v > row[best] {
					best = i + 1
				}
			}
			out[r] = int32(best)
		}
	case tensor.Float64:
		data := x.AsFloat64()
		for r := 0; r < rows; r++ {
			row := data[r*cols : (r+1)*cols]
			best := 0
			for i, v := range row[1:] {
				if v > row[best] {
					best = i + 1
				}
			}
			out[r] = int32(best)
		}
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s", x.DType()))
	}

	return result
}
