package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// AddScalar adds a scalar value to each element.
func (cpu *Backend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result := newRawOrPanic("addScalar", x.Shape(), x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		s := toFloat32("addScalar", scalar)
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = v + s
		}
	case tensor.Float64:
		s := toFloat64("addScalar", scalar)
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = v + s
		}
	default:
		panic(fmt.Sprintf("addScalar: unsupported dtype %s", x.DType()))
	}

	return result
}

// MulScalar multiplies each element by a scalar value.
func (cpu *Backend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result := newRawOrPanic("mulScalar", x.Shape(), x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		s := toFloat32("mulScalar", scalar)
		src, dst := x.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = v * s
		}
	case tensor.Float64:
		s := toFloat64("mulScalar", scalar)
		src, dst := x.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = v * s
		}
	default:
		panic(fmt.Sprintf("mulScalar: unsupported dtype %s", x.DType()))
	}

	return result
}

func toFloat32(op string, scalar any) float32 {
	switch s := scalar.(type) {
	case float32:
		return s
	case float64:
		return float32(s)
	case int:
		return float32(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", op, scalar))
	}
}

func toFloat64(op string, scalar any) float64 {
	switch s := scalar.(type) {
	case float64:
		return s
	case float32:
		return float64(s)
	case int:
		return float64(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", op, scalar))
	}
}
