package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// kernels bundles the three execution paths of one binary operation.
type kernels struct {
	inplace    func(cpu *Backend, a, b *tensor.RawTensor)
	vectorized func(cpu *Backend, result, a, b *tensor.RawTensor)
	broadcast  func(cpu *Backend, result, a, b *tensor.RawTensor, outShape tensor.Shape)
}

func dispatchInplace(name string, f32 func(cpu *Backend, a, b []float32), f64 func(cpu *Backend, a, b []float64)) func(*Backend, *tensor.RawTensor, *tensor.RawTensor) {
	return func(cpu *Backend, a, b *tensor.RawTensor) {
		switch a.DType() {
		case tensor.Float32:
			f32(cpu, a.AsFloat32(), b.AsFloat32())
		case tensor.Float64:
			f64(cpu, a.AsFloat64(), b.AsFloat64())
		default:
			panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
		}
	}
}

func dispatchVectorized(name string, f32 func(cpu *Backend, dst, a, b []float32), f64 func(cpu *Backend, dst, a, b []float64)) func(*Backend, *tensor.RawTensor, *tensor.RawTensor, *tensor.RawTensor) {
	return func(cpu *Backend, result, a, b *tensor.RawTensor) {
		switch a.DType() {
		case tensor.Float32:
			f32(cpu, result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
		case tensor.Float64:
			f64(cpu, result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
		default:
			panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
		}
	}
}

func dispatchBroadcast(name string,
	f32 func(cpu *Backend, dst, a, b []float32, aShape, bShape, outShape tensor.Shape),
	f64 func(cpu *Backend, dst, a, b []float64, aShape, bShape, outShape tensor.Shape),
) func(*Backend, *tensor.RawTensor, *tensor.RawTensor, *tensor.RawTensor, tensor.Shape) {
	return func(cpu *Backend, result, a, b *tensor.RawTensor, outShape tensor.Shape) {
		switch a.DType() {
		case tensor.Float32:
			f32(cpu, result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape)
		case tensor.Float64:
			f64(cpu, result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape)
		default:
			panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
		}
	}
}

var addKernels = kernels{
	inplace:    dispatchInplace("add", (*Backend).addInplaceFloat32, (*Backend).addInplaceFloat64),
	vectorized: dispatchVectorized("add", (*Backend).addVectorizedFloat32, (*Backend).addVectorizedFloat64),
	broadcast:  dispatchBroadcast("add", (*Backend).addBroadcastFloat32, (*Backend).addBroadcastFloat64),
}

var subKernels = kernels{
	inplace:    dispatchInplace("sub", (*Backend).subInplaceFloat32, (*Backend).subInplaceFloat64),
	vectorized: dispatchVectorized("sub", (*Backend).subVectorizedFloat32, (*Backend).subVectorizedFloat64),
	broadcast:  dispatchBroadcast("sub", (*Backend).subBroadcastFloat32, (*Backend).subBroadcastFloat64),
}

var mulKernels = kernels{
	inplace:    dispatchInplace("mul", (*Backend).mulInplaceFloat32, (*Backend).mulInplaceFloat64),
	vectorized: dispatchVectorized("mul", (*Backend).mulVectorizedFloat32, (*Backend).mulVectorizedFloat64),
	broadcast:  dispatchBroadcast("mul", (*Backend).mulBroadcastFloat32, (*Backend).mulBroadcastFloat64),
}

var divKernels = kernels{
	inplace:    dispatchInplace("div", (*Backend).divInplaceFloat32, (*Backend).divInplaceFloat64),
	vectorized: dispatchVectorized("div", (*Backend).divVectorizedFloat32, (*Backend).divVectorizedFloat64),
	broadcast:  dispatchBroadcast("div", (*Backend).divBroadcastFloat32, (*Backend).divBroadcastFloat64),
}
