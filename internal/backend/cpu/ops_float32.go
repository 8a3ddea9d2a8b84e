package cpu

import (
	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// Float32 inplace kernels (a op= b).

func (cpu *Backend) addInplaceFloat32(a, b []float32) {
	parallel.For(len(a), func(i int) { a[i] += b[i] }, cpu.cfg)
}

func (cpu *Backend) subInplaceFloat32(a, b []float32) {
	parallel.For(len(a), func(i int) { a[i] -= b[i] }, cpu.cfg)
}

func (cpu *Backend) mulInplaceFloat32(a, b []float32) {
	parallel.For(len(a), func(i int) { a[i] *= b[i] }, cpu.cfg)
}

func (cpu *Backend) divInplaceFloat32(a, b []float32) {
	parallel.For(len(a), func(i int) { a[i] /= b[i] }, cpu.cfg)
}

// Float32 vectorized kernels (dst = a op b, same shapes).

func (cpu *Backend) addVectorizedFloat32(dst, a, b []float32) {
	parallel.For(len(a), func(i int) { dst[i] = a[i] + b[i] }, cpu.cfg)
}

func (cpu *Backend) subVectorizedFloat32(dst, a, b []float32) {
	parallel.For(len(a), func(i int) { dst[i] = a[i] - b[i] }, cpu.cfg)
}

func (cpu *Backend) mulVectorizedFloat32(dst, a, b []float32) {
	parallel.For(len(a), func(i int) { dst[i] = a[i] * b[i] }, cpu.cfg)
}

func (cpu *Backend) divVectorizedFloat32(dst, a, b []float32) {
	parallel.For(len(a), func(i int) { dst[i] = a[i] / b[i] }, cpu.cfg)
}

// Float32 broadcasting kernels.

func (cpu *Backend) addBroadcastFloat32(dst, a, b []float32, aShape, bShape, outShape tensor.Shape) {
	broadcastLoop(outShape, aShape, bShape, func(i, aIdx, bIdx int) {
		dst[i] = a[aIdx] + b[bIdx]
	})
}

func (cpu *Backend) subBroadcastFloat32(dst, a, b []float32, aShape, bShape, outShape tensor.Shape) {
	broadcastLoop(outShape, aShape, bShape, func(i, aIdx, bIdx int) {
		dst[i] = a[aIdx] - b[bIdx]
	})
}

func (cpu *Backend) mulBroadcastFloat32(dst, a, b []float32, aShape, bShape, outShape tensor.Shape) {
	broadcastLoop(outShape, aShape, bShape, func(i, aIdx, bIdx int) {
		dst[i] = a[aIdx] * b[bIdx]
	})
}

func (cpu *Backend) divBroadcastFloat32(dst, a, b []float32, aShape, bShape, outShape tensor.Shape) {
	broadcastLoop(outShape, aShape, bShape, func(i, aIdx, bIdx int) {
		dst[i] = a[aIdx] / b[bIdx]
	})
}

func transposeFloat32(dst, src []float32, shape tensor.Shape, axes []int) {
	transposeLoop(shape, axes, func(srcIdx, dstIdx int) {
		dst[dstIdx] = src[srcIdx]
	})
}
