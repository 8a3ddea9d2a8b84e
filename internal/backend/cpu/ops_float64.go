package cpu

import (
	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// Float64 inplace kernels (a op= b).

func (cpu *Backend) addInplaceFloat64(a, b []float64) {
	parallel.For(len(a), func(i int) { a[i] += b[i] }, cpu.cfg)
}

func (cpu *Backend) subInplaceFloat64(a, b []float64) {
	parallel.For(len(a), func(i int) { a[i] -= b[i] }, cpu.cfg)
}

func (cpu *Backend) mulInplaceFloat64(a, b []float64) {
	parallel.For(len(a), func(i int) { a[i] *= b[i] }, cpu.cfg)
}

func (cpu *Backend) divInplaceFloat64(a, b []float64) {
	parallel.For(len(a), func(i int) { a[i] /= b[i] }, cpu.cfg)
}

// Float64 vectorized kernels (dst = a op b, same shapes).

func (cpu *Backend) addVectorizedFloat64(dst, a, b []float64) {
	parallel.For(len(a), func(i int) { dst[i] = a[i] + b[i] }, cpu.cfg)
}

func (cpu *Backend) subVectorizedFloat64(dst, a, b []float64) {
	parallel.For(len(a), func(i int) { dst[i] = a[i] - b[i] }, cpu.cfg)
}

func (cpu *Backend) mulVectorizedFloat64(dst, a, b []float64) {
	parallel.For(len(a), func(i int) { dst[i] = a[i] * b[i] }, cpu.cfg)
}

func (cpu *Backend) divVectorizedFloat64(dst, a, b []float64) {
	parallel.For(len(a), func(i int) { dst[i] = a[i] / b[i] }, cpu.cfg)
}

// Float64 broadcasting kernels.

func (cpu *Backend) addBroadcastFloat64(dst, a, b []float64, aShape, bShape, outShape tensor.Shape) {
	broadcastLoop(outShape, aShape, bShape, func(i, aIdx, bIdx int) {
		dst[i] = a[aIdx] + b[bIdx]
	})
}

func (cpu *Backend) subBroadcastFloat64(dst, a, b []float64, aShape, bShape, outShape tensor.Shape) {
	broadcastLoop(outShape, aShape, bShape, func(i, aIdx, bIdx int) {
		dst[i] = a[aIdx] - b[bIdx]
	})
}

func (cpu *Backend) mulBroadcastFloat64(dst, a, b []float64, aShape, bShape, outShape tensor.Shape) {
	broadcastLoop(outShape, aShape, bShape, func(i, aIdx, bIdx int) {
		dst[i] = a[aIdx] * b[bIdx]
	})
}

func (cpu *Backend) divBroadcastFloat64(dst, a, b []float64, aShape, bShape, outShape tensor.Shape) {
	broadcastLoop(outShape, aShape, bShape, func(i, aIdx, bIdx int) {
		dst[i] = a[aIdx] / b[bIdx]
	})
}

func transposeFloat64(dst, src []float64, shape tensor.Shape, axes []int) {
	transposeLoop(shape, axes, func(srcIdx, dstIdx int) {
		dst[dstIdx] = src[srcIdx]
	})
}
