package cpu

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// computeBroadcastStridesForShape computes strides for broadcasting inShape
// to outShape: broadcast and padded dimensions get stride 0 so their
// coordinate contributes nothing to the flat index.
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	inDim := len(inShape)
	offset := outDim - inDim
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0 || inIdx >= inDim:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// computeFlatIndex maps an output flat index to a source flat index using
// broadcast-adjusted strides.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

// broadcastLoop walks every output element, handing the element index and
// the corresponding source indices to the kernel.
func broadcastLoop(outShape, aShape, bShape tensor.Shape, kernel func(i, aIdx, bIdx int)) {
	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)

	n := outShape.NumElements()
	for i := 0; i < n; i++ {
		kernel(i, computeFlatIndex(i, outStrides, aStrides), computeFlatIndex(i, outStrides, bStrides))
	}
}

// transposeLoop visits every source element and computes its destination
// index under the axis permutation.
func transposeLoop(shape tensor.Shape, axes []int, kernel func(srcIdx, dstIdx int)) {
	ndim := len(shape)
	srcStrides := shape.ComputeStrides()

	dstShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		dstShape[i] = shape[ax]
	}
	dstStrides := dstShape.ComputeStrides()

	coords := make([]int, ndim)
	n := shape.NumElements()
	for i := 0; i < n; i++ {
		idx := i
		for dim := 0; dim < ndim; dim++ {
			coords[dim] = idx / srcStrides[dim]
			idx %= srcStrides[dim]
		}

		dstIdx := 0
		for dstDim, srcDim := range axes {
			dstIdx += coords[srcDim] * dstStrides[dstDim]
		}

		kernel(i, dstIdx)
	}
}
