package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
//
// The float32 path goes through gonum's BLAS sgemm. The float64 path is a
// row-parallel reference implementation; it only runs in tests and tooling,
// training tensors are float32.
func (cpu *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}

	result := newRawOrPanic("matmul", tensor.Shape{m, n}, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		blas32.Implementation().Sgemm(blas.NoTrans, blas.NoTrans,
			m, n, k,
			1, a.AsFloat32(), k,
			b.AsFloat32(), n,
			0, result.AsFloat32(), n)
	case tensor.Float64:
		cpu.matmulFloat64(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}

	return result
}

// matmulFloat64 computes C[i,j] = sum_k A[i,k] * B[k,j], one goroutine
// chunk per row group.
func (cpu *Backend) matmulFloat64(c, a, b []float64, m, k, n int) {
	parallel.ForRows(m, k*n, func(i int) {
		for j := 0; j < n; j++ {
			sum := 0.0
			for kIdx := 0; kIdx < k; kIdx++ {
				sum += a[i*k+kIdx] * b[kIdx*n+j]
			}
			c[i*n+j] = sum
		}
	}, cpu.cfg)
}
