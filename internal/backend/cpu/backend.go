// Package cpu implements the CPU compute backend.
//
// Element-wise operations pick between three paths: inplace mutation when
// the destination buffer has a single owner, a flat vectorized loop when
// shapes match, and a stride-walking loop when broadcasting is needed.
// Large kernels fan out through the parallel package.
package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/parallel"
	"github.com/ember-ml/ember/internal/tensor"
)

// Backend implements tensor operations on the CPU.
type Backend struct {
	device tensor.Device
	cfg    parallel.Config
}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{
		device: tensor.CPU,
		cfg:    parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (cpu *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *Backend) Device() tensor.Device {
	return cpu.device
}

// binaryOp implements the shared dispatch for Add/Sub/Mul/Div.
func (cpu *Backend) binaryOp(name string, a, b *tensor.RawTensor, k kernels) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		if a.IsUnique() {
			// Sole owner of a: mutate it instead of allocating.
			k.inplace(cpu, a, b)
			return a
		}
		result := newRawOrPanic(name, outShape, a.DType(), cpu.device)
		k.vectorized(cpu, result, a, b)
		return result
	}

	result := newRawOrPanic(name, outShape, a.DType(), cpu.device)
	k.broadcast(cpu, result, a, b, outShape)
	return result
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b, addKernels)
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b, subKernels)
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b, mulKernels)
}

// Div performs element-wise division with broadcasting.
func (cpu *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("div", a, b, divKernels)
}

// Reshape returns a tensor with the same data and a different shape.
func (cpu *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape))
	}

	result := newRawOrPanic("reshape", newShape, t.DType(), t.Device())
	copy(result.Data(), t.Data())
	return result
}

// Transpose permutes the tensor's dimensions. Empty axes reverse them.
func (cpu *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result := newRawOrPanic("transpose", newShape, t.DType(), t.Device())

	switch t.DType() {
	case tensor.Float32:
		transposeFloat32(result.AsFloat32(), t.AsFloat32(), shape, axes)
	case tensor.Float64:
		transposeFloat64(result.AsFloat64(), t.AsFloat64(), shape, axes)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}

	return result
}

func newRawOrPanic(op string, shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
