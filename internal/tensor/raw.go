package tensor

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Device identifies where tensor data lives. Only CPU is implemented; the
// enum exists so backends can be added without changing call sites.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// tensorBuffer is a reference-counted shared byte buffer. The count lets
// backends decide between inplace mutation (unique owner) and fresh
// allocation (shared).
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
}

func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{data: make([]byte, size)}
	buf.refCount.Store(1)
	return buf
}

func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.data = nil
	}
}

func (tb *tensorBuffer) isUnique() bool {
	return tb.refCount.Load() == 1
}

// RawTensor is the untyped low-level tensor representation shared by all
// backends. Typed access goes through the As* views.
type RawTensor struct {
	buffer *tensorBuffer
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

// NewRaw creates a zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		buffer: newTensorBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's row-major memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Data returns the raw byte slice backing the tensor.
func (r *RawTensor) Data() []byte {
	return r.buffer.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("tensor dtype is %s, not int32", r.dtype))
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	if r.dtype != Uint8 {
		panic(fmt.Sprintf("tensor dtype is %s, not uint8", r.dtype))
	}
	return r.buffer.data
}

// Clone creates a shallow copy sharing the underlying buffer with reference
// counting. Backends copy the buffer lazily when a shared tensor would be
// mutated.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// Release decrements the reference count, freeing the buffer at zero.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique reports whether this tensor is the only reference to its buffer,
// in which case backends may mutate it in place.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.isUnique()
}

// ForceNonUnique temporarily bumps the reference count so IsUnique reports
// false, blocking inplace fast paths. The autodiff decorator uses this to
// keep recorded input values intact. The returned func restores the count
// and must be deferred.
func (r *RawTensor) ForceNonUnique() func() {
	r.buffer.addRef()
	return func() {
		r.buffer.release()
	}
}
