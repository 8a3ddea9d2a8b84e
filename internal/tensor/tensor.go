package tensor

import "fmt"

// Tensor is a generic tensor with element type T computed by backend B.
//
// Example:
//
//	backend := cpu.New()
//	t := tensor.Zeros[float32](tensor.Shape{3, 4}, backend)
//	sum := t.Add(t)
//
// Gradient bookkeeping deliberately does not live here: which values need
// gradients is decided by recording operations on an explicitly constructed
// autodiff backend, not by per-tensor flags.
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New wraps a RawTensor and backend into a typed Tensor.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return &Tensor[T, B]{raw: raw, backend: b}
}

// FromSlice creates a tensor from a Go slice, copying the data.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		return nil, err
	}

	t := New[T, B](raw, b)
	copy(t.Data(), data)
	return t, nil
}

// Shape returns the tensor's shape.
func (t *Tensor[T, B]) Shape() Shape {
	return t.raw.Shape()
}

// DType returns the tensor's data type.
func (t *Tensor[T, B]) DType() DataType {
	return t.raw.DType()
}

// Device returns the tensor's compute device.
func (t *Tensor[T, B]) Device() Device {
	return t.raw.Device()
}

// NumElements returns the total number of elements.
func (t *Tensor[T, B]) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor for backend-level access.
func (t *Tensor[T, B]) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor[T, B]) Backend() B {
	return t.backend
}

// Data returns a typed slice view of the tensor's memory (zero-copy).
// Writes through the slice mutate the tensor.
func (t *Tensor[T, B]) Data() []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(t.raw.AsFloat32()).([]T)
	case float64:
		return any(t.raw.AsFloat64()).([]T)
	case int32:
		return any(t.raw.AsInt32()).([]T)
	case uint8:
		return any(t.raw.AsUint8()).([]T)
	default:
		panic("unsupported type")
	}
}

// Item returns the single value of a one-element tensor.
func (t *Tensor[T, B]) Item() T {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("Item() requires a one-element tensor, got shape %v", t.Shape()))
	}
	return t.Data()[0]
}

// At returns the element at the given indices.
func (t *Tensor[T, B]) At(indices ...int) T {
	return t.Data()[t.flatIndex(indices)]
}

// Set writes the element at the given indices.
func (t *Tensor[T, B]) Set(value T, indices ...int) {
	t.Data()[t.flatIndex(indices)] = value
}

func (t *Tensor[T, B]) flatIndex(indices []int) int {
	shape := t.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(shape), len(indices)))
	}

	offset := 0
	strides := t.raw.Strides()
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, shape[i]))
		}
		offset += idx * strides[i]
	}
	return offset
}

// Clone creates a copy of the tensor (shared buffer with copy-on-write).
func (t *Tensor[T, B]) Clone() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.raw.Clone(), backend: t.backend}
}

// String returns a human-readable description of the tensor.
func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.raw.DType(), t.raw.Shape(), t.raw.Device())
}
