package tensor

// Add performs element-wise addition with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div performs element-wise division with broadcasting.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Div(t.raw, other.raw), t.backend)
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data and a different shape.
// The new shape must preserve the number of elements.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes the tensor's dimensions. With no axes it reverses them,
// which for 2D tensors is the standard matrix transpose.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// T is a shortcut for 2D transpose. Panics if the tensor is not 2D.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	if len(t.Shape()) != 2 {
		panic("T() only works for 2D tensors")
	}
	return t.Transpose(1, 0)
}

// Exp computes the element-wise exponential.
func (t *Tensor[T, B]) Exp() *Tensor[T, B] {
	return New[T, B](t.backend.Exp(t.raw), t.backend)
}

// LogSoftmax computes the row-wise log-softmax of a 2D tensor.
func (t *Tensor[T, B]) LogSoftmax() *Tensor[T, B] {
	return New[T, B](t.backend.LogSoftmax(t.raw), t.backend)
}

// Sum reduces the tensor to its total sum, shape {1}.
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	return New[T, B](t.backend.Sum(t.raw), t.backend)
}
