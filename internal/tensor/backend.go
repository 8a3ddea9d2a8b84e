package tensor

// Backend is the compute interface all tensor operations dispatch through.
//
// The CPU backend implements it directly; the autodiff decorator wraps any
// Backend and records the differentiable operations on a gradient tape.
// Operations panic on shape or dtype mismatches: those are configuration
// errors, not runtime conditions to recover from.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Element-wise operations with a scalar.
	AddScalar(x *RawTensor, scalar any) *RawTensor
	MulScalar(x *RawTensor, scalar any) *RawTensor

	// Exp computes the element-wise exponential.
	Exp(x *RawTensor) *RawTensor

	// LogSoftmax computes the row-wise log-softmax of a 2D tensor along its
	// last dimension, using the max-subtraction formulation so that large
	// scores cannot overflow the exponential.
	LogSoftmax(x *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor             // total sum, shape {1}
	Argmax(x *RawTensor, dim int) *RawTensor // int32 indices of row maxima

	// Metadata.
	Name() string
	Device() Device
}
