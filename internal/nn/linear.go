package nn

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Linear is a fully connected layer computing y = x @ Wᵀ + b.
//
// The weight is stored as [outFeatures, inFeatures] and transposed during
// the forward pass; the bias is [outFeatures], reshaped to [1, outFeatures]
// so the add broadcasts over the batch. Weights start Xavier-initialized,
// biases at zero.
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B]
	bias        *Parameter[B]
	backend     B
}

// NewLinear creates a Linear layer with Xavier-initialized weights and
// zero biases.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: feature counts must be positive, got %d -> %d", inFeatures, outFeatures))
	}

	weight := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, backend)
	bias := Zeros(tensor.Shape{outFeatures}, backend)

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weight),
		bias:        NewParameter("bias", bias),
		backend:     backend,
	}
}

// Forward computes y = x @ Wᵀ + b for input [batch, inFeatures].
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("linear: expected 2D input [batch, features], got shape %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("linear: expected %d input features, got %d", l.inFeatures, shape[1]))
	}

	// [batch, in] @ [in, out] -> [batch, out]
	output := input.MatMul(l.weight.Tensor().T())

	// Bias broadcasts over the batch dimension.
	output = output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))

	return output
}

// Parameters returns [weight, bias].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the input feature count.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the output feature count.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}
