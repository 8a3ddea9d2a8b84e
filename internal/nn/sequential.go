package nn

import (
	"github.com/ember-ml/ember/internal/tensor"
)

// Sequential chains modules so each output feeds the next input.
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a Sequential container over the given modules.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{modules: modules}
}

// Forward applies every module in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters collects the parameters of every contained module.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Modules returns the contained modules in order.
func (s *Sequential[B]) Modules() []Module[B] {
	return s.modules
}
