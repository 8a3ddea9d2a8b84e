package optim

import (
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Without momentum each step is
//
//	param = param - lr * grad
//
// With momentum:
//
//	velocity = momentum * velocity + grad
//	param    = param - lr * velocity
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter[B]][]float32
}

// SGDConfig configures the SGD optimizer.
type SGDConfig struct {
	LR       float32 // learning rate, default 0.01
	Momentum float32 // momentum factor in [0, 1), default 0
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter[B]][]float32),
	}
}

// Step applies one descent update to every parameter with a gradient.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		paramData := param.Tensor().Raw().AsFloat32()
		gradData := grad.AsFloat32()

		if s.momentum == 0 {
			for i := range paramData {
				paramData[i] -= s.lr * gradData[i]
			}
			continue
		}

		velocity, ok := s.velocities[param]
		if !ok {
			velocity = make([]float32, len(paramData))
			s.velocities[param] = velocity
		}
		for i := range paramData {
			velocity[i] = s.momentum*velocity[i] + gradData[i]
			paramData[i] -= s.lr * velocity[i]
		}
	}
}

// ZeroGrad clears every parameter's gradient slot.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the learning rate.
func (s *SGD[B]) GetLR() float32 {
	return s.lr
}

// SetLR changes the learning rate, for schedules driven by the caller.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}
