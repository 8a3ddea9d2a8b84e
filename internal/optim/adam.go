package optim

import (
	"math"

	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

// Adam implements the Adam optimizer (Kingma & Ba, 2014).
//
// It keeps exponential moving averages of the gradient and its square,
// bias-corrects both, and scales each coordinate's step by the inverse
// root of the second moment:
//
//	m = beta1*m + (1-beta1)*g
//	v = beta2*v + (1-beta2)*g²
//	param -= lr * (m / (1-beta1^t)) / (sqrt(v / (1-beta2^t)) + eps)
type Adam[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int
	m      map[*nn.Parameter[B]][]float32
	v      map[*nn.Parameter[B]][]float32
}

// AdamConfig configures the Adam optimizer.
type AdamConfig struct {
	LR    float32    // learning rate, default 0.001
	Betas [2]float32 // moment decay rates, default [0.9, 0.999]
	Eps   float32    // denominator stabilizer, default 1e-8
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam[B]{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*nn.Parameter[B]][]float32),
		v:      make(map[*nn.Parameter[B]][]float32),
	}
}

// Step applies one Adam update to every parameter with a gradient.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++
	biasCorrection1 := 1 - float32(math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := 1 - float32(math.Pow(float64(a.beta2), float64(a.t)))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		paramData := param.Tensor().Raw().AsFloat32()
		gradData := grad.AsFloat32()

		m, ok := a.m[param]
		if !ok {
			m = make([]float32, len(paramData))
			a.m[param] = m
		}
		v := a.v[param]
		if v == nil {
			v = make([]float32, len(paramData))
			a.v[param] = v
		}

		for i := range paramData {
			g := gradData[i]
			m[i] = a.beta1*m[i] + (1-a.beta1)*g
			v[i] = a.beta2*v[i] + (1-a.beta2)*g*g

			mHat := m[i] / biasCorrection1
			vHat := v[i] / biasCorrection2
			paramData[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// ZeroGrad clears every parameter's gradient slot.
func (a *Adam[B]) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the learning rate.
func (a *Adam[B]) GetLR() float32 {
	return a.lr
}
