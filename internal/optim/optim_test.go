package optim

import (
	"math"
	"testing"

	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/tensor"
)

func newParam(t *testing.T, backend *cpu.Backend, name string, data []float32) *nn.Parameter[*cpu.Backend] {
	t.Helper()
	tens, err := tensor.FromSlice(data, tensor.Shape{len(data)}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	return nn.NewParameter(name, tens)
}

func gradFor(t *testing.T, param *nn.Parameter[*cpu.Backend], data []float32) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(param.Tensor().Shape(), tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	copy(raw.AsFloat32(), data)
	return map[*tensor.RawTensor]*tensor.RawTensor{param.Tensor().Raw(): raw}
}

func TestSGD_Step(t *testing.T) {
	backend := cpu.New()
	param := newParam(t, backend, "weight", []float32{1, 2, 3})
	sgd := NewSGD([]*nn.Parameter[*cpu.Backend]{param}, SGDConfig{LR: 0.1})

	sgd.Step(gradFor(t, param, []float32{10, 20, 30}))

	// param -= 0.1 * grad
	want := []float32{0, 0, 0}
	for i, v := range param.Tensor().Data() {
		if math.Abs(float64(v-want[i])) > 1e-6 {
			t.Errorf("param[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestSGD_DefaultLR(t *testing.T) {
	sgd := NewSGD[*cpu.Backend](nil, SGDConfig{})
	if sgd.GetLR() != 0.01 {
		t.Errorf("Default LR = %v, want 0.01", sgd.GetLR())
	}
}

func TestSGD_SkipsParamsWithoutGradient(t *testing.T) {
	backend := cpu.New()
	a := newParam(t, backend, "a", []float32{1})
	b := newParam(t, backend, "b", []float32{5})
	sgd := NewSGD([]*nn.Parameter[*cpu.Backend]{a, b}, SGDConfig{LR: 1})

	sgd.Step(gradFor(t, a, []float32{1}))

	if a.Tensor().Data()[0] != 0 {
		t.Errorf("a = %v, want 0", a.Tensor().Data()[0])
	}
	if b.Tensor().Data()[0] != 5 {
		t.Errorf("b = %v, want unchanged 5", b.Tensor().Data()[0])
	}
}

func TestSGD_Momentum(t *testing.T) {
	backend := cpu.New()
	param := newParam(t, backend, "weight", []float32{0})
	sgd := NewSGD([]*nn.Parameter[*cpu.Backend]{param}, SGDConfig{LR: 1, Momentum: 0.5})

	// Step 1: velocity = 1, param = -1.
	sgd.Step(gradFor(t, param, []float32{1}))
	if got := param.Tensor().Data()[0]; math.Abs(float64(got+1)) > 1e-6 {
		t.Fatalf("After step 1: %v, want -1", got)
	}

	// Step 2: velocity = 0.5*1 + 1 = 1.5, param = -2.5.
	sgd.Step(gradFor(t, param, []float32{1}))
	if got := param.Tensor().Data()[0]; math.Abs(float64(got+2.5)) > 1e-6 {
		t.Fatalf("After step 2: %v, want -2.5", got)
	}
}

func TestSGD_ZeroGrad(t *testing.T) {
	backend := cpu.New()
	param := newParam(t, backend, "weight", []float32{1})
	param.SetGrad(tensor.Zeros[float32](tensor.Shape{1}, backend))

	sgd := NewSGD([]*nn.Parameter[*cpu.Backend]{param}, SGDConfig{})
	sgd.ZeroGrad()

	if param.Grad() != nil {
		t.Error("Gradient should be nil after ZeroGrad")
	}
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	// With bias correction the very first Adam step is lr * g/|g| up to
	// eps, independent of gradient magnitude.
	backend := cpu.New()
	param := newParam(t, backend, "weight", []float32{1, 1})
	adam := NewAdam([]*nn.Parameter[*cpu.Backend]{param}, AdamConfig{LR: 0.1})

	adam.Step(gradFor(t, param, []float32{100, -0.001}))

	data := param.Tensor().Data()
	if math.Abs(float64(data[0]-0.9)) > 1e-3 {
		t.Errorf("param[0] = %v, want ~0.9", data[0])
	}
	if math.Abs(float64(data[1]-1.1)) > 1e-3 {
		t.Errorf("param[1] = %v, want ~1.1", data[1])
	}
}

func TestAdam_Defaults(t *testing.T) {
	adam := NewAdam[*cpu.Backend](nil, AdamConfig{})
	if adam.GetLR() != 0.001 {
		t.Errorf("Default LR = %v, want 0.001", adam.GetLR())
	}
	if adam.beta1 != 0.9 || adam.beta2 != 0.999 {
		t.Errorf("Default betas = %v, %v", adam.beta1, adam.beta2)
	}
	if adam.eps != 1e-8 {
		t.Errorf("Default eps = %v", adam.eps)
	}
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	// Minimize f(x) = x² from x=5; gradient is 2x.
	backend := cpu.New()
	param := newParam(t, backend, "x", []float32{5})
	adam := NewAdam([]*nn.Parameter[*cpu.Backend]{param}, AdamConfig{LR: 0.1})

	for i := 0; i < 500; i++ {
		x := param.Tensor().Data()[0]
		adam.Step(gradFor(t, param, []float32{2 * x}))
	}

	if got := param.Tensor().Data()[0]; math.Abs(float64(got)) > 0.05 {
		t.Errorf("x after 500 steps = %v, want ~0", got)
	}
}
