package autodiff_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

// Gradient checking compares every analytic gradient against a central
// finite difference of the loss. Run in float64 so the comparison is not
// dominated by rounding noise.

const (
	checkBatch   = 2
	checkInputs  = 3
	checkClasses = 4
)

var (
	checkX = []float64{
		0.5, -1.2, 0.8,
		-0.3, 0.7, 1.5,
	}
	checkTargets = []int32{2, 0}
)

// classifierLoss computes NLL(log_softmax(x@w + bias)) on a plain CPU
// backend from a flat parameter vector [w..., bias...].
func classifierLoss(params []float64) float64 {
	backend := cpu.New()

	x, _ := tensor.FromSlice(checkX, tensor.Shape{checkBatch, checkInputs}, backend)
	w, _ := tensor.FromSlice(params[:checkInputs*checkClasses], tensor.Shape{checkInputs, checkClasses}, backend)
	bias, _ := tensor.FromSlice(params[checkInputs*checkClasses:], tensor.Shape{1, checkClasses}, backend)
	targets, _ := tensor.FromSlice(checkTargets, tensor.Shape{checkBatch}, backend)

	// Pin the parameters: the inplace fast path would otherwise write the
	// intermediate sums back into them between evaluations.
	defer x.Raw().ForceNonUnique()()
	defer w.Raw().ForceNonUnique()()
	defer bias.Raw().ForceNonUnique()()

	z := backend.Add(backend.MatMul(x.Raw(), w.Raw()), bias.Raw())
	logProbs := backend.LogSoftmax(z)

	targetData := targets.Raw().AsInt32()
	lp := logProbs.AsFloat64()
	total := 0.0
	for b := 0; b < checkBatch; b++ {
		total += -lp[b*checkClasses+int(targetData[b])]
	}
	return total / checkBatch
}

func TestGradientCheck_LinearClassifier(t *testing.T) {
	params := []float64{
		// w [3,4]
		0.1, -0.2, 0.3, 0.05,
		0.4, 0.15, -0.25, 0.35,
		-0.1, 0.2, 0.45, -0.3,
		// bias [1,4]
		0.01, -0.02, 0.03, 0.0,
	}

	// Analytic gradients through the tape.
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x, _ := tensor.FromSlice(checkX, tensor.Shape{checkBatch, checkInputs}, backend)
	w, _ := tensor.FromSlice(params[:checkInputs*checkClasses], tensor.Shape{checkInputs, checkClasses}, backend)
	bias, _ := tensor.FromSlice(params[checkInputs*checkClasses:], tensor.Shape{1, checkClasses}, backend)
	targets, _ := tensor.FromSlice(checkTargets, tensor.Shape{checkBatch}, backend)

	z := backend.Add(backend.MatMul(x.Raw(), w.Raw()), bias.Raw())
	loss := backend.NLLLoss(backend.LogSoftmax(z), targets.Raw())
	grads := backend.Backward(loss)

	analytic := make([]float64, 0, len(params))
	analytic = append(analytic, grads[w.Raw()].AsFloat64()...)
	analytic = append(analytic, grads[bias.Raw()].AsFloat64()...)

	// Numeric gradients by central differences.
	numeric := fd.Gradient(nil, classifierLoss, params, &fd.Settings{
		Formula: fd.Central,
		Step:    1e-6,
	})

	if len(analytic) != len(numeric) {
		t.Fatalf("Gradient length %d, want %d", len(analytic), len(numeric))
	}
	for i := range numeric {
		if math.Abs(analytic[i]-numeric[i]) > 1e-6 {
			t.Errorf("param %d: analytic %v, numeric %v", i, analytic[i], numeric[i])
		}
	}
}

func TestGradientCheck_WithReLUHiddenLayer(t *testing.T) {
	// A hidden ReLU layer exercises MatMul, Add, ReLU and the loss pair
	// chained together. Weights are fixed so every check run sees the
	// same activation pattern.
	const hidden = 3

	x := []float64{0.2, -0.4, 0.9, 1.1, 0.3, -0.8}
	targets := []int32{1, 2}
	w2 := []float64{
		0.3, -0.1, 0.2, 0.4,
		-0.2, 0.5, 0.1, -0.3,
		0.15, 0.25, -0.35, 0.05,
	}
	b2 := []float64{0.0, 0.1, -0.1, 0.05}

	lossFromW1 := func(w1 []float64) float64 {
		backend := cpu.New()
		xt, _ := tensor.FromSlice(x, tensor.Shape{2, 3}, backend)
		w1t, _ := tensor.FromSlice(w1, tensor.Shape{3, hidden}, backend)
		w2t, _ := tensor.FromSlice(w2, tensor.Shape{hidden, 4}, backend)
		b2t, _ := tensor.FromSlice(b2, tensor.Shape{1, 4}, backend)
		tt, _ := tensor.FromSlice(targets, tensor.Shape{2}, backend)

		defer xt.Raw().ForceNonUnique()()
		defer w1t.Raw().ForceNonUnique()()
		defer w2t.Raw().ForceNonUnique()()
		defer b2t.Raw().ForceNonUnique()()

		h := backend.ReLU(backend.MatMul(xt.Raw(), w1t.Raw()))
		z := backend.Add(backend.MatMul(h, w2t.Raw()), b2t.Raw())
		logProbs := backend.LogSoftmax(z)

		lp := logProbs.AsFloat64()
		td := tt.Raw().AsInt32()
		total := 0.0
		for b := 0; b < 2; b++ {
			total += -lp[b*4+int(td[b])]
		}
		return total / 2
	}

	w1 := []float64{
		0.5, -0.3, 0.2,
		0.1, 0.4, -0.6,
		-0.2, 0.3, 0.7,
	}

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	xt, _ := tensor.FromSlice(x, tensor.Shape{2, 3}, backend)
	w1t, _ := tensor.FromSlice(w1, tensor.Shape{3, hidden}, backend)
	w2t, _ := tensor.FromSlice(w2, tensor.Shape{hidden, 4}, backend)
	b2t, _ := tensor.FromSlice(b2, tensor.Shape{1, 4}, backend)
	tt, _ := tensor.FromSlice(targets, tensor.Shape{2}, backend)

	h := backend.ReLU(backend.MatMul(xt.Raw(), w1t.Raw()))
	z := backend.Add(backend.MatMul(h, w2t.Raw()), b2t.Raw())
	loss := backend.NLLLoss(backend.LogSoftmax(z), tt.Raw())
	analytic := backend.Backward(loss)[w1t.Raw()].AsFloat64()

	numeric := fd.Gradient(nil, lossFromW1, w1, &fd.Settings{
		Formula: fd.Central,
		Step:    1e-6,
	})

	for i := range numeric {
		if math.Abs(analytic[i]-numeric[i]) > 1e-6 {
			t.Errorf("w1 param %d: analytic %v, numeric %v", i, analytic[i], numeric[i])
		}
	}
}
