package train

import (
	"bytes"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/dataset/mnist"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/tensor"
)

type adBackend = *autodiff.AutodiffBackend[*cpu.Backend]

func newClassifier(t *testing.T, backend adBackend, hidden int) *nn.Sequential[adBackend] {
	t.Helper()
	return nn.NewSequential[adBackend](
		nn.NewLinear(mnist.ImageSize, hidden, backend),
		nn.NewReLU[adBackend](),
		nn.NewLinear(hidden, mnist.NumClasses, backend),
		nn.NewLogSoftmax[adBackend](),
	)
}

func newTrainerFixture(t *testing.T, samples, batchSize, hidden int, lr float32) (*Trainer[*cpu.Backend], *mnist.Loader[adBackend]) {
	t.Helper()
	tensor.Seed(1)

	backend := autodiff.New(cpu.New())
	model := newClassifier(t, backend, hidden)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: lr})

	data := mnist.Synthetic(samples)
	loader := mnist.NewLoader(data, batchSize, backend)

	return New(backend, model, optimizer, io.Discard), loader
}

func TestTrainer_StepReducesLossOnRepeatedBatch(t *testing.T) {
	trainer, loader := newTrainerFixture(t, 32, 32, 32, 0.05)
	trainer.backend.Tape().StartRecording()
	defer trainer.backend.Tape().StopRecording()

	batch := loader.Batch(0)
	first := trainer.Step(batch)
	for i := 0; i < 20; i++ {
		trainer.Step(batch)
	}
	last := trainer.Step(batch)

	require.Less(t, last, first, "loss should decrease when stepping on the same batch")
}

func TestTrainer_StepPopulatesParameterGradients(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := newClassifier(t, backend, 16)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
	trainer := New(backend, model, optimizer, io.Discard)

	loader := mnist.NewLoader(mnist.Synthetic(8), 8, backend)

	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()
	trainer.Step(loader.Batch(0))

	for _, param := range model.Parameters() {
		require.NotNil(t, param.Grad(), "parameter %s has no gradient after a step", param.Name())
		assert.True(t, param.Tensor().Shape().Equal(param.Grad().Shape()),
			"gradient shape mismatch for %s", param.Name())
	}
}

func TestTrainer_IdenticalBatchesProduceIdenticalGradients(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := newClassifier(t, backend, 16)
	// Zero learning rate so the parameters stay fixed between steps.
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0})
	trainer := New(backend, model, optimizer, io.Discard)

	loader := mnist.NewLoader(mnist.Synthetic(8), 8, backend)
	batch := loader.Batch(0)

	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	trainer.Step(batch)
	first := make(map[string][]float32)
	for _, param := range model.Parameters() {
		first[param.Name()] = append([]float32(nil), param.Grad().Data()...)
	}

	trainer.Step(batch)
	for _, param := range model.Parameters() {
		assert.Equal(t, first[param.Name()], param.Grad().Data(),
			"gradients for %s differ between identical batches", param.Name())
	}
}

func TestTrainer_StepUpdatesEveryParameter(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := newClassifier(t, backend, 16)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.1})
	trainer := New(backend, model, optimizer, io.Discard)

	loader := mnist.NewLoader(mnist.Synthetic(8), 8, backend)

	before := make(map[string][]float32)
	for _, param := range model.Parameters() {
		before[param.Name()] = append([]float32(nil), param.Tensor().Data()...)
	}

	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()
	trainer.Step(loader.Batch(0))

	for _, param := range model.Parameters() {
		gradData := param.Grad().Data()
		paramData := param.Tensor().Data()
		for i, g := range gradData {
			if g != 0 {
				assert.NotEqual(t, before[param.Name()][i], paramData[i],
					"%s[%d] unchanged despite nonzero gradient", param.Name(), i)
			}
		}
	}
}

func TestTrainer_OneStepReducesLossOnFullTopology(t *testing.T) {
	tensor.Seed(3)
	backend := autodiff.New(cpu.New())

	// 784 -> 128 -> 64 -> 10 on a 64-sample batch at lr 0.01.
	model := nn.NewSequential[adBackend](
		nn.NewLinear(mnist.ImageSize, 128, backend),
		nn.NewReLU[adBackend](),
		nn.NewLinear(128, 64, backend),
		nn.NewReLU[adBackend](),
		nn.NewLinear(64, mnist.NumClasses, backend),
		nn.NewLogSoftmax[adBackend](),
	)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})
	trainer := New(backend, model, optimizer, io.Discard)

	loader := mnist.NewLoader(mnist.Synthetic(64), 64, backend)
	batch := loader.Batch(0)

	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	before := trainer.Step(batch)
	after := trainer.Step(batch)

	require.Less(t, after, before, "one gradient step should reduce the re-evaluated loss")
}

func TestTrainer_FitReducesLossOverEpochs(t *testing.T) {
	trainer, loader := newTrainerFixture(t, 64, 16, 32, 0.05)
	rng := rand.New(rand.NewSource(42))

	before := trainer.Evaluate(loader)
	trainer.Fit(loader, 5, rng)
	after := trainer.Evaluate(loader)

	require.Less(t, after.Loss, before.Loss, "training should reduce loss on the training set")
	assert.Equal(t, 64, after.Samples)
}

func TestTrainer_FitReportsPerEpoch(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := newClassifier(t, backend, 8)
	optimizer := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01})

	var buf bytes.Buffer
	trainer := New(backend, model, optimizer, &buf)
	loader := mnist.NewLoader(mnist.Synthetic(16), 8, backend)

	trainer.Fit(loader, 3, rand.New(rand.NewSource(1)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "epoch 1/3")
	assert.Contains(t, lines[2], "epoch 3/3")
	for _, line := range lines {
		assert.Contains(t, line, "loss=")
	}
}

func TestTrainer_EvaluateLeavesTapeState(t *testing.T) {
	trainer, loader := newTrainerFixture(t, 16, 8, 8, 0.01)

	trainer.Evaluate(loader)
	assert.False(t, trainer.backend.Tape().IsRecording())

	trainer.backend.Tape().StartRecording()
	trainer.Evaluate(loader)
	assert.True(t, trainer.backend.Tape().IsRecording())
	trainer.backend.Tape().StopRecording()
}

func TestTrainer_SyntheticDataIsLearnable(t *testing.T) {
	trainer, loader := newTrainerFixture(t, 100, 20, 64, 0.1)

	trainer.Fit(loader, 20, rand.New(rand.NewSource(7)))
	metrics := trainer.Evaluate(loader)

	// The synthetic patterns are linearly separable, so a trained model
	// should classify nearly all of them.
	assert.Greater(t, metrics.Accuracy, 0.9, "accuracy after training: %v", metrics.Accuracy)
}

func TestTrainer_PredictMatchesProbabilities(t *testing.T) {
	trainer, loader := newTrainerFixture(t, 8, 8, 8, 0.01)
	batch := loader.Batch(0)

	preds := trainer.Predict(batch.Images)
	probs := trainer.Probabilities(batch.Images)

	require.Len(t, preds, 8)
	require.Len(t, probs, 8)
	for i, row := range probs {
		require.Len(t, row, mnist.NumClasses)

		sum := float32(0)
		best := 0
		for j, p := range row {
			sum += p
			if p > row[best] {
				best = j
			}
		}
		assert.InDelta(t, 1.0, sum, 1e-4, "probabilities for row %d do not sum to 1", i)
		assert.Equal(t, int32(best), preds[i], "prediction disagrees with argmax of probabilities")
	}
}
