// Package train drives the training loop: per-batch gradient steps,
// epoch scheduling with reshuffled batches, and evaluation.
package train

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/ember-ml/ember/internal/autodiff"
	"github.com/ember-ml/ember/internal/dataset/mnist"
	"github.com/ember-ml/ember/internal/nn"
	"github.com/ember-ml/ember/internal/optim"
	"github.com/ember-ml/ember/internal/tensor"
)

// Trainer couples a model, its loss and an optimizer over an autodiff
// backend, and runs the canonical step:
//
//	clear gradients -> forward -> loss -> backward -> update
type Trainer[B tensor.Backend] struct {
	backend   *autodiff.AutodiffBackend[B]
	model     nn.Module[*autodiff.AutodiffBackend[B]]
	criterion *nn.NLLLoss[*autodiff.AutodiffBackend[B]]
	optimizer optim.Optimizer
	out       io.Writer
}

// New creates a Trainer. Progress lines go to out; pass io.Discard to
// silence them.
func New[B tensor.Backend](
	backend *autodiff.AutodiffBackend[B],
	model nn.Module[*autodiff.AutodiffBackend[B]],
	optimizer optim.Optimizer,
	out io.Writer,
) *Trainer[B] {
	if out == nil {
		out = io.Discard
	}
	return &Trainer[B]{
		backend:   backend,
		model:     model,
		criterion: nn.NewNLLLoss(backend),
		optimizer: optimizer,
		out:       out,
	}
}

// Step runs one gradient step on a batch and returns the batch loss.
//
// Both the parameter gradient slots and the tape are cleared first, so a
// step never sees gradients or recorded operations from the previous
// batch. The tape must already be recording; Fit arms it.
func (t *Trainer[B]) Step(batch *mnist.Batch[*autodiff.AutodiffBackend[B]]) float32 {
	t.optimizer.ZeroGrad()
	t.backend.Tape().Clear()

	logProbs := t.model.Forward(batch.Images)
	loss := t.criterion.Forward(logProbs, batch.Labels)

	grads := t.backend.Backward(loss.Raw())

	// Expose gradients on the parameters before updating, so callers
	// can inspect them between Step and the next ZeroGrad.
	for _, param := range t.model.Parameters() {
		if g, ok := grads[param.Tensor().Raw()]; ok {
			param.SetGrad(tensor.New[float32](g, t.backend))
		}
	}

	t.optimizer.Step(grads)
	return loss.Item()
}

// Fit trains for the given number of epochs, reshuffling the batch order
// from rng before every epoch and reporting the mean training loss per
// epoch.
func (t *Trainer[B]) Fit(loader *mnist.Loader[*autodiff.AutodiffBackend[B]], epochs int, rng *rand.Rand) {
	t.backend.Tape().StartRecording()
	defer t.backend.Tape().StopRecording()

	for epoch := 1; epoch <= epochs; epoch++ {
		loader.Reshuffle(rng)

		totalLoss := 0.0
		for i := 0; i < loader.NumBatches(); i++ {
			totalLoss += float64(t.Step(loader.Batch(i)))
		}
		meanLoss := totalLoss / float64(loader.NumBatches())

		fmt.Fprintf(t.out, "epoch %d/%d: loss=%.4f lr=%g\n", epoch, epochs, meanLoss, t.optimizer.GetLR())
	}

	t.backend.Tape().Clear()
}

// Metrics holds evaluation results over a dataset pass.
type Metrics struct {
	Loss     float64
	Accuracy float64
	Samples  int
}

// Evaluate computes mean loss and accuracy over all batches without
// touching the tape or the parameters.
func (t *Trainer[B]) Evaluate(loader *mnist.Loader[*autodiff.AutodiffBackend[B]]) Metrics {
	wasRecording := t.backend.Tape().IsRecording()
	t.backend.Tape().StopRecording()
	defer func() {
		if wasRecording {
			t.backend.Tape().StartRecording()
		}
	}()

	totalLoss := 0.0
	correct := 0
	samples := 0

	for i := 0; i < loader.NumBatches(); i++ {
		batch := loader.Batch(i)
		logProbs := t.model.Forward(batch.Images)
		loss := t.criterion.Forward(logProbs, batch.Labels)

		totalLoss += float64(loss.Item()) * float64(batch.Size)
		correct += int(nn.Accuracy(logProbs, batch.Labels)*float64(batch.Size) + 0.5)
		samples += batch.Size
	}

	return Metrics{
		Loss:     totalLoss / float64(samples),
		Accuracy: float64(correct) / float64(samples),
		Samples:  samples,
	}
}

// Predict returns the predicted class for each row of images.
func (t *Trainer[B]) Predict(images *tensor.Tensor[float32, *autodiff.AutodiffBackend[B]]) []int32 {
	wasRecording := t.backend.Tape().IsRecording()
	t.backend.Tape().StopRecording()
	defer func() {
		if wasRecording {
			t.backend.Tape().StartRecording()
		}
	}()

	logProbs := t.model.Forward(images)
	predictions := t.backend.Argmax(logProbs.Raw(), 1).AsInt32()

	out := make([]int32, len(predictions))
	copy(out, predictions)
	return out
}

// Probabilities returns per-class probabilities for each row of images,
// recovered from the model's log-probabilities.
func (t *Trainer[B]) Probabilities(images *tensor.Tensor[float32, *autodiff.AutodiffBackend[B]]) [][]float32 {
	wasRecording := t.backend.Tape().IsRecording()
	t.backend.Tape().StopRecording()
	defer func() {
		if wasRecording {
			t.backend.Tape().StartRecording()
		}
	}()

	logProbs := t.model.Forward(images)
	probs := logProbs.Exp()

	shape := probs.Shape()
	rows, cols := shape[0], shape[1]
	data := probs.Data()

	out := make([][]float32, rows)
	for r := 0; r < rows; r++ {
		row := make([]float32, cols)
		copy(row, data[r*cols:(r+1)*cols])
		out[r] = row
	}
	return out
}
