package mnist

import (
	"fmt"
	"math/rand"

	"github.com/ember-ml/ember/internal/tensor"
)

// DefaultBatchSize is the mini-batch size used when none is given.
const DefaultBatchSize = 64

// Batch is one mini-batch of training data as tensors.
type Batch[B tensor.Backend] struct {
	Images *tensor.Tensor[float32, B] // [size, 784]
	Labels *tensor.Tensor[int32, B]   // [size]
	Size   int
}

// Loader serves a dataset as mini-batches in index order. A permutation
// over sample indices decouples shuffling from the stored data:
// Reshuffle permutes indices in place and the next pass sees the new
// order. Batch tensors are built on demand, one batch at a time.
type Loader[B tensor.Backend] struct {
	data      *Dataset
	batchSize int
	indices   []int
	backend   B
}

// NewLoader creates a Loader over the dataset. batchSize of 0 selects
// DefaultBatchSize.
func NewLoader[B tensor.Backend](data *Dataset, batchSize int, backend B) *Loader[B] {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if data.Len() == 0 {
		panic("mnist: empty dataset")
	}
	if len(data.Images) != len(data.Labels) {
		panic(fmt.Sprintf("mnist: %d images but %d labels", len(data.Images), len(data.Labels)))
	}

	indices := make([]int, data.Len())
	for i := range indices {
		indices[i] = i
	}

	return &Loader[B]{
		data:      data,
		batchSize: batchSize,
		indices:   indices,
		backend:   backend,
	}
}

// Reshuffle permutes the sample order with a Fisher-Yates shuffle driven
// by rng. Call once per epoch so every epoch sees a fresh batch
// composition.
func (l *Loader[B]) Reshuffle(rng *rand.Rand) {
	for i := len(l.indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		l.indices[i], l.indices[j] = l.indices[j], l.indices[i]
	}
}

// NumBatches returns the number of batches per pass. The final batch is
// smaller when the sample count does not divide evenly.
func (l *Loader[B]) NumBatches() int {
	return (l.data.Len() + l.batchSize - 1) / l.batchSize
}

// BatchSize returns the configured mini-batch size.
func (l *Loader[B]) BatchSize() int {
	return l.batchSize
}

// Len returns the number of samples served per pass.
func (l *Loader[B]) Len() int {
	return l.data.Len()
}

// Batch materializes batch i under the current shuffle order.
func (l *Loader[B]) Batch(i int) *Batch[B] {
	if i < 0 || i >= l.NumBatches() {
		panic(fmt.Sprintf("mnist: batch index %d out of range [0, %d)", i, l.NumBatches()))
	}

	start := i * l.batchSize
	end := start + l.batchSize
	if end > l.data.Len() {
		end = l.data.Len()
	}
	size := end - start

	images := tensor.Zeros[float32](tensor.Shape{size, ImageSize}, l.backend)
	labels := tensor.Zeros[int32](tensor.Shape{size}, l.backend)

	imageData := images.Data()
	labelData := labels.Data()
	for row, idx := range l.indices[start:end] {
		copy(imageData[row*ImageSize:(row+1)*ImageSize], l.data.Images[idx])
		labelData[row] = l.data.Labels[idx]
	}

	return &Batch[B]{Images: images, Labels: labels, Size: size}
}
