package nn

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Accuracy returns the fraction of rows whose argmax matches the target
// class. Scores can be logits or log-probabilities; both are monotone in
// the predicted class.
func Accuracy[B tensor.Backend](scores *tensor.Tensor[float32, B], targets *tensor.Tensor[int32, B]) float64 {
	shape := scores.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("accuracy: expected 2D scores [batch, classes], got %v", shape))
	}
	if targets.NumElements() != shape[0] {
		panic(fmt.Sprintf("accuracy: %d targets for %d rows", targets.NumElements(), shape[0]))
	}

	predictions := scores.Backend().Argmax(scores.Raw(), 1).AsInt32()
	targetData := targets.Data()

	correct := 0
	for i, p := range predictions {
		if p == targetData[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(predictions))
}
