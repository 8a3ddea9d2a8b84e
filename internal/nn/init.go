package nn

import (
	"math"

	"github.com/ember-ml/ember/internal/tensor"
)

// Xavier initializes a weight tensor with the Glorot uniform distribution
// U(-bound, bound), bound = sqrt(6 / (fanIn + fanOut)). The scaling keeps
// activation variance roughly constant across layers at the start of
// training.
//
// Samples come from the tensor package's seeded stream, so runs with the
// same tensor.Seed produce identical weights.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		data[i] = float32((tensor.Uniform()*2.0 - 1.0) * bound)
	}
	return t
}

// Zeros creates a zero-filled float32 tensor, the standard bias
// initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}
