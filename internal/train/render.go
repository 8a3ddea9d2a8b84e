package train

import (
	"fmt"
	"io"
	"strings"

	"github.com/ember-ml/ember/internal/dataset/mnist"
)

// Intensity ramp from background to full ink for normalized pixels.
const renderRamp = " .:-=+*#%@"

// RenderImage writes a 28x28 image as ASCII art. Pixels are expected in
// [-1, 1] as produced by the dataset loaders.
func RenderImage(w io.Writer, image []float32) error {
	if len(image) != mnist.ImageSize {
		return fmt.Errorf("render: image has %d pixels, want %d", len(image), mnist.ImageSize)
	}

	var sb strings.Builder
	for row := 0; row < mnist.ImageRows; row++ {
		for col := 0; col < mnist.ImageCols; col++ {
			p := image[row*mnist.ImageCols+col]
			sb.WriteByte(renderRamp[rampIndex(p)])
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func rampIndex(pixel float32) int {
	// Map [-1, 1] back to [0, 1].
	v := (pixel + 1) / 2
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	idx := int(v * float32(len(renderRamp)-1))
	if idx >= len(renderRamp) {
		idx = len(renderRamp) - 1
	}
	return idx
}

// RenderPrediction writes one bar per class showing the model's
// probability for it, marking the argmax row.
func RenderPrediction(w io.Writer, probs []float32) error {
	if len(probs) != mnist.NumClasses {
		return fmt.Errorf("render: got %d class probabilities, want %d", len(probs), mnist.NumClasses)
	}

	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	const barWidth = 40
	for digit, p := range probs {
		marker := " "
		if digit == best {
			marker = "<"
		}
		bar := strings.Repeat("#", int(p*barWidth+0.5))
		if _, err := fmt.Fprintf(w, "%d: %6.2f%% %s %s\n", digit, p*100, bar, marker); err != nil {
			return err
		}
	}
	return nil
}
