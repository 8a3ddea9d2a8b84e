package train

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/dataset/mnist"
)

func TestRenderImage(t *testing.T) {
	image := make([]float32, mnist.ImageSize)
	for i := range image {
		image[i] = -1
	}
	// One fully-lit pixel at row 3, col 5.
	image[3*mnist.ImageCols+5] = 1

	var buf bytes.Buffer
	require.NoError(t, RenderImage(&buf, image))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, mnist.ImageRows)
	for i, line := range lines {
		assert.Len(t, line, mnist.ImageCols, "line %d has wrong width", i)
	}
	assert.Equal(t, byte('@'), lines[3][5])
	assert.Equal(t, byte(' '), lines[0][0])
}

func TestRenderImage_RejectsWrongSize(t *testing.T) {
	var buf bytes.Buffer
	err := RenderImage(&buf, make([]float32, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10 pixels")
}

func TestRenderPrediction(t *testing.T) {
	probs := make([]float32, mnist.NumClasses)
	probs[7] = 0.9
	probs[1] = 0.1

	var buf bytes.Buffer
	require.NoError(t, RenderPrediction(&buf, probs))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, mnist.NumClasses)
	assert.True(t, strings.HasSuffix(lines[7], "<"), "argmax row should be marked: %q", lines[7])
	assert.Contains(t, lines[7], "90.00%")
	assert.False(t, strings.HasSuffix(lines[1], "<"))
}

func TestRenderPrediction_RejectsWrongSize(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, RenderPrediction(&buf, []float32{0.5, 0.5}))
}
