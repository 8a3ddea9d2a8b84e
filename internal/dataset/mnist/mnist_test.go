package mnist

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-ml/ember/internal/backend/cpu"
)

// buildIDXImages encodes images in the IDX binary format.
func buildIDXImages(t *testing.T, images [][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(idxImageMagic)))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(len(images))))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(ImageRows)))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(ImageCols)))
	for _, img := range images {
		buf.Write(img)
	}
	return buf.Bytes()
}

func buildIDXLabels(t *testing.T, labels []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(idxLabelMagic)))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(len(labels))))
	buf.Write(labels)
	return buf.Bytes()
}

func TestReadIDXImages(t *testing.T) {
	img := make([]byte, ImageSize)
	img[0] = 255
	img[783] = 128
	encoded := buildIDXImages(t, [][]byte{img, make([]byte, ImageSize)})

	images, err := readIDXImages(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, byte(255), images[0][0])
	assert.Equal(t, byte(128), images[0][783])
}

func TestReadIDXImages_BadMagic(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, uint32(1234))

	_, err := readIDXImages(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}

func TestReadIDXImages_Truncated(t *testing.T) {
	encoded := buildIDXImages(t, [][]byte{make([]byte, ImageSize)})

	_, err := readIDXImages(bytes.NewReader(encoded[:len(encoded)-10]))
	require.Error(t, err)
}

func TestReadIDXLabels(t *testing.T) {
	encoded := buildIDXLabels(t, []byte{3, 1, 4})

	labels, err := readIDXLabels(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 1, 4}, labels)
}

func TestReadCSV(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("label")
	for i := 0; i < ImageSize; i++ {
		sb.WriteString(",px")
	}
	sb.WriteString("\n")

	// One sample, label 7, first pixel full white and the rest black.
	sb.WriteString("7,255")
	for i := 1; i < ImageSize; i++ {
		sb.WriteString(",0")
	}
	sb.WriteString("\n")

	data, err := readCSV(strings.NewReader(sb.String()), 0)
	require.NoError(t, err)
	require.Equal(t, 1, data.Len())
	assert.Equal(t, int32(7), data.Labels[0])
	assert.InDelta(t, 1.0, float64(data.Images[0][0]), 1e-6)
	assert.InDelta(t, -1.0, float64(data.Images[0][1]), 1e-6)
}

func TestReadCSV_RejectsBadLabel(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("label")
	for i := 0; i < ImageSize; i++ {
		sb.WriteString(",px")
	}
	sb.WriteString("\n12,0")
	for i := 1; i < ImageSize; i++ {
		sb.WriteString(",0")
	}
	sb.WriteString("\n")

	_, err := readCSV(strings.NewReader(sb.String()), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label out of range")
}

func TestNormalizePixel_Range(t *testing.T) {
	assert.InDelta(t, -1.0, float64(normalizePixel(0)), 1e-6)
	assert.InDelta(t, 1.0, float64(normalizePixel(255)), 1e-6)
	mid := normalizePixel(128)
	assert.Greater(t, float64(mid), -0.01)
	assert.Less(t, float64(mid), 0.01)
}

func TestSynthetic(t *testing.T) {
	data := Synthetic(25)
	require.Equal(t, 25, data.Len())

	for i, label := range data.Labels {
		assert.Equal(t, int32(i%NumClasses), label)
	}
	for _, img := range data.Images {
		require.Len(t, img, ImageSize)
		for _, p := range img {
			assert.GreaterOrEqual(t, float64(p), -1.0)
			assert.LessOrEqual(t, float64(p), 1.0)
		}
	}
}

func TestDataset_Split(t *testing.T) {
	data := Synthetic(100)
	train, val := data.Split(0.8)

	assert.Equal(t, 80, train.Len())
	assert.Equal(t, 20, val.Len())
}

func TestLoader_Batching(t *testing.T) {
	backend := cpu.New()
	data := Synthetic(10)
	loader := NewLoader(data, 4, backend)

	require.Equal(t, 3, loader.NumBatches())

	first := loader.Batch(0)
	assert.Equal(t, 4, first.Size)
	assert.True(t, first.Images.Shape().Equal([]int{4, ImageSize}))
	assert.True(t, first.Labels.Shape().Equal([]int{4}))

	// Unshuffled order is dataset order.
	assert.Equal(t, int32(0), first.Labels.Data()[0])
	assert.Equal(t, int32(3), first.Labels.Data()[3])

	last := loader.Batch(2)
	assert.Equal(t, 2, last.Size, "final partial batch")
}

func TestLoader_ReshuffleIsSeedDeterministic(t *testing.T) {
	backend := cpu.New()
	data := Synthetic(50)

	order := func(seed int64) []int32 {
		loader := NewLoader(data, 50, backend)
		loader.Reshuffle(rand.New(rand.NewSource(seed)))
		labels := loader.Batch(0).Labels.Data()
		out := make([]int32, len(labels))
		copy(out, labels)
		return out
	}

	assert.Equal(t, order(42), order(42), "same seed, same order")
	assert.NotEqual(t, order(42), order(43), "different seed, different order")
}

func TestLoader_ReshufflePreservesPairs(t *testing.T) {
	// After shuffling, each served image must still carry its own label.
	backend := cpu.New()
	data := Synthetic(NumClasses)
	loader := NewLoader(data, NumClasses, backend)
	loader.Reshuffle(rand.New(rand.NewSource(7)))

	batch := loader.Batch(0)
	images := batch.Images.Data()
	for row := 0; row < batch.Size; row++ {
		label := int(batch.Labels.Data()[row])
		// The synthetic pattern for digit d has its band starting at
		// row 2d, so pixel (2d, 10) is bright exactly for label d.
		bandPixel := images[row*ImageSize+(2*label)*ImageCols+10]
		assert.InDelta(t, 0.8, float64(bandPixel), 1e-6,
			"row %d label %d lost its image", row, label)
	}
}

func TestLoader_DefaultBatchSize(t *testing.T) {
	loader := NewLoader(Synthetic(200), 0, cpu.New())
	assert.Equal(t, DefaultBatchSize, loader.BatchSize())
}
