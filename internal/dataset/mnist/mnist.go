package mnist

import (
	"fmt"
	"path/filepath"
)

// Image geometry.
const (
	ImageRows  = 28
	ImageCols  = 28
	ImageSize  = ImageRows * ImageCols
	NumClasses = 10
)

// Dataset holds flattened images and their labels. Images are [n][784]
// float32 normalized to [-1, 1]; labels are class indices 0-9.
type Dataset struct {
	Images [][]float32
	Labels []int32
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Images)
}

// Split divides the dataset into a training part holding trainFraction of
// the samples and a validation part holding the rest. No copying: the
// parts share the underlying sample slices.
func (d *Dataset) Split(trainFraction float64) (train, val *Dataset) {
	if trainFraction <= 0 || trainFraction > 1 {
		panic(fmt.Sprintf("mnist: train fraction %v outside (0, 1]", trainFraction))
	}
	cut := int(float64(d.Len()) * trainFraction)
	train = &Dataset{Images: d.Images[:cut], Labels: d.Labels[:cut]}
	val = &Dataset{Images: d.Images[cut:], Labels: d.Labels[cut:]}
	return train, val
}

// normalizePixel maps a raw byte pixel to [-1, 1].
func normalizePixel(p byte) float32 {
	return (float32(p)/255.0 - 0.5) / 0.5
}

// LoadIDX loads the official IDX binary files from dataDir. With train
// set it reads train-images-idx3-ubyte and train-labels-idx1-ubyte,
// otherwise the t10k pair. maxSamples of 0 loads everything.
func LoadIDX(dataDir string, train bool, maxSamples int) (*Dataset, error) {
	imageFile, labelFile := "t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte"
	if train {
		imageFile, labelFile = "train-images-idx3-ubyte", "train-labels-idx1-ubyte"
	}

	imagesRaw, err := readIDXImagesFile(filepath.Join(dataDir, imageFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}
	labelsRaw, err := readIDXLabelsFile(filepath.Join(dataDir, labelFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}
	if len(imagesRaw) != len(labelsRaw) {
		return nil, fmt.Errorf("image count (%d) != label count (%d)", len(imagesRaw), len(labelsRaw))
	}

	numSamples := len(imagesRaw)
	if maxSamples > 0 && numSamples > maxSamples {
		numSamples = maxSamples
	}

	images := make([][]float32, numSamples)
	labels := make([]int32, numSamples)
	for i := 0; i < numSamples; i++ {
		images[i] = make([]float32, ImageSize)
		for j, p := range imagesRaw[i] {
			images[i][j] = normalizePixel(p)
		}
		if labelsRaw[i] > 9 {
			return nil, fmt.Errorf("label out of range at sample %d: %d", i, labelsRaw[i])
		}
		labels[i] = int32(labelsRaw[i])
	}

	return &Dataset{Images: images, Labels: labels}, nil
}

// Synthetic builds a small in-memory dataset of banded patterns, one per
// digit class, repeated until numSamples. It keeps the full pipeline
// runnable without downloading MNIST; the patterns are trivially
// separable, not realistic digits.
func Synthetic(numSamples int) *Dataset {
	if numSamples <= 0 {
		numSamples = NumClasses
	}

	images := make([][]float32, numSamples)
	labels := make([]int32, numSamples)

	for i := 0; i < numSamples; i++ {
		digit := i % NumClasses
		img := make([]float32, ImageSize)
		for j := range img {
			img[j] = -1
		}

		// A bright horizontal band whose position encodes the class.
		startRow := digit * 2
		for row := startRow; row < startRow+8 && row < ImageRows; row++ {
			for col := 5; col < 23; col++ {
				img[row*ImageCols+col] = 0.8
			}
		}

		images[i] = img
		labels[i] = int32(digit)
	}

	return &Dataset{Images: images, Labels: labels}
}
