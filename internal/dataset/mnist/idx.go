// Package mnist loads the MNIST handwritten digit dataset and serves it
// as shuffled mini-batches of tensors.
//
// Two on-disk formats are supported: the official IDX binary files and
// the Kaggle-style CSV export. Pixels are normalized from [0, 255] to
// [-1, 1] so inputs are centered at zero.
package mnist

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// IDX magic numbers, big-endian.
const (
	idxImageMagic = 2051
	idxLabelMagic = 2049
)

// readIDXImages parses an IDX image stream: magic 2051, image count,
// rows, cols, then row-major unsigned pixel bytes.
func readIDXImages(r io.Reader) ([][]byte, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != idxImageMagic {
		return nil, fmt.Errorf("invalid image magic number: got %d, want %d", magic, idxImageMagic)
	}

	var numImages, numRows, numCols uint32
	if err := binary.Read(r, binary.BigEndian, &numImages); err != nil {
		return nil, fmt.Errorf("failed to read image count: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &numRows); err != nil {
		return nil, fmt.Errorf("failed to read row count: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &numCols); err != nil {
		return nil, fmt.Errorf("failed to read column count: %w", err)
	}
	if numRows != 28 || numCols != 28 {
		return nil, fmt.Errorf("unexpected image size %dx%d, want 28x28", numRows, numCols)
	}

	imageSize := int(numRows * numCols)
	images := make([][]byte, numImages)
	for i := range images {
		images[i] = make([]byte, imageSize)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i, err)
		}
	}
	return images, nil
}

// readIDXLabels parses an IDX label stream: magic 2049, label count, then
// one byte per label.
func readIDXLabels(r io.Reader) ([]byte, error) {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", err)
	}
	if magic != idxLabelMagic {
		return nil, fmt.Errorf("invalid label magic number: got %d, want %d", magic, idxLabelMagic)
	}

	var numLabels uint32
	if err := binary.Read(r, binary.BigEndian, &numLabels); err != nil {
		return nil, fmt.Errorf("failed to read label count: %w", err)
	}

	labels := make([]byte, numLabels)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return labels, nil
}

func readIDXImagesFile(path string) ([][]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readIDXImages(file)
}

func readIDXLabelsFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readIDXLabels(file)
}
