package mnist

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// LoadCSV loads a Kaggle-style MNIST CSV: a header row, then one record
// per sample of label,pixel0,...,pixel783. maxSamples of 0 loads
// everything.
func LoadCSV(path string, maxSamples int) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return readCSV(file, maxSamples)
}

func readCSV(r io.Reader, maxSamples int) (*Dataset, error) {
	reader := csv.NewReader(r)

	// Header row.
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var images [][]float32
	var labels []int32

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", row, err)
		}
		if len(record) != ImageSize+1 {
			return nil, fmt.Errorf("invalid record length at row %d: got %d, want %d", row, len(record), ImageSize+1)
		}

		label, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("invalid label at row %d: %w", row, err)
		}
		if label < 0 || label > 9 {
			return nil, fmt.Errorf("label out of range [0, 9] at row %d: %d", row, label)
		}

		img := make([]float32, ImageSize)
		for j := 0; j < ImageSize; j++ {
			pixel, err := strconv.Atoi(record[j+1])
			if err != nil {
				return nil, fmt.Errorf("invalid pixel at row %d, column %d: %w", row, j+1, err)
			}
			if pixel < 0 || pixel > 255 {
				return nil, fmt.Errorf("pixel out of range [0, 255] at row %d, column %d: %d", row, j+1, pixel)
			}
			img[j] = normalizePixel(byte(pixel))
		}

		images = append(images, img)
		labels = append(labels, int32(label))

		if maxSamples > 0 && len(images) >= maxSamples {
			break
		}
	}

	if len(images) == 0 {
		return nil, fmt.Errorf("no samples in CSV")
	}
	return &Dataset{Images: images, Labels: labels}, nil
}
