// Package dataset builds the digit-pair and disk datasets used by the experiments.
//
// Digit images come from the MNIST IDX files when they are available, or from
// a synthetic seven-segment generator otherwise. Pairs are drawn at random from
// 14x14 downsampled images and labelled 1 when the first digit is lesser or equal
// to the second.
package dataset

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// IDX magic numbers.
const (
	idxImagesMagic = 2051
	idxLabelsMagic = 2049
)

// ErrInvalidMagic is returned when an IDX file does not start with the expected magic number.
var ErrInvalidMagic = errors.New("invalid IDX magic number")

// Digits is a set of single-channel digit images with their classes.
type Digits struct {
	Pixels []float32 // [n, rows, cols], normalized to [0, 1]
	Labels []int     // [n], digit classes 0-9
	Rows   int
	Cols   int
}

// Len returns the number of images.
func (d *Digits) Len() int {
	return len(d.Labels)
}

// Image returns the pixels of image i. The slice aliases d.Pixels.
func (d *Digits) Image(i int) []float32 {
	size := d.Rows * d.Cols
	return d.Pixels[i*size : (i+1)*size]
}

// LoadMNIST loads the MNIST training or test split from dir.
//
// Expected files in dir, each optionally gzip-compressed with a .gz suffix:
//   - train-images-idx3-ubyte / train-labels-idx1-ubyte
//   - t10k-images-idx3-ubyte / t10k-labels-idx1-ubyte
func LoadMNIST(dir string, train bool) (*Digits, error) {
	prefix := "t10k"
	if train {
		prefix = "train"
	}

	images, rows, cols, err := readIDXImagesFile(filepath.Join(dir, prefix+"-images-idx3-ubyte"))
	if err != nil {
		return nil, fmt.Errorf("failed to load images: %w", err)
	}

	labels, err := readIDXLabelsFile(filepath.Join(dir, prefix+"-labels-idx1-ubyte"))
	if err != nil {
		return nil, fmt.Errorf("failed to load labels: %w", err)
	}

	size := rows * cols
	if len(images) != len(labels)*size {
		return nil, fmt.Errorf("image count (%d) != label count (%d)", len(images)/max(size, 1), len(labels))
	}

	digits := &Digits{
		Pixels: make([]float32, len(images)),
		Labels: make([]int, len(labels)),
		Rows:   rows,
		Cols:   cols,
	}
	for i, p := range images {
		digits.Pixels[i] = float32(p) / 255.0
	}
	for i, l := range labels {
		if l > 9 {
			return nil, fmt.Errorf("label out of range [0, 9] at index %d: %d", i, l)
		}
		digits.Labels[i] = int(l)
	}
	return digits, nil
}

// openIDX opens path, falling back to path+".gz" when the plain file is missing.
func openIDX(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	gz, gzErr := os.Open(path + ".gz")
	if gzErr != nil {
		// Report the plain path; it is the one callers document.
		return nil, err
	}
	zr, err := gzip.NewReader(gz)
	if err != nil {
		gz.Close()
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	return &gzipFile{Reader: zr, file: gz}, nil
}

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if ferr := g.file.Close(); err == nil {
		err = ferr
	}
	return err
}

func readIDXImagesFile(path string) ([]byte, int, int, error) {
	r, err := openIDX(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer r.Close()
	return ReadIDXImages(r)
}

func readIDXLabelsFile(path string) ([]byte, error) {
	r, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadIDXLabels(r)
}

// ReadIDXImages reads an image file in IDX format.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
//
// Returns the pixel bytes of every image back to back along with rows and cols.
func ReadIDXImages(r io.Reader) ([]byte, int, int, error) {
	var header struct {
		Magic, Count, Rows, Cols uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != idxImagesMagic {
		return nil, 0, 0, fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, header.Magic, idxImagesMagic)
	}

	pixels := make([]byte, int(header.Count)*int(header.Rows)*int(header.Cols))
	if _, err := io.ReadFull(r, pixels); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read %d images: %w", header.Count, err)
	}
	return pixels, int(header.Rows), int(header.Cols), nil
}

// ReadIDXLabels reads a label file in IDX format.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
func ReadIDXLabels(r io.Reader) ([]byte, error) {
	var header struct {
		Magic, Count uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header.Magic != idxLabelsMagic {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, header.Magic, idxLabelsMagic)
	}

	labels := make([]byte, header.Count)
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return labels, nil
}
