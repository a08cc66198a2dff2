package dataset

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"

	"github.com/born-ml/siamese/internal/tensor"
)

// PairSide is the side length of a downsampled image inside a pair.
const PairSide = 14

// PairDataset holds n image pairs with their comparison and digit labels.
type PairDataset struct {
	images      []float32 // [n, 2, 14, 14]
	boolLabels  []float32 // [n], 1 when digit1 <= digit2
	digitLabels [][2]int  // [n], (digit1, digit2)
}

// PairBatch is one mini-batch drawn from a PairDataset.
type PairBatch struct {
	Images      *tensor.Tensor // [B, 2, 14, 14]
	BoolLabels  *tensor.Tensor // [B, 1]
	DigitLabels [][2]int       // [B]
}

// Size returns the number of pairs in the batch.
func (b PairBatch) Size() int {
	return len(b.DigitLabels)
}

// Digits returns the class of image side (0 or 1) for every pair of the batch.
func (b PairBatch) Digits(side int) []int {
	out := make([]int, len(b.DigitLabels))
	for i, d := range b.DigitLabels {
		out[i] = d[side]
	}
	return out
}

// Downsample halves both image dimensions with 2x2 average pooling.
func Downsample(d *Digits) *Digits {
	rows, cols := d.Rows/2, d.Cols/2
	out := &Digits{
		Pixels: make([]float32, d.Len()*rows*cols),
		Labels: append([]int(nil), d.Labels...),
		Rows:   rows,
		Cols:   cols,
	}
	for n := 0; n < d.Len(); n++ {
		src, dst := d.Image(n), out.Image(n)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				i := 2*r*d.Cols + 2*c
				sum := src[i] + src[i+1] + src[i+d.Cols] + src[i+d.Cols+1]
				dst[r*cols+c] = sum / 4
			}
		}
	}
	return out
}

// NewPairs draws n random pairs of distinct images from d without replacement.
//
// d must already be 14x14 and hold at least 2n images.
func NewPairs(d *Digits, n int, rng *rand.Rand) (*PairDataset, error) {
	if d.Rows != PairSide || d.Cols != PairSide {
		return nil, fmt.Errorf("pairs need %dx%d images, got %dx%d", PairSide, PairSide, d.Rows, d.Cols)
	}
	if n <= 0 {
		return nil, fmt.Errorf("number of pairs must be > 0 (got %d)", n)
	}
	if 2*n > d.Len() {
		return nil, fmt.Errorf("need %d images for %d pairs, have %d", 2*n, n, d.Len())
	}

	perm := rng.Perm(d.Len())[:2*n]
	size := PairSide * PairSide
	ds := &PairDataset{
		images:      make([]float32, n*2*size),
		boolLabels:  make([]float32, n),
		digitLabels: make([][2]int, n),
	}
	for i := 0; i < n; i++ {
		a, b := perm[2*i], perm[2*i+1]
		copy(ds.images[(2*i)*size:], d.Image(a))
		copy(ds.images[(2*i+1)*size:], d.Image(b))

		d1, d2 := d.Labels[a], d.Labels[b]
		ds.digitLabels[i] = [2]int{d1, d2}
		if d1 <= d2 {
			ds.boolLabels[i] = 1
		}
	}
	return ds, nil
}

// GeneratePairSets builds the training and test pair sets of n pairs each.
//
// Both sources are downsampled to 14x14 before pairing.
func GeneratePairSets(train, test *Digits, n int, rng *rand.Rand) (*PairDataset, *PairDataset, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	trainSet, err := NewPairs(Downsample(train), n, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("train pairs: %w", err)
	}
	testSet, err := NewPairs(Downsample(test), n, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("test pairs: %w", err)
	}
	return trainSet, testSet, nil
}

// Load returns n training and n test pairs.
//
// Unless synthetic is set it reads MNIST from dir, falling back to synthetic
// digits when the files do not exist. logger may be nil.
func Load(dir string, synthetic bool, n int, rng *rand.Rand, logger *slog.Logger) (*PairDataset, *PairDataset, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	var train, test *Digits
	if !synthetic {
		var err error
		train, test, err = loadMNISTSplits(dir)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("MNIST files not found, using synthetic digits", "dir", dir)
			synthetic = true
		case err != nil:
			return nil, nil, err
		default:
			logger.Info("loaded MNIST", "dir", dir, "train", train.Len(), "test", test.Len())
		}
	}
	if synthetic {
		// Twice the pairs plus slack so every pair gets distinct images.
		train = Synthetic(2*n+n/2, rng)
		test = Synthetic(2*n+n/2, rng)
	}

	return GeneratePairSets(train, test, n, rng)
}

func loadMNISTSplits(dir string) (*Digits, *Digits, error) {
	train, err := LoadMNIST(dir, true)
	if err != nil {
		return nil, nil, fmt.Errorf("mnist train: %w", err)
	}
	test, err := LoadMNIST(dir, false)
	if err != nil {
		return nil, nil, fmt.Errorf("mnist test: %w", err)
	}
	return train, test, nil
}

// Len returns the number of pairs.
func (p *PairDataset) Len() int {
	return len(p.digitLabels)
}

// BoolLabel returns the comparison label of pair i.
func (p *PairDataset) BoolLabel(i int) float32 {
	return p.boolLabels[i]
}

// DigitLabels returns the classes of both images of pair i.
func (p *PairDataset) DigitLabels(i int) [2]int {
	return p.digitLabels[i]
}

// Batches splits the dataset into consecutive mini-batches of batchSize pairs.
//
// The last batch is smaller when Len is not a multiple of batchSize. With
// shuffle set the pairs are visited in a fresh random order drawn from rng.
func (p *PairDataset) Batches(batchSize int, shuffle bool, rng *rand.Rand) []PairBatch {
	if batchSize <= 0 {
		panic(fmt.Sprintf("batches: batch size must be > 0, got %d", batchSize))
	}

	n := p.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if shuffle {
		if rng == nil {
			rng = rand.New(rand.NewSource(rand.Int63()))
		}
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	pairSize := 2 * PairSide * PairSide
	batches := make([]PairBatch, 0, (n+batchSize-1)/batchSize)
	for start := 0; start < n; start += batchSize {
		idx := order[start:min(start+batchSize, n)]
		images := make([]float32, len(idx)*pairSize)
		labels := make([]float32, len(idx))
		digits := make([][2]int, len(idx))
		for j, i := range idx {
			copy(images[j*pairSize:], p.images[i*pairSize:(i+1)*pairSize])
			labels[j] = p.boolLabels[i]
			digits[j] = p.digitLabels[i]
		}
		batches = append(batches, PairBatch{
			Images:      tensor.New(images, tensor.Shape{len(idx), 2, PairSide, PairSide}),
			BoolLabels:  tensor.New(labels, tensor.Shape{len(idx), 1}),
			DigitLabels: digits,
		})
	}
	return batches
}
