// Package models defines the networks of the digit-pair comparison experiment.
//
// FCN and CNN classify a single 14x14 digit into 10 logits. SiameseNet runs
// one (shared) or two (independent) of them over the two images of a pair and
// compares their logits with a small fully connected head. BasicNet is the
// baseline that sees both images at once and never classifies digits.
package models

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/siamese/internal/nn"
	"github.com/born-ml/siamese/internal/tensor"
)

// Image geometry of the pair dataset.
const (
	ImageSide     = 14
	ImageSize     = ImageSide * ImageSide
	NumberClasses = 10
)

// Kind names a digit subnet architecture.
type Kind string

// Available subnet architectures.
const (
	KindFCN Kind = "FCN"
	KindCNN Kind = "CNN"
)

// ParseKind converts a case-sensitive or lowercase name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "FCN", "fcn":
		return KindFCN, nil
	case "CNN", "cnn":
		return KindCNN, nil
	default:
		return "", fmt.Errorf("unknown subnet kind %q (want fcn or cnn)", s)
	}
}

// SubnetConfig sizes a digit subnet. BaseChannels and KernelSize only apply to KindCNN.
type SubnetConfig struct {
	Kind         Kind
	NbHidden     int
	Hidden       int
	BaseChannels int
	KernelSize   int
}

// NewSubnet builds the digit classifier described by cfg.
func NewSubnet(cfg SubnetConfig, backend tensor.Backend, rng *rand.Rand) nn.Module {
	switch cfg.Kind {
	case KindFCN:
		return NewFCN(cfg.NbHidden, cfg.Hidden, backend, rng)
	case KindCNN:
		return NewCNN(cfg.NbHidden, cfg.Hidden, cfg.BaseChannels, cfg.KernelSize, backend, rng)
	default:
		panic(fmt.Sprintf("models: unknown subnet kind %q", cfg.Kind))
	}
}

// mlp appends nbHidden Linear+ReLU blocks of width hidden followed by a Linear to out.
func mlp(seq *nn.Sequential, in, hidden, nbHidden, out int, backend tensor.Backend, rng *rand.Rand) {
	if nbHidden <= 0 || hidden <= 0 {
		panic(fmt.Sprintf("models: invalid hidden layers nb=%d, size=%d", nbHidden, hidden))
	}
	for i := 0; i < nbHidden; i++ {
		seq.Add(nn.NewLinear(in, hidden, backend, rng))
		seq.Add(nn.NewReLU())
		in = hidden
	}
	seq.Add(nn.NewLinear(in, out, backend, rng))
}

// FCN is a fully connected digit classifier.
//
// Architecture:
//
//	Input: [batch, 1, 14, 14]
//	Flatten -> [batch, 196]
//	(Linear -> ReLU) x nbHidden
//	Linear -> [batch, 10] (digit logits)
type FCN struct {
	*nn.Sequential
	nbHidden int
	hidden   int
}

// NewFCN creates a fully connected digit classifier.
func NewFCN(nbHidden, hidden int, backend tensor.Backend, rng *rand.Rand) *FCN {
	seq := nn.NewSequential(nn.NewFlatten())
	mlp(seq, ImageSize, hidden, nbHidden, NumberClasses, backend, rng)
	return &FCN{Sequential: seq, nbHidden: nbHidden, hidden: hidden}
}

// String returns a short description of the architecture.
func (m *FCN) String() string {
	return fmt.Sprintf("FCN(nb_hidden=%d, hidden=%d)", m.nbHidden, m.hidden)
}

// CNN is a convolutional digit classifier.
//
// Architecture (C = base channels, k = odd kernel size, "same" padding):
//
//	Input: [batch, 1, 14, 14]
//	Conv1: 1 -> C, kxk -> ReLU -> MaxPool 2x2 -> [batch, C, 7, 7]
//	Conv2: C -> 2C, kxk -> ReLU -> MaxPool 2x2 -> [batch, 2C, 3, 3]
//	Flatten -> [batch, 18C]
//	(Linear -> ReLU) x nbHidden
//	Linear -> [batch, 10] (digit logits)
type CNN struct {
	*nn.Sequential
	nbHidden     int
	hidden       int
	baseChannels int
	kernelSize   int
}

// NewCNN creates a convolutional digit classifier.
func NewCNN(nbHidden, hidden, baseChannels, kernelSize int, backend tensor.Backend, rng *rand.Rand) *CNN {
	if kernelSize <= 0 || kernelSize%2 == 0 {
		panic(fmt.Sprintf("models: CNN kernel size must be odd, got %d", kernelSize))
	}
	pad := kernelSize / 2

	conv1 := nn.NewConv2D(1, baseChannels, kernelSize, kernelSize, 1, pad, true, backend, rng)
	pool1 := nn.NewMaxPool2D(2, 2, backend)
	conv2 := nn.NewConv2D(baseChannels, 2*baseChannels, kernelSize, kernelSize, 1, pad, true, backend, rng)
	pool2 := nn.NewMaxPool2D(2, 2, backend)

	h, w := pool1.OutputSize(conv1.OutputSize(ImageSide, ImageSide))
	h, w = pool2.OutputSize(conv2.OutputSize(h, w))

	seq := nn.NewSequential(
		conv1, nn.NewReLU(), pool1,
		conv2, nn.NewReLU(), pool2,
		nn.NewFlatten(),
	)
	mlp(seq, conv2.OutChannels()*h*w, hidden, nbHidden, NumberClasses, backend, rng)

	return &CNN{
		Sequential:   seq,
		nbHidden:     nbHidden,
		hidden:       hidden,
		baseChannels: baseChannels,
		kernelSize:   kernelSize,
	}
}

// String returns a short description of the architecture.
func (m *CNN) String() string {
	return fmt.Sprintf("CNN(nb_hidden=%d, hidden=%d, channels=%d, kernel=%d)",
		m.nbHidden, m.hidden, m.baseChannels, m.kernelSize)
}
