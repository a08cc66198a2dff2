package models

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/siamese/internal/nn"
	"github.com/born-ml/siamese/internal/tensor"
)

// BasicNet is the baseline comparator without digit supervision.
//
// Architecture:
//
//	Input: [batch, 2, 14, 14]
//	Flatten -> [batch, 392]
//	(Linear -> ReLU) x nbHidden
//	Linear -> Sigmoid -> [batch, 1]
type BasicNet struct {
	*nn.Sequential
	nbHidden int
	hidden   int
}

// NewBasicNet creates the baseline network.
func NewBasicNet(nbHidden, hidden int, backend tensor.Backend, rng *rand.Rand) *BasicNet {
	seq := nn.NewSequential(nn.NewFlatten())
	mlp(seq, 2*ImageSize, hidden, nbHidden, 1, backend, rng)
	seq.Add(nn.NewSigmoid())
	return &BasicNet{Sequential: seq, nbHidden: nbHidden, hidden: hidden}
}

// String returns a short description of the architecture.
func (m *BasicNet) String() string {
	return fmt.Sprintf("BasicNet(nb_hidden=%d, hidden=%d)", m.nbHidden, m.hidden)
}
