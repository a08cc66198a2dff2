package models

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/siamese/internal/nn"
	"github.com/born-ml/siamese/internal/tensor"
)

// SiameseNet compares the two digits of a pair.
//
// Each image goes through a digit subnet producing 10 logits. The two logit
// vectors are concatenated and fed to a fully connected head ending in a
// sigmoid, which estimates P(digit1 <= digit2).
//
//	images [B, 2, 14, 14]
//	  left  = subnet1(images[:, 0]) -> [B, 10]
//	  right = subnet2(images[:, 1]) -> [B, 10]
//	  out   = head(cat(left, right)) -> [B, 1]
//
// With weight sharing both images go through the same subnet as one stacked
// batch of 2B images, so its cached activations cover both sides and a single
// Backward call accumulates the gradient of both.
type SiameseNet struct {
	left  nn.Module
	right nn.Module // nil when weights are shared
	head  *nn.Sequential

	batch int
}

// NewSiameseNet creates a Siamese network. A nil right shares left's weights for both images.
//
// The head has nbHidden Linear+ReLU blocks of width hidden, then Linear(hidden, 1) and Sigmoid.
func NewSiameseNet(left, right nn.Module, nbHidden, hidden int, backend tensor.Backend, rng *rand.Rand) *SiameseNet {
	if left == nil {
		panic("siamese: left subnet is required")
	}
	if left == right {
		right = nil
	}
	head := nn.NewSequential()
	mlp(head, 2*NumberClasses, hidden, nbHidden, 1, backend, rng)
	head.Add(nn.NewSigmoid())

	return &SiameseNet{left: left, right: right, head: head}
}

// WeightSharing reports whether both images use the same subnet.
func (s *SiameseNet) WeightSharing() bool {
	return s.right == nil
}

// Forward returns the comparison probability [B, 1] and the digit logits [B, 10] of each side.
func (s *SiameseNet) Forward(images *tensor.Tensor) (output, leftLogits, rightLogits *tensor.Tensor) {
	shape := images.Shape()
	if len(shape) != 4 || shape[1] != 2 {
		panic(fmt.Sprintf("siamese: expected input [batch, 2, H, W], got %v", shape))
	}
	batch := shape[0]
	s.batch = batch

	a := images.Narrow(1, 0, 1)
	b := images.Narrow(1, 1, 1)

	if s.WeightSharing() {
		logits := s.left.Forward(tensor.Cat([]*tensor.Tensor{a, b}, 0))
		leftLogits = logits.Narrow(0, 0, batch)
		rightLogits = logits.Narrow(0, batch, batch)
	} else {
		leftLogits = s.left.Forward(a)
		rightLogits = s.right.Forward(b)
	}

	output = s.head.Forward(tensor.Cat([]*tensor.Tensor{leftLogits, rightLogits}, 1))
	return output, leftLogits, rightLogits
}

// Backward propagates dL/doutput through the head and both subnets.
//
// gradLeft and gradRight are the gradients of auxiliary losses on the digit
// logits; either may be nil. Returns dL/dimages with shape [B, 2, H, W].
func (s *SiameseNet) Backward(gradOutput, gradLeft, gradRight *tensor.Tensor) *tensor.Tensor {
	if s.batch == 0 {
		panic("siamese: Backward called before Forward")
	}

	g := s.head.Backward(gradOutput)
	gl := g.Narrow(1, 0, NumberClasses)
	gr := g.Narrow(1, NumberClasses, NumberClasses)
	if gradLeft != nil {
		gl.AddInPlace(gradLeft)
	}
	if gradRight != nil {
		gr.AddInPlace(gradRight)
	}

	var da, db *tensor.Tensor
	if s.WeightSharing() {
		dx := s.left.Backward(tensor.Cat([]*tensor.Tensor{gl, gr}, 0))
		da = dx.Narrow(0, 0, s.batch)
		db = dx.Narrow(0, s.batch, s.batch)
	} else {
		da = s.left.Backward(gl)
		db = s.right.Backward(gr)
	}
	return tensor.Cat([]*tensor.Tensor{da, db}, 1)
}

// Parameters returns the subnet and head parameters. Shared weights appear once.
func (s *SiameseNet) Parameters() []*nn.Parameter {
	params := append([]*nn.Parameter(nil), s.left.Parameters()...)
	if s.right != nil {
		params = append(params, s.right.Parameters()...)
	}
	return append(params, s.head.Parameters()...)
}

// String returns a short description of the architecture.
func (s *SiameseNet) String() string {
	if s.WeightSharing() {
		return fmt.Sprintf("SiameseNet(shared=%v)", s.left)
	}
	return fmt.Sprintf("SiameseNet(left=%v, right=%v)", s.left, s.right)
}
