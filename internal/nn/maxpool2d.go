package nn

import (
	"fmt"

	"github.com/born-ml/siamese/internal/tensor"
)

// MaxPool2D is a 2D max pooling layer.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, (height-k)/s+1, (width-k)/s+1]
//
// Backward routes every output gradient to the input position that held the maximum.
type MaxPool2D struct {
	kernelSize int
	stride     int
	backend    tensor.Backend

	inputShape tensor.Shape
	maxIndices []int
}

// NewMaxPool2D creates a new max pooling layer.
func NewMaxPool2D(kernelSize, stride int, backend tensor.Backend) *MaxPool2D {
	if kernelSize <= 0 || stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d or stride %d", kernelSize, stride))
	}
	return &MaxPool2D{kernelSize: kernelSize, stride: stride, backend: backend}
}

// Forward pools the input and records the argmax positions.
func (m *MaxPool2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	output, indices := m.backend.MaxPool2D(input, m.kernelSize, m.stride)
	m.inputShape = input.Shape().Clone()
	m.maxIndices = indices
	return output
}

// Backward scatters gradOutput to the recorded maxima.
func (m *MaxPool2D) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	if m.maxIndices == nil {
		panic("maxpool2d: Backward called before Forward")
	}
	return m.backend.MaxPool2DBackward(m.inputShape, gradOutput, m.maxIndices)
}

// Parameters returns nil (pooling has no trainable parameters).
func (m *MaxPool2D) Parameters() []*Parameter {
	return nil
}

// OutputSize returns the spatial output size for an input of size h x w.
func (m *MaxPool2D) OutputSize(h, w int) (int, int) {
	return (h-m.kernelSize)/m.stride + 1, (w-m.kernelSize)/m.stride + 1
}

// Flatten reshapes [N, d1, d2, ...] to [N, d1*d2*...].
type Flatten struct {
	inputShape tensor.Shape
}

// NewFlatten creates a new Flatten module.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Forward flattens every dimension after the batch dimension.
func (f *Flatten) Forward(input *tensor.Tensor) *tensor.Tensor {
	f.inputShape = input.Shape().Clone()
	return input.Reshape(tensor.Shape{f.inputShape[0], -1})
}

// Backward restores the original shape.
func (f *Flatten) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	if f.inputShape == nil {
		panic("flatten: Backward called before Forward")
	}
	return gradOutput.Reshape(f.inputShape)
}

// Parameters returns nil.
func (f *Flatten) Parameters() []*Parameter {
	return nil
}
