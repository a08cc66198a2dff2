package cpu

import (
	"fmt"

	"github.com/born-ml/siamese/internal/parallel"
	"github.com/born-ml/siamese/internal/tensor"
)

// MaxPool2D performs 2D max pooling and records where every maximum came from.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height - kernelSize) / stride + 1
//	out_width = (width - kernelSize) / stride + 1
//
// The returned indices are flat offsets into the input data, one per output element.
// Ties keep the first maximum in row-major window order.
//
// Example (2x2 pool, stride=2):
//
//	Input: [[1,2,3,4],    Output: [[6,8],
//	        [5,6,7,8],             [14,16]]
//	        [9,10,11,12],
//	        [13,14,15,16]]
func (cpu *CPUBackend) MaxPool2D(input *tensor.Tensor, kernelSize, stride int) (*tensor.Tensor, []int) {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if kernelSize <= 0 || stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d or stride %d", kernelSize, stride))
	}

	N, C, H, W := shape[0], shape[1], shape[2], shape[3]
	if kernelSize > H || kernelSize > W {
		panic(fmt.Sprintf("maxpool2d: kernel size %d too large for input %dx%d", kernelSize, H, W))
	}
	HOut := (H-kernelSize)/stride + 1
	WOut := (W-kernelSize)/stride + 1

	output := tensor.Zeros(tensor.Shape{N, C, HOut, WOut})
	indices := make([]int, output.NumElements())
	in, out := input.Data(), output.Data()

	parallel.ForBatch(N, C, func(n, c int) {
		plane := (n*C + c) * H * W
		dst := (n*C + c) * HOut * WOut
		for oh := 0; oh < HOut; oh++ {
			for ow := 0; ow < WOut; ow++ {
				best := plane + (oh*stride)*W + ow*stride
				for kh := 0; kh < kernelSize; kh++ {
					for kw := 0; kw < kernelSize; kw++ {
						idx := plane + (oh*stride+kh)*W + ow*stride + kw
						if in[idx] > in[best] {
							best = idx
						}
					}
				}
				out[dst+oh*WOut+ow] = in[best]
				indices[dst+oh*WOut+ow] = best
			}
		}
	}, cpu.par)

	return output, indices
}

// MaxPool2DBackward routes each output gradient to the input element that produced it.
// Gradients of overlapping windows accumulate.
func (cpu *CPUBackend) MaxPool2DBackward(inputShape tensor.Shape, grad *tensor.Tensor, maxIndices []int) *tensor.Tensor {
	if grad.NumElements() != len(maxIndices) {
		panic(fmt.Sprintf("maxpool2d backward: grad has %d elements, %d indices recorded", grad.NumElements(), len(maxIndices)))
	}
	dInput := tensor.Zeros(inputShape)
	din := dInput.Data()
	for i, g := range grad.Data() {
		din[maxIndices[i]] += g
	}
	return dInput
}
