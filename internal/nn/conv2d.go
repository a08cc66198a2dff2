package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/siamese/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Performs convolution: output = Conv2D(input, weight) + bias
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
//
// Example:
//
//	// 1 channel -> 4 channels, 3x3 kernel, "same" padding
//	conv := nn.NewConv2D(1, 4, 3, 3, 1, 1, true, backend, rng)
//	output := conv.Forward(input) // [N, 1, 14, 14] -> [N, 4, 14, 14]
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  [2]int
	stride      int
	padding     int

	weight *Parameter // [out_channels, in_channels, kernel_h, kernel_w]
	bias   *Parameter // [out_channels] or nil

	backend tensor.Backend
	input   *tensor.Tensor
}

// NewConv2D creates a new 2D convolutional layer.
//
// Weights and biases are drawn from U(-1/sqrt(fan_in), 1/sqrt(fan_in))
// with fan_in = in_channels * kernel_h * kernel_w.
func NewConv2D(
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	backend tensor.Backend,
	rng *rand.Rand,
) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelH <= 0 || kernelW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size h=%d, w=%d", kernelH, kernelW))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	fanIn := inChannels * kernelH * kernelW
	weight := FanInUniform(fanIn, tensor.Shape{outChannels, inChannels, kernelH, kernelW}, rng)

	c := &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  [2]int{kernelH, kernelW},
		stride:      stride,
		padding:     padding,
		weight:      NewParameter("conv2d.weight", weight),
		backend:     backend,
	}
	if useBias {
		c.bias = NewParameter("conv2d.bias", FanInUniform(fanIn, tensor.Shape{outChannels}, rng))
	}
	return c
}

// Forward performs the convolution and caches the input.
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", shape[1], c.inChannels))
	}
	c.input = input

	output := c.backend.Conv2D(input, c.weight.Tensor(), c.stride, c.padding)
	if c.bias != nil {
		oshape := output.Shape()
		plane := oshape[2] * oshape[3]
		out, b := output.Data(), c.bias.Tensor().Data()
		for n := 0; n < oshape[0]; n++ {
			for ch := 0; ch < c.outChannels; ch++ {
				base := (n*c.outChannels + ch) * plane
				for i := base; i < base+plane; i++ {
					out[i] += b[ch]
				}
			}
		}
	}
	return output
}

// Backward accumulates weight and bias gradients and returns dL/dinput.
func (c *Conv2D) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	mustHaveInput("conv2d", c.input)

	c.weight.Accumulate(c.backend.Conv2DKernelBackward(c.input, c.weight.Tensor(), gradOutput, c.stride, c.padding))

	if c.bias != nil {
		gs := gradOutput.Shape()
		plane := gs[2] * gs[3]
		db := tensor.Zeros(tensor.Shape{c.outChannels})
		gd, dbd := gradOutput.Data(), db.Data()
		for n := 0; n < gs[0]; n++ {
			for ch := 0; ch < c.outChannels; ch++ {
				base := (n*c.outChannels + ch) * plane
				for i := base; i < base+plane; i++ {
					dbd[ch] += gd[i]
				}
			}
		}
		c.bias.Accumulate(db)
	}

	return c.backend.Conv2DInputBackward(c.input, c.weight.Tensor(), gradOutput, c.stride, c.padding)
}

// Parameters returns the weight and, when present, the bias.
func (c *Conv2D) Parameters() []*Parameter {
	if c.bias == nil {
		return []*Parameter{c.weight}
	}
	return []*Parameter{c.weight, c.bias}
}

// OutputSize returns the spatial output size for an input of size h x w.
func (c *Conv2D) OutputSize(h, w int) (int, int) {
	return (h+2*c.padding-c.kernelSize[0])/c.stride + 1,
		(w+2*c.padding-c.kernelSize[1])/c.stride + 1
}

// OutChannels returns the number of output channels.
func (c *Conv2D) OutChannels() int {
	return c.outChannels
}
