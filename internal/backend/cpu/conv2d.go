package cpu

import (
	"fmt"

	"github.com/born-ml/siamese/internal/parallel"
	"github.com/born-ml/siamese/internal/tensor"
)

// convGeometry holds the derived sizes of one Conv2D call.
type convGeometry struct {
	N, CIn, H, W     int
	COut, KH, KW     int
	HOut, WOut       int
	stride, padding  int
	colRows, colCols int // im2col matrix: [C_in*K_h*K_w, H_out*W_out]
	inSize, outSize  int // per-sample element counts of input and output
}

func newConvGeometry(input, kernel tensor.Shape, stride, padding int) convGeometry {
	if len(input) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(input)))
	}
	if len(kernel) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernel)))
	}
	if input[1] != kernel[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", input[1], kernel[1]))
	}
	if stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid stride=%d padding=%d", stride, padding))
	}

	g := convGeometry{
		N: input[0], CIn: input[1], H: input[2], W: input[3],
		COut: kernel[0], KH: kernel[2], KW: kernel[3],
		stride: stride, padding: padding,
	}
	g.HOut = (g.H+2*padding-g.KH)/stride + 1
	g.WOut = (g.W+2*padding-g.KW)/stride + 1
	if g.HOut <= 0 || g.WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", g.HOut, g.WOut))
	}
	g.colRows = g.CIn * g.KH * g.KW
	g.colCols = g.HOut * g.WOut
	g.inSize = g.CIn * g.H * g.W
	g.outSize = g.COut * g.colCols
	return g
}

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// For every sample the input patches are unrolled into a column matrix
// [C_in*K_h*K_w, H_out*W_out], so the convolution becomes one GEMM:
//
//	out_n [C_out, H_out*W_out] = kernel [C_out, C_in*K_h*K_w] @ col_n
//
// which is already the [C_out, H_out, W_out] layout of the output sample.
// Samples run in parallel.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.Tensor, stride, padding int) *tensor.Tensor {
	g := newConvGeometry(input.Shape(), kernel.Shape(), stride, padding)

	output := tensor.Zeros(tensor.Shape{g.N, g.COut, g.HOut, g.WOut})
	in, out := input.Data(), output.Data()
	kmat := general(kernel.Data(), g.COut, g.colRows)

	parallel.For(g.N, func(n int) {
		col := make([]float32, g.colRows*g.colCols)
		im2col(col, in[n*g.inSize:(n+1)*g.inSize], g)
		gemm(false, false, 1, kmat, general(col, g.colRows, g.colCols), 0,
			general(out[n*g.outSize:(n+1)*g.outSize], g.COut, g.colCols))
	}, cpu.par)

	return output
}

// im2col unrolls one sample [C, H, W] into col [C*K_h*K_w, H_out*W_out].
// Positions that fall into the zero padding are written as 0.
func im2col(col, in []float32, g convGeometry) {
	for c := 0; c < g.CIn; c++ {
		for kh := 0; kh < g.KH; kh++ {
			for kw := 0; kw < g.KW; kw++ {
				row := (c*g.KH+kh)*g.KW + kw
				dst := col[row*g.colCols : (row+1)*g.colCols]
				for oh := 0; oh < g.HOut; oh++ {
					h := oh*g.stride - g.padding + kh
					for ow := 0; ow < g.WOut; ow++ {
						w := ow*g.stride - g.padding + kw
						if h >= 0 && h < g.H && w >= 0 && w < g.W {
							dst[oh*g.WOut+ow] = in[(c*g.H+h)*g.W+w]
						} else {
							dst[oh*g.WOut+ow] = 0
						}
					}
				}
			}
		}
	}
}

// col2im is the adjoint of im2col: it accumulates col back into one sample [C, H, W].
func col2im(in, col []float32, g convGeometry) {
	for c := 0; c < g.CIn; c++ {
		for kh := 0; kh < g.KH; kh++ {
			for kw := 0; kw < g.KW; kw++ {
				row := (c*g.KH+kh)*g.KW + kw
				src := col[row*g.colCols : (row+1)*g.colCols]
				for oh := 0; oh < g.HOut; oh++ {
					h := oh*g.stride - g.padding + kh
					if h < 0 || h >= g.H {
						continue
					}
					for ow := 0; ow < g.WOut; ow++ {
						w := ow*g.stride - g.padding + kw
						if w >= 0 && w < g.W {
							in[(c*g.H+h)*g.W+w] += src[oh*g.WOut+ow]
						}
					}
				}
			}
		}
	}
}
