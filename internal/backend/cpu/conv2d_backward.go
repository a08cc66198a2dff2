package cpu

import (
	"fmt"

	"github.com/born-ml/siamese/internal/parallel"
	"github.com/born-ml/siamese/internal/tensor"
)

// Conv2DInputBackward computes the gradient with respect to the Conv2D input.
//
// For every sample:
//
//	dcol_n [C_in*K_h*K_w, H_out*W_out] = kernel^T @ grad_n
//	dinput_n = col2im(dcol_n)
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.Tensor, stride, padding int) *tensor.Tensor {
	g := newConvGeometry(input.Shape(), kernel.Shape(), stride, padding)
	checkConvGrad(grad, g)

	dInput := tensor.ZerosLike(input)
	din, gd := dInput.Data(), grad.Data()
	kmat := general(kernel.Data(), g.COut, g.colRows)

	parallel.For(g.N, func(n int) {
		dcol := make([]float32, g.colRows*g.colCols)
		gemm(true, false, 1, kmat, general(gd[n*g.outSize:(n+1)*g.outSize], g.COut, g.colCols), 0,
			general(dcol, g.colRows, g.colCols))
		col2im(din[n*g.inSize:(n+1)*g.inSize], dcol, g)
	}, cpu.par)

	return dInput
}

// Conv2DKernelBackward computes the gradient with respect to the Conv2D kernel.
//
//	dkernel [C_out, C_in*K_h*K_w] = sum_n grad_n @ col_n^T
//
// Each worker accumulates into its own buffer; buffers are summed at the end.
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.Tensor, stride, padding int) *tensor.Tensor {
	g := newConvGeometry(input.Shape(), kernel.Shape(), stride, padding)
	checkConvGrad(grad, g)

	in, gd := input.Data(), grad.Data()
	partials := make([][]float32, g.N)

	parallel.For(g.N, func(n int) {
		col := make([]float32, g.colRows*g.colCols)
		im2col(col, in[n*g.inSize:(n+1)*g.inSize], g)
		part := make([]float32, g.COut*g.colRows)
		gemm(false, true, 1, general(gd[n*g.outSize:(n+1)*g.outSize], g.COut, g.colCols),
			general(col, g.colRows, g.colCols), 0, general(part, g.COut, g.colRows))
		partials[n] = part
	}, cpu.par)

	dKernel := tensor.ZerosLike(kernel)
	dk := dKernel.Data()
	for _, part := range partials {
		for i, v := range part {
			dk[i] += v
		}
	}
	return dKernel
}

func checkConvGrad(grad *tensor.Tensor, g convGeometry) {
	want := tensor.Shape{g.N, g.COut, g.HOut, g.WOut}
	if !grad.Shape().Equal(want) {
		panic(fmt.Sprintf("conv2d backward: grad shape %v, expected %v", grad.Shape(), want))
	}
}
