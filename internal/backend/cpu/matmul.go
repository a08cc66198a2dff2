package cpu

import (
	"fmt"

	"github.com/born-ml/siamese/internal/tensor"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// MatMul computes op(a) @ op(b) for 2D tensors using blas32.Gemm.
//
// With transA, a is stored as [k, m] and used as [m, k]; likewise for transB.
// Output shape: [m, n].
func (cpu *CPUBackend) MatMul(a, b *tensor.Tensor, transA, transB bool) *tensor.Tensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D operands, got %v and %v", as, bs))
	}

	m, k := as[0], as[1]
	if transA {
		m, k = k, m
	}
	kb, n := bs[0], bs[1]
	if transB {
		kb, n = n, kb
	}
	if k != kb {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v (trans=%t) @ %v (trans=%t)", as, transA, bs, transB))
	}

	out := tensor.Zeros(tensor.Shape{m, n})
	gemm(transA, transB, 1, general(a.Data(), as[0], as[1]), general(b.Data(), bs[0], bs[1]), 0,
		general(out.Data(), m, n))
	return out
}

// gemm is c = alpha * op(a) @ op(b) + beta * c.
func gemm(transA, transB bool, alpha float32, a, b blas32.General, beta float32, c blas32.General) {
	blas32.Gemm(transpose(transA), transpose(transB), alpha, a, b, beta, c)
}

func general(data []float32, rows, cols int) blas32.General {
	return blas32.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
}

func transpose(t bool) blas.Transpose {
	if t {
		return blas.Trans
	}
	return blas.NoTrans
}
