package cpu

import (
	"math/rand"
	"testing"

	"github.com/born-ml/siamese/internal/parallel"
	"github.com/born-ml/siamese/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTensor(t *testing.T, data []float32, shape tensor.Shape) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return x
}

func TestMatMul(t *testing.T) {
	backend := New()
	a := mustTensor(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := mustTensor(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	c := backend.MatMul(a, b, false, false)
	assert.Equal(t, tensor.Shape{2, 2}, c.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, c.Data())

	// a^T @ a: [3,2] @ [2,3] -> [3,3]
	ata := backend.MatMul(a, a, true, false)
	assert.Equal(t, tensor.Shape{3, 3}, ata.Shape())
	assert.Equal(t, []float32{17, 22, 27, 22, 29, 36, 27, 36, 45}, ata.Data())

	// a @ a^T: [2,3] @ [3,2] -> [2,2]
	aat := backend.MatMul(a, a, false, true)
	assert.Equal(t, []float32{14, 32, 32, 77}, aat.Data())

	assert.Panics(t, func() { backend.MatMul(a, a, false, false) })
}

// naiveConv2D is a direct nested-loop convolution used as reference.
func naiveConv2D(input, kernel *tensor.Tensor, stride, padding int) *tensor.Tensor {
	is, ks := input.Shape(), kernel.Shape()
	N, C, H, W := is[0], is[1], is[2], is[3]
	CO, KH, KW := ks[0], ks[2], ks[3]
	HO := (H+2*padding-KH)/stride + 1
	WO := (W+2*padding-KW)/stride + 1
	out := tensor.Zeros(tensor.Shape{N, CO, HO, WO})
	for n := 0; n < N; n++ {
		for co := 0; co < CO; co++ {
			for oh := 0; oh < HO; oh++ {
				for ow := 0; ow < WO; ow++ {
					var sum float32
					for c := 0; c < C; c++ {
						for kh := 0; kh < KH; kh++ {
							for kw := 0; kw < KW; kw++ {
								h := oh*stride - padding + kh
								w := ow*stride - padding + kw
								if h < 0 || h >= H || w < 0 || w >= W {
									continue
								}
								sum += input.At(n, c, h, w) * kernel.At(co, c, kh, kw)
							}
						}
					}
					out.Set(sum, n, co, oh, ow)
				}
			}
		}
	}
	return out
}

func TestConv2D_MatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	backend := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1})

	for _, tc := range []struct {
		name            string
		stride, padding int
	}{
		{"valid", 1, 0},
		{"same", 1, 1},
		{"strided", 2, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			input := tensor.RandUniform(tensor.Shape{3, 2, 6, 5}, -1, 1, rng)
			kernel := tensor.RandUniform(tensor.Shape{4, 2, 3, 3}, -1, 1, rng)

			got := backend.Conv2D(input, kernel, tc.stride, tc.padding)
			want := naiveConv2D(input, kernel, tc.stride, tc.padding)

			require.Equal(t, want.Shape(), got.Shape())
			for i, v := range want.Data() {
				assert.InDelta(t, v, got.Data()[i], 1e-4, "mismatch at %d", i)
			}
		})
	}
}

// weightedSum returns sum(conv(input, kernel) * w), a scalar whose gradient
// with respect to the conv output is exactly w.
func weightedSum(backend *CPUBackend, input, kernel, w *tensor.Tensor, stride, padding int) float64 {
	out := backend.Conv2D(input, kernel, stride, padding)
	var s float64
	for i, v := range out.Data() {
		s += float64(v) * float64(w.Data()[i])
	}
	return s
}

func TestConv2DBackward_FiniteDifferences(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	backend := New()
	const stride, padding = 1, 1
	const eps = 1e-2

	input := tensor.RandUniform(tensor.Shape{2, 2, 5, 5}, -1, 1, rng)
	kernel := tensor.RandUniform(tensor.Shape{3, 2, 3, 3}, -1, 1, rng)
	out := backend.Conv2D(input, kernel, stride, padding)
	w := tensor.RandUniform(out.Shape(), -1, 1, rng)

	dInput := backend.Conv2DInputBackward(input, kernel, w, stride, padding)
	dKernel := backend.Conv2DKernelBackward(input, kernel, w, stride, padding)

	check := func(name string, param, grad *tensor.Tensor) {
		data := param.Data()
		for _, i := range []int{0, 7, len(data) / 2, len(data) - 1} {
			orig := data[i]
			data[i] = orig + eps
			plus := weightedSum(backend, input, kernel, w, stride, padding)
			data[i] = orig - eps
			minus := weightedSum(backend, input, kernel, w, stride, padding)
			data[i] = orig
			numeric := (plus - minus) / (2 * eps)
			assert.InDelta(t, numeric, grad.Data()[i], 1e-2, "%s gradient at %d", name, i)
		}
	}
	check("input", input, dInput)
	check("kernel", kernel, dKernel)
}

func TestMaxPool2D(t *testing.T) {
	backend := New()
	data := make([]float32, 16)
	for i := range data {
		data[i] = float32(i + 1)
	}
	input := mustTensor(t, data, tensor.Shape{1, 1, 4, 4})

	out, idx := backend.MaxPool2D(input, 2, 2)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assert.Equal(t, []float32{6, 8, 14, 16}, out.Data())
	assert.Equal(t, []int{5, 7, 13, 15}, idx)

	grad := mustTensor(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	dIn := backend.MaxPool2DBackward(input.Shape(), grad, idx)
	want := make([]float32, 16)
	want[5], want[7], want[13], want[15] = 1, 2, 3, 4
	assert.Equal(t, want, dIn.Data())
}

func TestMaxPool2D_OddSizeDropsRemainder(t *testing.T) {
	backend := New()
	input := tensor.Ones(tensor.Shape{2, 3, 7, 7})
	out, idx := backend.MaxPool2D(input, 2, 2)
	assert.Equal(t, tensor.Shape{2, 3, 3, 3}, out.Shape())
	assert.Len(t, idx, out.NumElements())
}

func TestDescribe(t *testing.T) {
	backend := NewWithConfig(parallel.Config{Enabled: false})
	assert.Equal(t, 1, backend.Workers())
	assert.Contains(t, backend.Describe(), "1 workers")
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}
