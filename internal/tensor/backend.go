package tensor

// Backend defines the compute kernels that modules delegate to.
//
// Modules only hold a Backend; they never assume a concrete implementation.
// The CPU backend in internal/backend/cpu is the only implementation.
type Backend interface {
	// MatMul computes op(a) @ op(b) where op transposes when the flag is set.
	// Both operands must be 2D.
	MatMul(a, b *Tensor, transA, transB bool) *Tensor

	// Conv2D convolves input [N, C_in, H, W] with kernel [C_out, C_in, K_h, K_w].
	Conv2D(input, kernel *Tensor, stride, padding int) *Tensor
	// Conv2DInputBackward returns dL/dinput given dL/doutput.
	Conv2DInputBackward(input, kernel, grad *Tensor, stride, padding int) *Tensor
	// Conv2DKernelBackward returns dL/dkernel given dL/doutput.
	Conv2DKernelBackward(input, kernel, grad *Tensor, stride, padding int) *Tensor

	// MaxPool2D pools input [N, C, H, W] and returns the flat index of every maximum.
	MaxPool2D(input *Tensor, kernelSize, stride int) (*Tensor, []int)
	// MaxPool2DBackward scatters grad back to the recorded maxima.
	MaxPool2DBackward(inputShape Shape, grad *Tensor, maxIndices []int) *Tensor

	Name() string   // Backend name (e.g., "CPU").
	Device() Device // Device type.
}
