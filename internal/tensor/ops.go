package tensor

import "fmt"

// Map returns a new tensor with f applied to every element.
func (t *Tensor) Map(f func(x float32) float32) *Tensor {
	out := ZerosLike(t)
	for i, v := range t.data {
		out.data[i] = f(v)
	}
	return out
}

// Zip returns a new tensor with f applied to element pairs of t and other.
//
// Both tensors must have the same shape.
func (t *Tensor) Zip(other *Tensor, f func(a, b float32) float32) *Tensor {
	mustSameShape("zip", t, other)
	out := ZerosLike(t)
	for i, v := range t.data {
		out.data[i] = f(v, other.data[i])
	}
	return out
}

// Mul returns the element-wise product of t and other.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	return t.Zip(other, func(a, b float32) float32 { return a * b })
}

// Scale returns t multiplied by s.
func (t *Tensor) Scale(s float32) *Tensor {
	return t.Map(func(x float32) float32 { return x * s })
}

// AddInPlace adds other into t element-wise.
func (t *Tensor) AddInPlace(other *Tensor) {
	mustSameShape("add", t, other)
	for i, v := range other.data {
		t.data[i] += v
	}
}

// Fill sets every element to value.
func (t *Tensor) Fill(value float32) {
	for i := range t.data {
		t.data[i] = value
	}
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float32 {
	var s float32
	for _, v := range t.data {
		s += v
	}
	return s
}

// Narrow returns a copy of the slice [start, start+length) along dim.
//
// Example:
//
//	// images: [N, 2, 14, 14]
//	left := images.Narrow(1, 0, 1) // [N, 1, 14, 14]
func (t *Tensor) Narrow(dim, start, length int) *Tensor {
	if dim < 0 || dim >= len(t.shape) {
		panic(fmt.Sprintf("narrow: dim %d out of range for %dD tensor", dim, len(t.shape)))
	}
	if start < 0 || length <= 0 || start+length > t.shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for size %d", start, start+length, t.shape[dim]))
	}

	outer, inner := t.shape.split(dim)
	size := t.shape[dim]

	outShape := t.shape.Clone()
	outShape[dim] = length
	out := Zeros(outShape)

	block := length * inner
	for o := 0; o < outer; o++ {
		src := o*size*inner + start*inner
		copy(out.data[o*block:(o+1)*block], t.data[src:src+block])
	}
	return out
}

// Cat concatenates tensors along dim.
//
// All tensors must agree on every dimension except dim.
func Cat(tensors []*Tensor, dim int) *Tensor {
	if len(tensors) == 0 {
		panic("cat: no tensors")
	}
	first := tensors[0].shape
	if dim < 0 || dim >= len(first) {
		panic(fmt.Sprintf("cat: dim %d out of range for %dD tensor", dim, len(first)))
	}

	total := 0
	for _, t := range tensors {
		if len(t.shape) != len(first) {
			panic(fmt.Sprintf("cat: rank mismatch %v vs %v", t.shape, first))
		}
		for i := range first {
			if i != dim && t.shape[i] != first[i] {
				panic(fmt.Sprintf("cat: shape mismatch %v vs %v at dim %d", t.shape, first, i))
			}
		}
		total += t.shape[dim]
	}

	outShape := first.Clone()
	outShape[dim] = total
	out := Zeros(outShape)

	outer, inner := first.split(dim)
	dst := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			block := t.shape[dim] * inner
			copy(out.data[dst:dst+block], t.data[o*block:(o+1)*block])
			dst += block
		}
	}
	return out
}

func mustSameShape(op string, a, b *Tensor) {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.shape, b.shape))
	}
}
