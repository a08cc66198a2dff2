package dataset

import (
	"math"
	"math/rand"

	"github.com/born-ml/siamese/internal/tensor"
)

// DiskRadius is the radius of the disk centred at (0.5, 0.5). It encloses half of the unit square.
var DiskRadius = float32(1 / math.Sqrt(2*math.Pi))

// Points is a labelled set of 2D points.
type Points struct {
	Inputs *tensor.Tensor // [n, 2]
	Labels []int          // [n], 0 or 1
}

// Len returns the number of points.
func (p *Points) Len() int {
	return len(p.Labels)
}

// Disk samples n points uniformly in [0, 1]^2, labelled 1 inside the disk of
// radius DiskRadius centred at (0.5, 0.5) and 0 outside.
func Disk(n int, rng *rand.Rand) *Points {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	xy := make([]float32, 2*n)
	labels := make([]int, n)
	r2 := DiskRadius * DiskRadius
	for i := 0; i < n; i++ {
		x, y := rng.Float32(), rng.Float32()
		xy[2*i], xy[2*i+1] = x, y
		if dx, dy := x-0.5, y-0.5; dx*dx+dy*dy <= r2 {
			labels[i] = 1
		}
	}
	return &Points{
		Inputs: tensor.New(xy, tensor.Shape{n, 2}),
		Labels: labels,
	}
}

// OneHot encodes labels as an [n, classes] tensor.
func OneHot(labels []int, classes int) *tensor.Tensor {
	out := tensor.Zeros(tensor.Shape{len(labels), classes})
	data := out.Data()
	for i, l := range labels {
		data[i*classes+l] = 1
	}
	return out
}
