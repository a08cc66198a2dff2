package dataset

import "math/rand"

// MNISTSide is the side length of a full-resolution digit image.
const MNISTSide = 28

// Seven-segment layout: a top, b top-right, c bottom-right, d bottom,
// e bottom-left, f top-left, g middle.
const (
	segA = 1 << iota
	segB
	segC
	segD
	segE
	segF
	segG
)

var glyphSegments = [10]int{
	segA | segB | segC | segD | segE | segF,
	segB | segC,
	segA | segB | segG | segE | segD,
	segA | segB | segG | segC | segD,
	segF | segG | segB | segC,
	segA | segF | segG | segC | segD,
	segA | segF | segG | segE | segC | segD,
	segA | segB | segC,
	segA | segB | segC | segD | segE | segF | segG,
	segA | segB | segC | segD | segF | segG,
}

// Synthetic generates n 28x28 seven-segment digit images with random classes.
//
// Each glyph is shifted by up to two pixels, drawn with a random stroke
// intensity and covered with low-amplitude uniform noise. It stands in for
// MNIST when the IDX files are not available.
func Synthetic(n int, rng *rand.Rand) *Digits {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	size := MNISTSide * MNISTSide
	digits := &Digits{
		Pixels: make([]float32, n*size),
		Labels: make([]int, n),
		Rows:   MNISTSide,
		Cols:   MNISTSide,
	}
	for i := 0; i < n; i++ {
		label := rng.Intn(10)
		digits.Labels[i] = label
		drawGlyph(digits.Image(i), label, rng)
	}
	return digits
}

func drawGlyph(img []float32, digit int, rng *rand.Rand) {
	dx, dy := rng.Intn(5)-2, rng.Intn(5)-2
	ink := 0.7 + 0.3*rng.Float32()

	left, right := 8+dx, 19+dx
	top, mid, bottom := 4+dy, 13+dy, 22+dy

	hline := func(row int) {
		for r := row; r < row+2; r++ {
			for c := left; c <= right+1; c++ {
				img[r*MNISTSide+c] = ink
			}
		}
	}
	vline := func(col, from, to int) {
		for r := from; r <= to+1; r++ {
			for c := col; c < col+2; c++ {
				img[r*MNISTSide+c] = ink
			}
		}
	}

	seg := glyphSegments[digit]
	if seg&segA != 0 {
		hline(top)
	}
	if seg&segG != 0 {
		hline(mid)
	}
	if seg&segD != 0 {
		hline(bottom)
	}
	if seg&segF != 0 {
		vline(left, top, mid)
	}
	if seg&segB != 0 {
		vline(right, top, mid)
	}
	if seg&segE != 0 {
		vline(left, mid, bottom)
	}
	if seg&segC != 0 {
		vline(right, mid, bottom)
	}

	for i := range img {
		img[i] = min(img[i]+0.1*rng.Float32(), 1)
	}
}
