package tensor

import (
	"errors"
	"math/rand"
)

var errDataLength = errors.New("tensor: data length mismatch")

// Mat represents a dense row-major matrix of float32 values. Stride is the
// number of elements between the starts of two consecutive rows.
//
// Out-of-range indices panic.
type Mat struct {
	R, C   int
	Stride int
	Data   []float32
}

// NewMat allocates a zeroed r x c matrix.
func NewMat(r, c int) Mat {
	if r < 0 || c < 0 {
		panic("negative dimension for matrix")
	}
	return Mat{R: r, C: c, Stride: c, Data: make([]float32, r*c)}
}

// NewMatFromData wraps data as an r x c matrix without copying.
func NewMatFromData(r, c int, data []float32) (Mat, error) {
	if r < 0 || c < 0 || r*c != len(data) {
		return Mat{}, errDataLength
	}
	return Mat{R: r, C: c, Stride: c, Data: data}, nil
}

// Row returns a view of the i-th row. Writes through the slice update the
// matrix.
func (m *Mat) Row(i int) []float32 {
	if i < 0 || i >= m.R {
		panic("row index out of range")
	}
	start := i * m.Stride
	return m.Data[start : start+m.C]
}

// FillRand fills the matrix with reproducible values uniform in
// [-scale, scale). Equal seeds produce identical matrices.
func FillRand(m *Mat, seed int64, scale float32) {
	rng := rand.New(rand.NewSource(seed))
	for i := range m.Data {
		m.Data[i] = (rng.Float32()*2 - 1) * scale
	}
}
