package tensor

import (
	"math"
	"testing"
)

func matVecNaive(dst []float32, w *Mat, x []float32) {
	for i := 0; i < w.R; i++ {
		row := w.Data[i*w.Stride : i*w.Stride+w.C]
		var sum float32
		for j := 0; j < w.C; j++ {
			sum += row[j] * x[j]
		}
		dst[i] = sum
	}
}

func TestMatVecMatchesNaive(t *testing.T) {
	for _, shape := range [][2]int{{1, 1}, {3, 7}, {17, 5}, {300, 33}, {1024, 64}} {
		r, c := shape[0], shape[1]
		w := NewMat(r, c)
		FillRand(&w, int64(r*c), 1)
		x := make([]float32, c)
		for i := range x {
			x[i] = float32(i%5) - 2
		}
		got := make([]float32, r)
		want := make([]float32, r)
		MatVec(got, &w, x)
		matVecNaive(want, &w, x)
		for i := range got {
			if math.Abs(float64(got[i]-want[i])) > 1e-4 {
				t.Fatalf("%dx%d row %d: got %f want %f", r, c, i, got[i], want[i])
			}
		}
	}
}

func TestMatVecShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	w := NewMat(4, 4)
	MatVec(make([]float32, 2), &w, make([]float32, 4))
}

func TestFillRandDeterministic(t *testing.T) {
	a, b := NewMat(8, 8), NewMat(8, 8)
	FillRand(&a, 3, 0.5)
	FillRand(&b, 3, 0.5)
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatalf("element %d differs", i)
		}
		if a.Data[i] < -0.5 || a.Data[i] >= 0.5 {
			t.Fatalf("element %d out of range: %f", i, a.Data[i])
		}
	}
}

func TestNewMatFromData(t *testing.T) {
	m, err := NewMatFromData(2, 3, []float32{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Row(1); got[0] != 4 || got[2] != 6 {
		t.Fatalf("row 1 = %v", got)
	}
	if _, err := NewMatFromData(2, 2, []float32{1}); err == nil {
		t.Fatal("expected length error")
	}
}

func TestSoftmax(t *testing.T) {
	x := []float32{1, 2, 3}
	Softmax(x)
	var sum float32
	for _, v := range x {
		sum += v
	}
	if math.Abs(float64(sum-1)) > 1e-6 {
		t.Fatalf("sum = %f", sum)
	}
	if !(x[0] < x[1] && x[1] < x[2]) {
		t.Fatalf("order not preserved: %v", x)
	}
}

func TestTanhAndDot(t *testing.T) {
	x := []float32{0, 100, -100}
	Tanh(x)
	if x[0] != 0 || x[1] < 0.999 || x[2] > -0.999 {
		t.Fatalf("tanh = %v", x)
	}
	if got := Dot([]float32{1, 2, 3}, []float32{4, 5, 6}); got != 32 {
		t.Fatalf("dot = %f", got)
	}
	a := []float32{1, 1}
	Add(a, []float32{2, 3})
	if a[0] != 3 || a[1] != 4 {
		t.Fatalf("add = %v", a)
	}
}

func BenchmarkMatVec(b *testing.B) {
	r, c := 2048, 2048
	w := NewMat(r, c)
	x := make([]float32, c)
	dst := make([]float32, r)
	FillRand(&w, 1, 0.01)

	for b.Loop() {
		MatVec(dst, &w, x)
	}
}
