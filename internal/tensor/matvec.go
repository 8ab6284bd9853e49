package tensor

import (
	"runtime"
	"sync"
)

// parallelRows is the row count below which MatVec stays on the calling
// goroutine.
const parallelRows = 256

// MatVec computes dst = w * x. Large matrices are split into row ranges
// computed concurrently.
func MatVec(dst []float32, w *Mat, x []float32) {
	if w.R == 0 || w.C == 0 {
		return
	}
	if len(dst) < w.R || len(x) < w.C {
		panic("matvec shape mismatch")
	}

	workers := min(runtime.GOMAXPROCS(0), w.R)
	if w.R < parallelRows || workers <= 1 {
		matVecRange(dst, w, x, 0, w.R)
		return
	}

	chunk := (w.R + workers - 1) / workers
	var wg sync.WaitGroup
	for i := range workers {
		rs := i * chunk
		re := min(rs+chunk, w.R)
		if rs >= re {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			matVecRange(dst, w, x, rs, re)
		}()
	}
	wg.Wait()
}

func matVecRange(dst []float32, w *Mat, x []float32, rs, re int) {
	for i := rs; i < re; i++ {
		row := w.Data[i*w.Stride : i*w.Stride+w.C]
		var sum float32
		j := 0
		for ; j+3 < w.C; j += 4 {
			sum += row[j]*x[j] + row[j+1]*x[j+1] + row[j+2]*x[j+2] + row[j+3]*x[j+3]
		}
		for ; j < w.C; j++ {
			sum += row[j] * x[j]
		}
		dst[i] = sum
	}
}
