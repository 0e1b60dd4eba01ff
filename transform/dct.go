// Package transform provides the frequency-domain backends used by the
// perceptual hash algorithms: a 2-D Type-II Discrete Cosine Transform and a
// multi-level 2-D Discrete Wavelet Transform with inverse.
package transform

import "math"

// dct1D applies the orthonormal 1-D Type-II DCT to x:
//
//	X[k] = scale(k) * sum_{n=0}^{N-1} x[n] * cos(pi * k * (2n+1) / (2N))
//	scale(0) = sqrt(1/N), scale(k>0) = sqrt(2/N)
func dct1D(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	scale0 := math.Sqrt(1.0 / float64(n))
	scaleK := math.Sqrt(2.0 / float64(n))
	for k := 0; k < n; k++ {
		scale := scaleK
		if k == 0 {
			scale = scale0
		}
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += x[i] * math.Cos(math.Pi*float64(k)*float64(2*i+1)/(2.0*float64(n)))
		}
		out[k] = scale * sum
	}
	return out
}

// DCTRows applies the 1-D Type-II DCT to each row of the block independently.
// The column axis is left untouched.
func DCTRows(block [][]float64) [][]float64 {
	out := make([][]float64, len(block))
	for y, row := range block {
		out[y] = dct1D(row)
	}
	return out
}

// DCT2D applies the separable 2-D Type-II DCT: each column is transformed,
// then each row of the intermediate result. The block need not be square.
func DCT2D(block [][]float64) [][]float64 {
	rows := len(block)
	if rows == 0 {
		return nil
	}
	cols := len(block[0])

	// Transform columns first.
	colOut := make([][]float64, rows)
	for y := 0; y < rows; y++ {
		colOut[y] = make([]float64, cols)
	}
	col := make([]float64, rows)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			col[y] = block[y][x]
		}
		trans := dct1D(col)
		for y := 0; y < rows; y++ {
			colOut[y][x] = trans[y]
		}
	}

	// Then each row.
	out := make([][]float64, rows)
	for y := 0; y < rows; y++ {
		out[y] = dct1D(colOut[y])
	}
	return out
}
