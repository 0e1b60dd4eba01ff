package transform

import (
	"fmt"
	"math"
)

// Wavelet is an orthogonal analysis filter bank. Reconstruction reuses the
// analysis filters directly (valid for orthonormal banks such as Haar and
// the Daubechies family).
type Wavelet struct {
	Name  string
	DecLo []float64
	DecHi []float64
}

// Haar is the 2-tap Haar wavelet, the default for wavelet hashing.
var Haar = Wavelet{
	Name:  "haar",
	DecLo: []float64{0.7071067811865476, 0.7071067811865476},
	DecHi: []float64{-0.7071067811865476, 0.7071067811865476},
}

// DB4 is the 8-tap Daubechies-4 wavelet.
var DB4 = Wavelet{
	Name: "db4",
	DecLo: []float64{
		-0.010597401784997278, 0.032883011666982945,
		0.030841381835986965, -0.18703481171888114,
		-0.02798376941698385, 0.6308807679295904,
		0.7148465705525415, 0.23037781330885523,
	},
	DecHi: []float64{
		-0.23037781330885523, 0.7148465705525415,
		-0.6308807679295904, -0.02798376941698385,
		0.18703481171888114, 0.030841381835986965,
		-0.032883011666982945, -0.010597401784997278,
	},
}

// WaveletByName resolves a mode name to its filter bank. The set of supported
// modes is closed; unknown names are rejected before any pixel work happens.
func WaveletByName(name string) (Wavelet, error) {
	switch name {
	case "haar", "":
		return Haar, nil
	case "db4":
		return DB4, nil
	}
	return Wavelet{}, fmt.Errorf("transform: unsupported wavelet mode %q", name)
}

// Subbands holds the three detail bands of one decomposition level.
type Subbands struct {
	Horizontal [][]float64
	Vertical   [][]float64
	Diagonal   [][]float64
}

// Decomposition is the result of a multi-level 2-D wavelet analysis.
// Details[0] is the coarsest level, matching the order reconstruction
// consumes them in.
type Decomposition struct {
	Approx  [][]float64
	Details []Subbands
}

// analyze1D performs one level of periodized analysis on x (len must be
// even). The low-pass half is the inner product of x with the translated
// scaling filter:
//
//	lo[k] = sum_m DecLo[m] * x[(2k+1-m) mod n]
func (w Wavelet) analyze1D(x []float64, lo, hi []float64) {
	n := len(x)
	half := n / 2
	taps := len(w.DecLo)
	for k := 0; k < half; k++ {
		var a, d float64
		for m := 0; m < taps; m++ {
			i := (2*k + 1 - m) % n
			if i < 0 {
				i += n
			}
			a += w.DecLo[m] * x[i]
			d += w.DecHi[m] * x[i]
		}
		lo[k] = a
		hi[k] = d
	}
}

// synth1D inverts analyze1D. Because the bank is orthonormal, the signal is
// the sum of each coefficient times its basis function.
func (w Wavelet) synth1D(lo, hi []float64, out []float64) {
	half := len(lo)
	n := half * 2
	taps := len(w.DecLo)
	for i := 0; i < n; i++ {
		out[i] = 0
	}
	for k := 0; k < half; k++ {
		for m := 0; m < taps; m++ {
			i := (2*k + 1 - m) % n
			if i < 0 {
				i += n
			}
			out[i] += lo[k]*w.DecLo[m] + hi[k]*w.DecHi[m]
		}
	}
}

// analyze2D performs one level of separable 2-D analysis: rows first, then
// columns of the intermediate result. Subband layout in the transform domain:
//
//	[ LL | LH ]
//	[ HL | HH ]
func (w Wavelet) analyze2D(src [][]float64) (ll [][]float64, bands Subbands, err error) {
	h := len(src)
	if h == 0 || h%2 != 0 {
		return nil, Subbands{}, fmt.Errorf("transform: cannot decompose %d rows", h)
	}
	wd := len(src[0])
	if wd == 0 || wd%2 != 0 {
		return nil, Subbands{}, fmt.Errorf("transform: cannot decompose %d columns", wd)
	}
	halfH, halfW := h/2, wd/2

	// Row pass.
	full := make([][]float64, h)
	for y := 0; y < h; y++ {
		full[y] = make([]float64, wd)
		w.analyze1D(src[y], full[y][:halfW], full[y][halfW:])
	}

	// Column pass.
	col := make([]float64, h)
	cLo := make([]float64, halfH)
	cHi := make([]float64, halfH)
	for x := 0; x < wd; x++ {
		for y := 0; y < h; y++ {
			col[y] = full[y][x]
		}
		w.analyze1D(col, cLo, cHi)
		for y := 0; y < halfH; y++ {
			full[y][x] = cLo[y]
			full[halfH+y][x] = cHi[y]
		}
	}

	ll = makeGrid(halfH, halfW)
	bands = Subbands{
		Horizontal: makeGrid(halfH, halfW),
		Vertical:   makeGrid(halfH, halfW),
		Diagonal:   makeGrid(halfH, halfW),
	}
	for y := 0; y < halfH; y++ {
		for x := 0; x < halfW; x++ {
			ll[y][x] = full[y][x]
			bands.Horizontal[y][x] = full[y][halfW+x]
			bands.Vertical[y][x] = full[halfH+y][x]
			bands.Diagonal[y][x] = full[halfH+y][halfW+x]
		}
	}
	return ll, bands, nil
}

// synth2D reverses analyze2D for one level.
func (w Wavelet) synth2D(ll [][]float64, bands Subbands) [][]float64 {
	halfH := len(ll)
	halfW := len(ll[0])
	h, wd := halfH*2, halfW*2

	// Reassemble the quadrant layout.
	full := make([][]float64, h)
	for y := 0; y < h; y++ {
		full[y] = make([]float64, wd)
	}
	for y := 0; y < halfH; y++ {
		for x := 0; x < halfW; x++ {
			full[y][x] = ll[y][x]
			full[y][halfW+x] = bands.Horizontal[y][x]
			full[halfH+y][x] = bands.Vertical[y][x]
			full[halfH+y][halfW+x] = bands.Diagonal[y][x]
		}
	}

	// Column pass.
	cLo := make([]float64, halfH)
	cHi := make([]float64, halfH)
	col := make([]float64, h)
	for x := 0; x < wd; x++ {
		for y := 0; y < halfH; y++ {
			cLo[y] = full[y][x]
			cHi[y] = full[halfH+y][x]
		}
		w.synth1D(cLo, cHi, col)
		for y := 0; y < h; y++ {
			full[y][x] = col[y]
		}
	}

	// Row pass.
	out := make([][]float64, h)
	rLo := make([]float64, halfW)
	rHi := make([]float64, halfW)
	for y := 0; y < h; y++ {
		copy(rLo, full[y][:halfW])
		copy(rHi, full[y][halfW:])
		out[y] = make([]float64, wd)
		w.synth1D(rLo, rHi, out[y])
	}
	return out
}

// Wavedec2 runs a multi-level 2-D decomposition. Level 0 returns the input
// itself as the approximation band with no details.
func Wavedec2(data [][]float64, w Wavelet, level int) (*Decomposition, error) {
	if level < 0 {
		return nil, fmt.Errorf("transform: negative decomposition level %d", level)
	}
	maxLevel := maxDecompositionLevel(len(data))
	if level > maxLevel {
		return nil, fmt.Errorf("transform: level %d exceeds maximum %d for %d rows", level, maxLevel, len(data))
	}
	cur := copyGrid(data)
	dec := &Decomposition{}
	for l := 0; l < level; l++ {
		ll, bands, err := w.analyze2D(cur)
		if err != nil {
			return nil, err
		}
		dec.Details = append([]Subbands{bands}, dec.Details...)
		cur = ll
	}
	dec.Approx = cur
	return dec, nil
}

// Waverec2 reconstructs the pixel grid from a decomposition produced by
// Wavedec2 with the same wavelet.
func Waverec2(dec *Decomposition, w Wavelet) ([][]float64, error) {
	if dec == nil || dec.Approx == nil {
		return nil, fmt.Errorf("transform: nothing to reconstruct")
	}
	cur := copyGrid(dec.Approx)
	for _, bands := range dec.Details {
		if len(bands.Horizontal) != len(cur) {
			return nil, fmt.Errorf("transform: detail band is %d rows, approximation is %d", len(bands.Horizontal), len(cur))
		}
		cur = w.synth2D(cur, bands)
	}
	return cur, nil
}

// maxDecompositionLevel is how many times n can be halved.
func maxDecompositionLevel(n int) int {
	if n <= 1 {
		return 0
	}
	return int(math.Floor(math.Log2(float64(n))))
}

func makeGrid(rows, cols int) [][]float64 {
	g := make([][]float64, rows)
	for i := range g {
		g[i] = make([]float64, cols)
	}
	return g
}

func copyGrid(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, row := range src {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}
