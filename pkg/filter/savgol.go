package filter

import (
	"fmt"

	"github.com/itohio/golux/pkg/matrix"
	"gonum.org/v1/gonum/mat"
)

// invert is swapped in tests to exercise the singular fallback.
var invert = matrix.Invert

// SavitzkyGolay smooths by least-squares fitting a polynomial over a centered
// window and evaluating it at the window center.
//
// The convolution kernel is derived once at construction. Until the window is
// full the filter returns the plain average of the samples seen so far.
type SavitzkyGolay struct {
	window    int
	polyOrder int
	kernel    []float64
	uniform   bool
	hist      history
}

// NewSavitzkyGolay creates a filter over an odd window with a polynomial of degree polyOrder < window.
func NewSavitzkyGolay(window, polyOrder int) (*SavitzkyGolay, error) {
	if window < 1 || window%2 == 0 {
		return nil, fmt.Errorf("%w: savitzky-golay window must be odd and >= 1, got %d", ErrInvalidConfig, window)
	}
	if polyOrder < 0 || polyOrder >= window {
		return nil, fmt.Errorf("%w: savitzky-golay poly order must be in [0, %d), got %d", ErrInvalidConfig, window, polyOrder)
	}

	kernel, ok := savgolKernel(window, polyOrder)
	return &SavitzkyGolay{
		window:    window,
		polyOrder: polyOrder,
		kernel:    kernel,
		uniform:   !ok,
		hist:      newHistory(window),
	}, nil
}

// savgolKernel returns the first row of (AᵗA)⁻¹Aᵗ where A is the Vandermonde
// matrix of the abscissas -half..half. If AᵗA cannot be inverted it returns a
// uniform averaging kernel and false.
func savgolKernel(window, polyOrder int) ([]float64, bool) {
	half := (window - 1) / 2
	cols := polyOrder + 1

	a := mat.NewDense(window, cols, nil)
	for r := range window {
		j := float64(r - half)
		v := 1.0
		for p := range cols {
			a.Set(r, p, v)
			v *= j
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	var inv mat.Dense
	if err := invert(&inv, &ata); err != nil {
		kernel := make([]float64, window)
		for i := range kernel {
			kernel[i] = 1 / float64(window)
		}
		return kernel, false
	}

	var b mat.Dense
	b.Mul(&inv, a.T())

	kernel := make([]float64, window)
	copy(kernel, b.RawRowView(0))
	return kernel, true
}

// Process pushes raw into the window and returns the smoothed center estimate.
func (f *SavitzkyGolay) Process(raw float64) float64 {
	f.hist.push(raw)
	if !f.hist.full() {
		return f.hist.mean()
	}

	// kernel[0] pairs with the oldest sample (abscissa -half)
	var sum float64
	for i, c := range f.kernel {
		sum += c * f.hist.buf.At(i)
	}
	return sum
}

// Reset empties the window. The kernel is kept.
func (f *SavitzkyGolay) Reset() {
	f.hist.reset()
}

// Kernel returns a copy of the convolution coefficients.
func (f *SavitzkyGolay) Kernel() []float64 {
	k := make([]float64, len(f.kernel))
	copy(k, f.kernel)
	return k
}

// Uniform reports whether kernel derivation failed and the filter fell back to a plain average.
func (f *SavitzkyGolay) Uniform() bool {
	return f.uniform
}

// Window returns the window length.
func (f *SavitzkyGolay) Window() int {
	return f.window
}

// PolyOrder returns the fitted polynomial degree.
func (f *SavitzkyGolay) PolyOrder() int {
	return f.polyOrder
}
