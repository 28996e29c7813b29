// Package matrix holds small dense linear algebra helpers built on gonum containers.
package matrix

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// PivotThreshold is the smallest pivot magnitude accepted before a matrix is declared singular.
	PivotThreshold = 1e-12

	// eliminationThreshold skips rows that already have a zero in the pivot column.
	eliminationThreshold = 1e-15
)

var (
	ErrSingular  = errors.New("matrix is singular")
	ErrNotSquare = errors.New("matrix is not square")
	ErrShape     = errors.New("destination has wrong shape")
)

// Invert computes the inverse of the square matrix a into dst using Gauss-Jordan
// elimination with partial pivoting.
//
// An empty dst is sized to match a. On error dst is left untouched.
func Invert(dst *mat.Dense, a mat.Matrix) error {
	n, c := a.Dims()
	if n != c || n == 0 {
		return ErrNotSquare
	}
	if !dst.IsEmpty() {
		if r, c := dst.Dims(); r != n || c != n {
			return ErrShape
		}
	}

	// augmented [a | I], row-major, 2n wide
	w := 2 * n
	aug := make([]float64, n*w)
	for r := range n {
		for c := range n {
			aug[r*w+c] = a.At(r, c)
		}
		aug[r*w+n+r] = 1
	}

	for col := range n {
		pivot := col
		maxval := math.Abs(aug[col*w+col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug[r*w+col]); v > maxval {
				maxval = v
				pivot = r
			}
		}
		if maxval < PivotThreshold {
			return ErrSingular
		}

		if pivot != col {
			pr := aug[pivot*w : pivot*w+w]
			cr := aug[col*w : col*w+w]
			for i := range cr {
				cr[i], pr[i] = pr[i], cr[i]
			}
		}

		row := aug[col*w : col*w+w]
		pv := row[col]
		for i := range row {
			row[i] /= pv
		}

		for r := range n {
			if r == col {
				continue
			}
			other := aug[r*w : r*w+w]
			factor := other[col]
			if math.Abs(factor) < eliminationThreshold {
				continue
			}
			for i := range other {
				other[i] -= factor * row[i]
			}
		}
	}

	if dst.IsEmpty() {
		dst.ReuseAs(n, n)
	}
	for r := range n {
		for c := range n {
			dst.Set(r, c, aug[r*w+n+c])
		}
	}
	return nil
}
