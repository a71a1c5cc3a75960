// Package stats holds the exploratory monetary-statistics toolkit. Nothing
// here is wired into the decision loop; the utilities exist for offline
// research on the composite unit and its constituents.
package stats

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MonetarySpace models the monetary correlation space as a positive-definite
// inner-product matrix over constituents.
type MonetarySpace struct {
	rho *mat.SymDense
}

// NewMonetarySpace validates rho (square, positive definite) and wraps it.
func NewMonetarySpace(rho *mat.SymDense) (*MonetarySpace, error) {
	if err := checkPD(rho); err != nil {
		return nil, err
	}
	return &MonetarySpace{rho: rho}, nil
}

func checkPD(rho *mat.SymDense) error {
	var chol mat.Cholesky
	if !chol.Factorize(rho) {
		return fmt.Errorf("stats: rho is not positive definite")
	}
	return nil
}

// Dim returns the number of constituents.
func (m *MonetarySpace) Dim() int {
	if m.rho == nil {
		return 0
	}
	return m.rho.SymmetricDim()
}

// Rho returns a copy of the inner-product matrix.
func (m *MonetarySpace) Rho() *mat.SymDense {
	out := mat.NewSymDense(m.Dim(), nil)
	out.CopySym(m.rho)
	return out
}

// Delist removes constituent k via the Schur complement, preserving the
// induced geometry on the remaining constituents.
func (m *MonetarySpace) Delist(k int) error {
	n := m.Dim()
	if k < 0 || k >= n {
		return fmt.Errorf("stats: delist index %d out of range [0,%d)", k, n)
	}
	if n == 1 {
		m.rho = nil
		return nil
	}

	keep := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != k {
			keep = append(keep, i)
		}
	}

	d := m.rho.At(k, k)
	next := mat.NewSymDense(n-1, nil)
	for i, ri := range keep {
		for j, rj := range keep {
			if j < i {
				continue
			}
			v := m.rho.At(ri, rj) - m.rho.At(ri, k)*m.rho.At(rj, k)/d
			next.SetSym(i, j, v)
		}
	}

	if err := checkPD(next); err != nil {
		return err
	}
	m.rho = next
	return nil
}
