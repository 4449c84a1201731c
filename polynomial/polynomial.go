// Package polynomial implements dense univariate polynomials over the BN254
// scalar field, in coefficient form. It is the algebra layer under the kzg
// and ipa commitment engines.
package polynomial

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	ErrZeroDivisor     = errors.New("division by the zero polynomial")
	ErrDuplicatePoints = errors.New("interpolation points are not distinct")
	ErrInvalidNbPoints = errors.New("number of points does not match number of values")
)

// Polynomial is a dense polynomial a_0 + a_1*X + ... + a_d*X^d stored as its
// coefficient slice. Canonical form: the last coefficient is non zero, and
// the zero polynomial is the empty slice.
type Polynomial []fr.Element

// NewFromCoefficients builds a polynomial from coeffs, stripping trailing
// zeros. The slice is copied, the caller keeps ownership of coeffs.
func NewFromCoefficients(coeffs []fr.Element) Polynomial {
	p := make(Polynomial, len(coeffs))
	copy(p, coeffs)
	return p.canonical()
}

// Random returns a polynomial with degree+1 uniformly sampled coefficients.
func Random(degree int) Polynomial {
	p := make(Polynomial, degree+1)
	for i := range p {
		p[i].SetRandom()
	}
	return p.canonical()
}

// One returns the constant polynomial 1.
func One() Polynomial {
	p := make(Polynomial, 1)
	p[0].SetOne()
	return p
}

// FromRoots returns the monic polynomial Prod_i (X - roots[i]), that is the
// vanishing polynomial of the multiset roots. With no roots it returns the
// constant polynomial 1.
func FromRoots(roots []fr.Element) Polynomial {
	p := One()
	var linear [2]fr.Element
	for i := range roots {
		linear[0].Neg(&roots[i])
		linear[1].SetOne()
		p = p.Mul(linear[:])
	}
	return p
}

// Interpolate returns the unique polynomial of degree < len(points) passing
// through (points[i], values[i]), computed with the Lagrange basis. The
// points must be pairwise distinct.
func Interpolate(points, values []fr.Element) (Polynomial, error) {
	if len(points) != len(values) {
		return nil, ErrInvalidNbPoints
	}
	res := make(Polynomial, 0, len(points))
	var denominator, diff, scale fr.Element
	for i := range points {
		// L_i(X) = Prod_{j != i} (X - x_j) / (x_i - x_j)
		numerator := One()
		denominator.SetOne()
		var linear [2]fr.Element
		for j := range points {
			if j == i {
				continue
			}
			linear[0].Neg(&points[j])
			linear[1].SetOne()
			numerator = numerator.Mul(linear[:])
			diff.Sub(&points[i], &points[j])
			denominator.Mul(&denominator, &diff)
		}
		if denominator.IsZero() {
			return nil, ErrDuplicatePoints
		}
		scale.Inverse(&denominator)
		scale.Mul(&scale, &values[i])
		res = res.Add(numerator.ScalarMul(&scale))
	}
	return res.canonical(), nil
}

// Degree returns the degree of p, with the convention that the zero
// polynomial has degree 0.
func (p Polynomial) Degree() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// IsZero reports whether p is the zero polynomial.
func (p Polynomial) IsZero() bool {
	return len(p) == 0
}

// Clone returns an owned copy of p.
func (p Polynomial) Clone() Polynomial {
	q := make(Polynomial, len(p))
	copy(q, p)
	return q
}

// Equal reports whether p and q are the same polynomial.
func (p Polynomial) Equal(q Polynomial) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if !p[i].Equal(&q[i]) {
			return false
		}
	}
	return true
}

// Eval evaluates p at point using Horner's rule.
func (p Polynomial) Eval(point *fr.Element) fr.Element {
	var res fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		res.Mul(&res, point)
		res.Add(&res, &p[i])
	}
	return res
}

// Add returns p + q.
func (p Polynomial) Add(q Polynomial) Polynomial {
	long, short := p, q
	if len(q) > len(p) {
		long, short = q, p
	}
	res := long.Clone()
	for i := range short {
		res[i].Add(&res[i], &short[i])
	}
	return res.canonical()
}

// Sub returns p - q.
func (p Polynomial) Sub(q Polynomial) Polynomial {
	res := make(Polynomial, max(len(p), len(q)))
	copy(res, p)
	for i := range q {
		res[i].Sub(&res[i], &q[i])
	}
	return res.canonical()
}

// Mul returns p * q, by schoolbook convolution.
func (p Polynomial) Mul(q Polynomial) Polynomial {
	if p.IsZero() || q.IsZero() {
		return Polynomial{}
	}
	res := make(Polynomial, len(p)+len(q)-1)
	var t fr.Element
	for i := range p {
		if p[i].IsZero() {
			continue
		}
		for j := range q {
			t.Mul(&p[i], &q[j])
			res[i+j].Add(&res[i+j], &t)
		}
	}
	return res.canonical()
}

// ScalarMul returns s * p.
func (p Polynomial) ScalarMul(s *fr.Element) Polynomial {
	res := make(Polynomial, len(p))
	for i := range p {
		res[i].Mul(&p[i], s)
	}
	return res.canonical()
}

// DivMod returns (q, r) such that p = q*b + r with deg(r) < deg(b) or r
// zero. It errors if b is the zero polynomial.
func (p Polynomial) DivMod(b Polynomial) (Polynomial, Polynomial, error) {
	if b.IsZero() {
		return nil, nil, ErrZeroDivisor
	}
	if len(p) < len(b) {
		return Polynomial{}, p.Clone(), nil
	}

	var leadInv fr.Element
	leadInv.Inverse(&b[len(b)-1])

	r := p.Clone()
	q := make(Polynomial, len(p)-len(b)+1)
	var factor, t fr.Element
	for i := len(r) - len(b); i >= 0; i-- {
		factor.Mul(&r[i+len(b)-1], &leadInv)
		if factor.IsZero() {
			continue
		}
		q[i].Set(&factor)
		for j := range b {
			t.Mul(&factor, &b[j])
			r[i+j].Sub(&r[i+j], &t)
		}
	}
	return q.canonical(), r.canonical(), nil
}

// canonical strips trailing zero coefficients in place.
func (p Polynomial) canonical() Polynomial {
	n := len(p)
	for n > 0 && p[n-1].IsZero() {
		n--
	}
	return p[:n]
}
