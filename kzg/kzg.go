// Package kzg implements the Kate-Zaverucha-Goldberg polynomial commitment
// scheme over BN254: commitments are single G1 elements, opening proofs are
// quotient commitments checked with one pairing equation, and batched
// openings at many points go through a remainder polynomial.
//
// Binding relies on the d-SDH assumption; the SRS must come from a setup
// whose secret nobody knows.
package kzg

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/giuliop/pcs/polynomial"
)

var (
	ErrInvalidPolynomialSize = errors.New("polynomial degree is higher than the number of powers in the srs")
	ErrZeroPolynomial        = errors.New("polynomial is zero")
	ErrMinSRSSize            = errors.New("minimum srs size is 2")
	ErrEmptySRS              = errors.New("empty srs")
	ErrNotDivisible          = errors.New("polynomial is not divisible by the vanishing factor")
	ErrInvalidNbPoints       = errors.New("number of points does not match the remainder degree")
)

// Digest is a commitment to a polynomial.
type Digest = bn254.G1Affine

// OpeningProof is a proof that the committed polynomial evaluates to
// ClaimedValue at a single point.
type OpeningProof struct {
	// H is the commitment to the quotient polynomial (f - f(u))/(X - u)
	H Digest

	// ClaimedValue is the purported evaluation f(u)
	ClaimedValue fr.Element
}

// BatchOpeningProof is a proof that the committed polynomial agrees with the
// remainder R on a set of points.
type BatchOpeningProof struct {
	// H is the commitment to the quotient polynomial (f - r)/Z_U
	H Digest

	// R is the remainder f mod Z_U; it agrees with f on every opening point
	// and has degree < |U|
	R polynomial.Polynomial
}

// Commit commits to a polynomial as Sum_i p[i] * srs.G1[i], with a multi
// exponentiation.
func Commit(p polynomial.Polynomial, srs *SRS) (Digest, error) {
	if len(p) > len(srs.G1) {
		return Digest{}, ErrInvalidPolynomialSize
	}
	var res Digest
	if len(p) == 0 {
		return res, nil // the zero polynomial commits to the point at infinity
	}
	if _, err := res.MultiExp(srs.G1[:len(p)], p, ecc.MultiExpConfig{}); err != nil {
		return Digest{}, err
	}
	return res, nil
}

// commitG2 commits to a polynomial in G2, used by the verifier of batched
// openings to commit to the vanishing polynomial.
func commitG2(p polynomial.Polynomial, srs *SRS) (bn254.G2Affine, error) {
	if len(p) > len(srs.G2) {
		return bn254.G2Affine{}, ErrInvalidPolynomialSize
	}
	var res bn254.G2Affine
	if len(p) == 0 {
		return res, nil
	}
	if _, err := res.MultiExp(srs.G2[:len(p)], p, ecc.MultiExpConfig{}); err != nil {
		return bn254.G2Affine{}, err
	}
	return res, nil
}

// Open computes an opening proof of p at point.
//
// Since (X - u) always divides f - f(u), a non-zero remainder means the
// input polynomial or the arithmetic is corrupted and is returned as an
// error.
func Open(p polynomial.Polynomial, point *fr.Element, srs *SRS) (OpeningProof, error) {
	if p.IsZero() {
		return OpeningProof{}, ErrZeroPolynomial
	}
	if len(p) > len(srs.G1) {
		return OpeningProof{}, ErrInvalidPolynomialSize
	}

	v := p.Eval(point)
	numerator := p.Sub(polynomial.NewFromCoefficients([]fr.Element{v}))
	q, r, err := numerator.DivMod(polynomial.FromRoots([]fr.Element{*point}))
	if err != nil {
		return OpeningProof{}, err
	}
	if !r.IsZero() {
		return OpeningProof{}, ErrNotDivisible
	}

	h, err := Commit(q, srs)
	if err != nil {
		return OpeningProof{}, err
	}
	return OpeningProof{H: h, ClaimedValue: v}, nil
}

// Verify checks an opening proof against a commitment: it returns true iff
//
//	e(H, [alpha - u]G2) == e(C - v*G1, G2)
//
// A false return means the proof does not open the commitment; an error is
// only returned on degenerate inputs.
func Verify(commitment *Digest, proof *OpeningProof, point *fr.Element, srs *SRS) (bool, error) {
	if len(srs.G1) == 0 || len(srs.G2) < 2 {
		return false, ErrEmptySRS
	}

	// [alpha - u]G2
	var pointBig big.Int
	point.BigInt(&pointBig)
	var genG2Jac, alphaG2Jac, alphaMinusU bn254.G2Jac
	genG2Jac.FromAffine(&srs.G2[0])
	alphaG2Jac.FromAffine(&srs.G2[1])
	alphaMinusU.ScalarMultiplication(&genG2Jac, &pointBig).
		Neg(&alphaMinusU).
		AddAssign(&alphaG2Jac)
	var alphaMinusUAff bn254.G2Affine
	alphaMinusUAff.FromJacobian(&alphaMinusU)

	// -(C - v*G1)
	var vBig big.Int
	proof.ClaimedValue.BigInt(&vBig)
	var vG1 bn254.G1Affine
	vG1.ScalarMultiplication(&srs.G1[0], &vBig)
	var cMinusV, tmp bn254.G1Jac
	cMinusV.FromAffine(commitment)
	tmp.FromAffine(&vG1)
	cMinusV.SubAssign(&tmp)
	var cMinusVAff bn254.G1Affine
	cMinusVAff.FromJacobian(&cMinusV)
	cMinusVAff.Neg(&cMinusVAff)

	return bn254.PairingCheck(
		[]bn254.G1Affine{proof.H, cMinusVAff},
		[]bn254.G2Affine{alphaMinusUAff, srs.G2[0]},
	)
}

// BatchOpen computes an opening proof of p on a set of points at once. The
// returned remainder agrees with p on every point and has degree <
// len(points).
func BatchOpen(p polynomial.Polynomial, points []fr.Element, srs *SRS) (BatchOpeningProof, error) {
	if p.IsZero() {
		return BatchOpeningProof{}, ErrZeroPolynomial
	}
	if len(p) > len(srs.G1) {
		return BatchOpeningProof{}, ErrInvalidPolynomialSize
	}

	z := polynomial.FromRoots(points)
	_, r, err := p.DivMod(z)
	if err != nil {
		return BatchOpeningProof{}, err
	}
	psi, rem, err := p.Sub(r).DivMod(z)
	if err != nil {
		return BatchOpeningProof{}, err
	}
	if !rem.IsZero() {
		return BatchOpeningProof{}, ErrNotDivisible
	}

	h, err := Commit(psi, srs)
	if err != nil {
		return BatchOpeningProof{}, err
	}
	return BatchOpeningProof{H: h, R: r}, nil
}

// BatchVerify checks a batched opening proof against a commitment: it
// returns true iff
//
//	e(H, [Z_U(alpha)]G2) == e(C - [r(alpha)]G1, G2)
//
// with Z_U the vanishing polynomial of the points.
func BatchVerify(commitment *Digest, proof *BatchOpeningProof, points []fr.Element, srs *SRS) (bool, error) {
	if len(srs.G1) == 0 || len(srs.G2) == 0 {
		return false, ErrEmptySRS
	}
	if len(points) != proof.R.Degree()+1 {
		return false, ErrInvalidNbPoints
	}

	z := polynomial.FromRoots(points)
	commitmentZ, err := commitG2(z, srs)
	if err != nil {
		return false, err
	}
	commitmentR, err := Commit(proof.R, srs)
	if err != nil {
		return false, err
	}

	// -(C - C_r)
	var diff, tmp bn254.G1Jac
	diff.FromAffine(commitment)
	tmp.FromAffine(&commitmentR)
	diff.SubAssign(&tmp)
	var diffAff bn254.G1Affine
	diffAff.FromJacobian(&diff)
	diffAff.Neg(&diffAff)

	return bn254.PairingCheck(
		[]bn254.G1Affine{proof.H, diffAff},
		[]bn254.G2Affine{commitmentZ, srs.G2[0]},
	)
}
