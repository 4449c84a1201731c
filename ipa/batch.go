package ipa

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/giuliop/pcs/polynomial"
)

// BatchOpeningProof is a proof that k committed polynomials all open
// correctly on their respective point sets. It reduces to one single-point
// opening of the aggregated polynomial g at a shared random point, with
// claimed evaluation zero.
type BatchOpeningProof struct {
	// QCommitment commits to Q = (sum_i rho_i*f_i*Z_i) / Z
	QCommitment bn254.G1Affine

	// Proof opens g(X) = sum_i rho_i*Z_i(x)*f_i(X) - Z(x)*Q(X) at x
	Proof OpeningProof
}

// BatchCommit aggregates the polynomials into the quotient
//
//	Q = (sum_i rho_i * f_i * Z_i) / Z
//
// and commits to it. Z is the vanishing polynomial of the global point set
// and Z_i the cofactor Z / Z_{Omega_i} for f_i's own opening set Omega_i.
// The division must be exact: a non-zero remainder means some f_i does not
// vanish on its set and the inputs are inconsistent.
func BatchCommit(polys []polynomial.Polynomial, zPoly polynomial.Polynomial,
	ziPolys []polynomial.Polynomial, rho []fr.Element, params *Params) (
	bn254.G1Affine, polynomial.Polynomial, error) {

	q, err := aggregateQuotient(polys, zPoly, ziPolys, rho, params)
	if err != nil {
		return bn254.G1Affine{}, nil, err
	}
	commitment, err := Commit(q, params)
	if err != nil {
		return bn254.G1Affine{}, nil, err
	}
	return commitment, q, nil
}

// BatchOpen opens the polynomials as a batch at the shared random point x:
// it forms g(X) = sum_i rho_i*Z_i(x)*f_i(X) - Z(x)*Q(X), which vanishes at
// x by construction, and produces a single-point opening of g at x.
func BatchOpen(polys []polynomial.Polynomial, zPoly polynomial.Polynomial,
	ziPolys []polynomial.Polynomial, rho []fr.Element, x *fr.Element,
	params *Params) (BatchOpeningProof, error) {

	q, err := aggregateQuotient(polys, zPoly, ziPolys, rho, params)
	if err != nil {
		return BatchOpeningProof{}, err
	}
	qCommitment, err := Commit(q, params)
	if err != nil {
		return BatchOpeningProof{}, err
	}

	g := aggregateAtPoint(polys, zPoly, ziPolys, rho, x, q)
	proof, err := Open(g, x, params)
	if err != nil {
		return BatchOpeningProof{}, err
	}
	if !proof.ClaimedValue.IsZero() {
		return BatchOpeningProof{}, ErrNotDivisible
	}
	return BatchOpeningProof{QCommitment: qCommitment, Proof: proof}, nil
}

// BatchVerify checks a batched opening against the individual commitments:
// it reconstructs the commitment to g from them,
//
//	C_g = sum_i (rho_i * Z_i(x)) * C_i  -  Z(x) * C_Q
//
// and runs the single-point verification with claimed evaluation zero.
func BatchVerify(commitments []bn254.G1Affine, proof *BatchOpeningProof,
	zPoly polynomial.Polynomial, ziPolys []polynomial.Polynomial,
	rho []fr.Element, x *fr.Element, params *Params) (bool, error) {

	if len(commitments) != len(ziPolys) || len(commitments) != len(rho) {
		return false, ErrInvalidNbPolynomials
	}
	if !proof.Proof.ClaimedValue.IsZero() {
		return false, nil
	}

	scalars := make([]fr.Element, len(commitments))
	var ziAtX fr.Element
	for i := range scalars {
		ziAtX = ziPolys[i].Eval(x)
		scalars[i].Mul(&rho[i], &ziAtX)
	}
	var cG bn254.G1Affine
	if _, err := cG.MultiExp(commitments, scalars, ecc.MultiExpConfig{}); err != nil {
		return false, err
	}

	zAtX := zPoly.Eval(x)
	var zBig big.Int
	zAtX.BigInt(&zBig)
	var zTerm bn254.G1Affine
	zTerm.ScalarMultiplication(&proof.QCommitment, &zBig)

	var cGJac, t bn254.G1Jac
	cGJac.FromAffine(&cG)
	t.FromAffine(&zTerm)
	cGJac.SubAssign(&t)
	cG.FromJacobian(&cGJac)

	return Verify(&cG, &proof.Proof, x, params)
}

// aggregateQuotient computes Q = (sum_i rho_i*f_i*Z_i) / Z, scaling the
// per-polynomial products in parallel.
func aggregateQuotient(polys []polynomial.Polynomial, zPoly polynomial.Polynomial,
	ziPolys []polynomial.Polynomial, rho []fr.Element, params *Params) (
	polynomial.Polynomial, error) {

	if len(polys) != len(ziPolys) || len(polys) != len(rho) {
		return nil, ErrInvalidNbPolynomials
	}

	terms := make([]polynomial.Polynomial, len(polys))
	var wg errgroup.Group
	for i := range polys {
		i := i
		wg.Go(func() error {
			if len(polys[i]) > len(params.G) {
				return ErrInvalidPolynomialSize
			}
			terms[i] = polys[i].Mul(ziPolys[i]).ScalarMul(&rho[i])
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, err
	}

	var numerator polynomial.Polynomial
	for i := range terms {
		numerator = numerator.Add(terms[i])
	}

	q, r, err := numerator.DivMod(zPoly)
	if err != nil {
		return nil, err
	}
	if !r.IsZero() {
		return nil, ErrNotDivisible
	}
	return q, nil
}

// aggregateAtPoint computes g(X) = sum_i rho_i*Z_i(x)*f_i(X) - Z(x)*Q(X).
func aggregateAtPoint(polys []polynomial.Polynomial, zPoly polynomial.Polynomial,
	ziPolys []polynomial.Polynomial, rho []fr.Element, x *fr.Element,
	q polynomial.Polynomial) polynomial.Polynomial {

	var g polynomial.Polynomial
	var scale fr.Element
	for i := range polys {
		ziAtX := ziPolys[i].Eval(x)
		scale.Mul(&rho[i], &ziAtX)
		g = g.Add(polys[i].ScalarMul(&scale))
	}
	zAtX := zPoly.Eval(x)
	return g.Sub(q.ScalarMul(&zAtX))
}
