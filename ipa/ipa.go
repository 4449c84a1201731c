// Package ipa implements an inner product argument polynomial commitment
// scheme over BN254: Pedersen commitments, logarithmic-size opening proofs
// produced by a recursive halving protocol, a batched opening folding many
// polynomials into one, and an accumulator that defers the linear-time
// multi-scalar multiplication of verification across a chain of proofs.
//
// The scheme is transparent (no trusted setup); binding relies on the
// discrete log assumption and on the setup generators having no known
// linear relation.
package ipa

import (
	"errors"
	"math/big"
	"math/bits"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/giuliop/pcs/internal/logger"
	"github.com/giuliop/pcs/polynomial"
)

var (
	ErrInvalidPolynomialSize = errors.New("polynomial degree is higher than the number of generators")
	ErrZeroPolynomial        = errors.New("polynomial is zero")
	ErrEmptyParams           = errors.New("empty params")
	ErrInvalidProofSize      = errors.New("proof vectors have mismatched lengths")
	ErrZeroChallenge         = errors.New("round challenge is zero")
	ErrNotDivisible          = errors.New("aggregated polynomial is not divisible by the vanishing polynomial")
	ErrInvalidNbPolynomials  = errors.New("number of polynomials does not match the batch inputs")
)

// Params holds the generators of the scheme: a vector G of group elements
// with no known discrete log relation among them, and an auxiliary element
// H. The core trusts NewParams on that independence; a production deployment
// must derive the generators via hash-to-curve or verifier randomness.
type Params struct {
	G []bn254.G1Affine
	H bn254.G1Affine
}

// NewParams returns params with size generators, derived from fresh random
// scalars which are discarded before returning.
func NewParams(size uint64) (*Params, error) {
	if size == 0 {
		return nil, ErrEmptyParams
	}
	start := time.Now()

	_, _, gen1Aff, _ := bn254.Generators()

	scalars := make([]fr.Element, size)
	for i := range scalars {
		if _, err := scalars[i].SetRandom(); err != nil {
			return nil, err
		}
	}
	var r fr.Element
	if _, err := r.SetRandom(); err != nil {
		return nil, err
	}
	var rBig big.Int
	r.BigInt(&rBig)

	var params Params
	params.G = bn254.BatchScalarMultiplicationG1(&gen1Aff, scalars)
	params.H.ScalarMultiplication(&gen1Aff, &rBig)

	log := logger.Logger().With().Str("curve", "bn254").Uint64("size", size).Logger()
	log.Debug().Dur("took", time.Since(start)).Msg("ipa setup done")

	return &params, nil
}

// OpeningProof is the transcript of the halving protocol: one (L, R) pair
// and one challenge per round, the final folded coefficient A and generator
// G, the claimed evaluation, and the auxiliary element U binding the inner
// product.
type OpeningProof struct {
	L, R []bn254.G1Affine

	// A is the single coefficient left after all folding rounds
	A fr.Element

	// G is the folded generator; the verifier may recompute it instead of
	// trusting it, see Verify and PartialVerify
	G bn254.G1Affine

	// ClaimedValue is the purported evaluation f(x)
	ClaimedValue fr.Element

	// Challenges are the round challenges u_j, in protocol order
	Challenges []fr.Element

	U bn254.G1Affine
}

// Commit commits to a polynomial as the Pedersen combination
// Sum_i p[i] * params.G[i]. No blinding term is added: the commitment is
// binding, not hiding.
func Commit(p polynomial.Polynomial, params *Params) (bn254.G1Affine, error) {
	if len(p) > len(params.G) {
		return bn254.G1Affine{}, ErrInvalidPolynomialSize
	}
	var res bn254.G1Affine
	if len(p) == 0 {
		return res, nil // the zero polynomial commits to the point at infinity
	}
	if _, err := res.MultiExp(params.G[:len(p)], p, ecc.MultiExpConfig{}); err != nil {
		return bn254.G1Affine{}, err
	}
	return res, nil
}

// Open computes an opening proof of p at point, sampling the round
// challenges and the auxiliary element U at random on the prover side. Use
// OpenWithSource with a Transcript to derive the round challenges by
// Fiat-Shamir instead; U is then passed in by the caller.
func Open(p polynomial.Polynomial, point *fr.Element, params *Params) (OpeningProof, error) {
	var uScalar fr.Element
	if _, err := uScalar.SetRandom(); err != nil {
		return OpeningProof{}, err
	}
	var uBig big.Int
	uScalar.BigInt(&uBig)
	_, _, gen1Aff, _ := bn254.Generators()
	var u bn254.G1Affine
	u.ScalarMultiplication(&gen1Aff, &uBig)

	return OpenWithSource(p, point, params, RandomChallenges(), &u)
}

// OpenWithSource computes an opening proof of p at point, drawing the round
// challenges from src and binding the inner product with the auxiliary
// element u.
//
// The coefficient vector is zero-padded to the next power of two n = 2^m
// and the protocol runs m halving rounds; each round emits an (L, R) pair,
// consumes a challenge, and folds the three working vectors to half size.
func OpenWithSource(p polynomial.Polynomial, point *fr.Element, params *Params,
	src ChallengeSource, u *bn254.G1Affine) (OpeningProof, error) {

	if p.IsZero() {
		return OpeningProof{}, ErrZeroPolynomial
	}
	n := int(ecc.NextPowerOfTwo(uint64(len(p))))
	if n > len(params.G) {
		return OpeningProof{}, ErrInvalidPolynomialSize
	}
	m := bits.TrailingZeros(uint(n))
	start := time.Now()

	a := make([]fr.Element, n)
	copy(a, p)
	b := powers(point, n)
	g := make([]bn254.G1Affine, n)
	copy(g, params.G[:n])

	proof := OpeningProof{
		L:            make([]bn254.G1Affine, 0, m),
		R:            make([]bn254.G1Affine, 0, m),
		ClaimedValue: p.Eval(point),
		Challenges:   make([]fr.Element, 0, m),
		U:            *u,
	}

	var ujInv fr.Element
	for j := 0; j < m; j++ {
		half := len(a) / 2
		aL, aR := a[:half], a[half:]
		bL, bR := b[:half], b[half:]
		gL, gR := g[:half], g[half:]

		l, err := crossTerm(aL, gR, bR, u)
		if err != nil {
			return OpeningProof{}, err
		}
		r, err := crossTerm(aR, gL, bL, u)
		if err != nil {
			return OpeningProof{}, err
		}
		proof.L = append(proof.L, l)
		proof.R = append(proof.R, r)

		uj, err := src.RoundChallenge(&l, &r)
		if err != nil {
			return OpeningProof{}, err
		}
		if uj.IsZero() {
			return OpeningProof{}, ErrZeroChallenge
		}
		ujInv.Inverse(&uj)
		proof.Challenges = append(proof.Challenges, uj)

		a = foldScalars(aL, aR, &uj, &ujInv)
		b = foldScalars(bL, bR, &ujInv, &uj)
		g = foldPoints(gL, gR, &ujInv, &uj)
	}

	proof.A = a[0]
	proof.G = g[0]

	log := logger.Logger().With().Str("curve", "bn254").Int("size", n).Logger()
	log.Debug().Dur("took", time.Since(start)).Msg("ipa opening done")

	return proof, nil
}

// Verify checks an opening proof against a commitment, recomputing the
// folded generator G* = <s, G> itself. This is the sound, linear-time
// check.
func Verify(commitment *bn254.G1Affine, proof *OpeningProof, point *fr.Element, params *Params) (bool, error) {
	return verify(commitment, proof, point, params, false)
}

// PartialVerify checks everything in an opening proof except the G*
// multi-scalar multiplication, trusting the prover-supplied folded
// generator. It is sound only when G* is bound to the proof by an outer
// protocol, as done by Accumulate.
func PartialVerify(commitment *bn254.G1Affine, proof *OpeningProof, point *fr.Element, params *Params) (bool, error) {
	return verify(commitment, proof, point, params, true)
}

func verify(commitment *bn254.G1Affine, proof *OpeningProof, point *fr.Element,
	params *Params, useSuppliedG bool) (bool, error) {

	if len(params.G) == 0 {
		return false, ErrEmptyParams
	}
	m := len(proof.L)
	if len(proof.R) != m || len(proof.Challenges) != m {
		return false, ErrInvalidProofSize
	}
	n := 1 << m
	if !useSuppliedG && n > len(params.G) {
		return false, ErrInvalidPolynomialSize
	}
	for j := range proof.Challenges {
		if proof.Challenges[j].IsZero() {
			return false, ErrZeroChallenge
		}
	}

	// C' = C + v*U + sum_j u_j^2*L_j + u_j^-2*R_j
	var cPrime, t bn254.G1Jac
	cPrime.FromAffine(commitment)
	var sBig big.Int
	proof.ClaimedValue.BigInt(&sBig)
	t.FromAffine(&proof.U)
	t.ScalarMultiplication(&t, &sBig)
	cPrime.AddAssign(&t)

	var u2, uInv fr.Element
	for j := 0; j < m; j++ {
		u2.Square(&proof.Challenges[j])
		u2.BigInt(&sBig)
		t.FromAffine(&proof.L[j])
		t.ScalarMultiplication(&t, &sBig)
		cPrime.AddAssign(&t)

		uInv.Inverse(&proof.Challenges[j])
		u2.Square(&uInv)
		u2.BigInt(&sBig)
		t.FromAffine(&proof.R[j])
		t.ScalarMultiplication(&t, &sBig)
		cPrime.AddAssign(&t)
	}

	bStar := foldedEval(proof.Challenges, point)

	var gStar bn254.G1Affine
	if useSuppliedG {
		gStar = proof.G
	} else {
		s := FoldedScalars(proof.Challenges, n)
		if _, err := gStar.MultiExp(params.G[:n], s, ecc.MultiExpConfig{}); err != nil {
			return false, err
		}
	}

	// a*(G* + b*U) == C'
	bStar.BigInt(&sBig)
	var uTerm bn254.G1Affine
	uTerm.ScalarMultiplication(&proof.U, &sBig)
	var lhsAff bn254.G1Affine
	lhsAff.Add(&gStar, &uTerm)
	var lhs bn254.G1Jac
	lhs.FromAffine(&lhsAff)
	proof.A.BigInt(&sBig)
	lhs.ScalarMultiplication(&lhs, &sBig)

	return lhs.Equal(&cPrime), nil
}

// FoldedScalars expands the round challenges into the length n vector s
// with s_i = prod_j u_{m-1-j}^e, where e is +1 if the j-th bit of i is set
// and -1 otherwise.
func FoldedScalars(challenges []fr.Element, n int) []fr.Element {
	m := len(challenges)
	inverses := fr.BatchInvert(challenges)
	s := make([]fr.Element, n)
	for i := 0; i < n; i++ {
		s[i].SetOne()
		for j := 0; j < m; j++ {
			if i>>j&1 == 1 {
				s[i].Mul(&s[i], &challenges[m-1-j])
			} else {
				s[i].Mul(&s[i], &inverses[m-1-j])
			}
		}
	}
	return s
}

// foldedEval returns <s, b> for the evaluation vector b of point, using the
// product form prod_j (u_{m-1-j}^-1 + u_{m-1-j} * point^(2^j)).
func foldedEval(challenges []fr.Element, point *fr.Element) fr.Element {
	var res, term, t, xPow fr.Element
	res.SetOne()
	xPow.Set(point)
	m := len(challenges)
	for j := 0; j < m; j++ {
		term.Inverse(&challenges[m-1-j])
		t.Mul(&challenges[m-1-j], &xPow)
		term.Add(&term, &t)
		res.Mul(&res, &term)
		xPow.Square(&xPow)
	}
	return res
}

// crossTerm computes <a, g> + <a, b>*u, the L or R group element of one
// halving round.
func crossTerm(a []fr.Element, g []bn254.G1Affine, b []fr.Element, u *bn254.G1Affine) (bn254.G1Affine, error) {
	var res bn254.G1Affine
	if _, err := res.MultiExp(g, a, ecc.MultiExpConfig{}); err != nil {
		return bn254.G1Affine{}, err
	}
	ip := innerProduct(a, b)
	var ipBig big.Int
	ip.BigInt(&ipBig)
	var uTerm bn254.G1Affine
	uTerm.ScalarMultiplication(u, &ipBig)
	res.Add(&res, &uTerm)
	return res, nil
}

func innerProduct(a, b []fr.Element) fr.Element {
	var res, t fr.Element
	for i := range a {
		t.Mul(&a[i], &b[i])
		res.Add(&res, &t)
	}
	return res
}

// powers returns (1, x, x^2, ..., x^(n-1)).
func powers(x *fr.Element, n int) []fr.Element {
	res := make([]fr.Element, n)
	res[0].SetOne()
	for i := 1; i < n; i++ {
		res[i].Mul(&res[i-1], x)
	}
	return res
}

// foldScalars returns xl*left + xr*right component-wise.
func foldScalars(left, right []fr.Element, xl, xr *fr.Element) []fr.Element {
	res := make([]fr.Element, len(left))
	var t fr.Element
	for i := range res {
		res[i].Mul(&left[i], xl)
		t.Mul(&right[i], xr)
		res[i].Add(&res[i], &t)
	}
	return res
}

// foldPoints returns xl*left + xr*right component-wise.
func foldPoints(left, right []bn254.G1Affine, xl, xr *fr.Element) []bn254.G1Affine {
	var xlBig, xrBig big.Int
	xl.BigInt(&xlBig)
	xr.BigInt(&xrBig)
	folded := make([]bn254.G1Jac, len(left))
	var t bn254.G1Jac
	for i := range folded {
		folded[i].FromAffine(&left[i])
		folded[i].ScalarMultiplication(&folded[i], &xlBig)
		t.FromAffine(&right[i])
		t.ScalarMultiplication(&t, &xrBig)
		folded[i].AddAssign(&t)
	}
	return bn254.BatchJacobianToAffineG1(folded)
}
