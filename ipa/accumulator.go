package ipa

import (
	"errors"
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/giuliop/pcs/internal/logger"
	"github.com/giuliop/pcs/polynomial"
)

var (
	ErrUnverifiedInstance = errors.New("instance fails its succinct check")
	ErrMismatchedProofs   = errors.New("instances have different proof sizes")
)

// Instance is a commitment together with an opening proof of it, the unit
// the accumulator folds.
type Instance struct {
	Commitment bn254.G1Affine
	Point      fr.Element
	Proof      OpeningProof
}

// Accumulator is the result of folding two instances into one: a fresh
// opening of the folded scalar polynomial. Verifying it fully with one
// ordinary Verify call implies both folded instances, so only the last
// accumulator in a chain pays the linear-time multi-scalar multiplication.
type Accumulator struct {
	// Commitment is G*_1 + alpha*G*_2, the purported commitment to the
	// folded scalar polynomial
	Commitment bn254.G1Affine

	// Point is the fresh evaluation point x'
	Point fr.Element

	// ClaimedValue is the evaluation of the folded scalar polynomial at x'
	ClaimedValue fr.Element

	Proof OpeningProof
}

// Accumulate folds two instances into a new accumulator.
//
// Each instance passes its succinct check first, with the prover-supplied
// folded generator G*; the deferred full verification of the accumulator is
// what binds those G* values, since its commitment G*_1 + alpha*G*_2 equals
// the commitment of the folded scalar polynomial s_1 + alpha*s_2 only if
// both were computed honestly. Soundness additionally requires alpha to be
// unpredictable to the prover and the supplied G* values to be bound to
// their proofs by the surrounding protocol.
func Accumulate(in1, in2 *Instance, alpha, xPrime *fr.Element, params *Params) (Accumulator, error) {
	start := time.Now()

	for _, in := range []*Instance{in1, in2} {
		ok, err := PartialVerify(&in.Commitment, &in.Proof, &in.Point, params)
		if err != nil {
			return Accumulator{}, err
		}
		if !ok {
			return Accumulator{}, ErrUnverifiedInstance
		}
	}

	if len(in1.Proof.L) != len(in2.Proof.L) {
		return Accumulator{}, ErrMismatchedProofs
	}
	n := 1 << len(in1.Proof.L)

	// acc_C = G*_1 + alpha*G*_2
	var alphaBig big.Int
	alpha.BigInt(&alphaBig)
	var accC, t bn254.G1Jac
	accC.FromAffine(&in1.Proof.G)
	t.FromAffine(&in2.Proof.G)
	t.ScalarMultiplication(&t, &alphaBig)
	accC.AddAssign(&t)
	var accCAff bn254.G1Affine
	accCAff.FromJacobian(&accC)

	// acc_s = s_1 + alpha*s_2
	s1 := FoldedScalars(in1.Proof.Challenges, n)
	s2 := FoldedScalars(in2.Proof.Challenges, n)
	var one fr.Element
	one.SetOne()
	polyS := polynomial.NewFromCoefficients(foldScalars(s1, s2, &one, alpha))

	proof, err := Open(polyS, xPrime, params)
	if err != nil {
		return Accumulator{}, err
	}

	log := logger.Logger().With().Str("curve", "bn254").Int("size", n).Logger()
	log.Debug().Dur("took", time.Since(start)).Msg("ipa accumulation done")

	return Accumulator{
		Commitment:   accCAff,
		Point:        *xPrime,
		ClaimedValue: proof.ClaimedValue,
		Proof:        proof,
	}, nil
}

// Verify runs the deferred full check of the accumulator, a single ordinary
// opening verification including the linear-time multi-scalar
// multiplication.
func (acc *Accumulator) Verify(params *Params) (bool, error) {
	if !acc.ClaimedValue.Equal(&acc.Proof.ClaimedValue) {
		return false, nil
	}
	return Verify(&acc.Commitment, &acc.Proof, &acc.Point, params)
}
