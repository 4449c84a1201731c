package kzg

import (
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/giuliop/pcs/internal/logger"
)

// SRS holds the trusted setup parameters: the powers of a secret scalar
// alpha in both groups, [alpha^i]G1 and [alpha^i]G2 for i = 0..size-1. Both
// vectors come from the same alpha and have the same length.
type SRS struct {
	G1 []bn254.G1Affine
	G2 []bn254.G2Affine
}

// NewSRS returns a new SRS of the given size using bAlpha as the secret.
//
// Pass a nil bAlpha to sample a fresh random secret which is discarded
// before returning, a single-party toy version of a trusted setup. In
// production an SRS generated through a multi-party ceremony should be used
// instead.
func NewSRS(size uint64, bAlpha *big.Int) (*SRS, error) {
	if size < 2 {
		return nil, ErrMinSRSSize
	}
	start := time.Now()

	var alpha fr.Element
	if bAlpha == nil {
		if _, err := alpha.SetRandom(); err != nil {
			return nil, err
		}
	} else {
		alpha.SetBigInt(bAlpha)
	}

	var srs SRS
	srs.G1 = make([]bn254.G1Affine, size)
	srs.G2 = make([]bn254.G2Affine, size)

	_, _, gen1Aff, gen2Aff := bn254.Generators()
	srs.G1[0] = gen1Aff
	srs.G2[0] = gen2Aff

	alphas := make([]fr.Element, size-1)
	alphas[0] = alpha
	for i := 1; i < len(alphas); i++ {
		alphas[i].Mul(&alphas[i-1], &alpha)
	}
	g1s := bn254.BatchScalarMultiplicationG1(&gen1Aff, alphas)
	copy(srs.G1[1:], g1s)
	g2s := bn254.BatchScalarMultiplicationG2(&gen2Aff, alphas)
	copy(srs.G2[1:], g2s)

	log := logger.Logger().With().Str("curve", "bn254").Uint64("size", size).Logger()
	log.Debug().Dur("took", time.Since(start)).Msg("kzg setup done")

	return &srs, nil
}

// NewLagrangeSRS returns G1 elements scaled by the inverse Lagrange
// denominators over the fixed domain {1, ..., size}, the setup counterpart
// for committing to polynomials given in evaluation form on that domain.
func NewLagrangeSRS(size uint64) ([]bn254.G1Affine, error) {
	if size == 0 {
		return nil, ErrEmptySRS
	}

	denominators := make([]fr.Element, size)
	var xi, xj, diff fr.Element
	for i := uint64(0); i < size; i++ {
		denominators[i].SetOne()
		xi.SetUint64(i + 1)
		for j := uint64(0); j < size; j++ {
			if i == j {
				continue
			}
			xj.SetUint64(j + 1)
			diff.Sub(&xi, &xj)
			denominators[i].Mul(&denominators[i], &diff)
		}
	}
	inverses := fr.BatchInvert(denominators)

	_, _, gen1Aff, _ := bn254.Generators()
	return bn254.BatchScalarMultiplicationG1(&gen1Aff, inverses), nil
}
