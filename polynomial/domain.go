package polynomial

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

var ErrNotPowerOfTwo = errors.New("order must be a power of two")

// RootsOfUnity returns the order-th roots of unity [1, w, w^2, ...,
// w^(order-1)], with w the generator of the multiplicative subgroup of the
// requested order. The order must be a power of two.
func RootsOfUnity(order uint64) ([]fr.Element, error) {
	if order == 0 || order&(order-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}
	domain := fft.NewDomain(order)
	roots := make([]fr.Element, order)
	roots[0].SetOne()
	for i := uint64(1); i < order; i++ {
		roots[i].Mul(&roots[i-1], &domain.Generator)
	}
	return roots, nil
}
