package ipa

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/giuliop/pcs/polynomial"
)

// batchFixture holds polynomials opened as a batch: each f_i vanishes on
// its own point set Omega_i, z is the vanishing polynomial of the union and
// zi[i] the cofactor z / Z_{Omega_i}.
type batchFixture struct {
	polys       []polynomial.Polynomial
	z           polynomial.Polynomial
	zi          []polynomial.Polynomial
	commitments []bn254.G1Affine
}

func newBatchFixture(t *testing.T, params *Params, nbPolys, degree, nbOmegas int) *batchFixture {
	t.Helper()

	fixture := &batchFixture{
		polys:       make([]polynomial.Polynomial, nbPolys),
		zi:          make([]polynomial.Polynomial, nbPolys),
		commitments: make([]bn254.G1Affine, nbPolys),
	}
	fixture.z = polynomial.One()

	vanishing := make([]polynomial.Polynomial, nbPolys)
	for i := 0; i < nbPolys; i++ {
		omegas := make([]fr.Element, nbOmegas)
		for j := range omegas {
			omegas[j].SetRandom()
		}
		vanishing[i] = polynomial.FromRoots(omegas)
		fixture.polys[i] = polynomial.Random(degree).Mul(vanishing[i])
		fixture.z = fixture.z.Mul(vanishing[i])
	}
	for i := 0; i < nbPolys; i++ {
		q, r, err := fixture.z.DivMod(vanishing[i])
		require.NoError(t, err)
		require.True(t, r.IsZero())
		fixture.zi[i] = q

		fixture.commitments[i], err = Commit(fixture.polys[i], params)
		require.NoError(t, err)
	}
	return fixture
}

func TestBatchOpenVerify(t *testing.T) {
	params, err := NewParams(64)
	require.NoError(t, err)

	fixture := newBatchFixture(t, params, 5, 10, 4)

	rho, err := DeriveRhos(fixture.commitments, len(fixture.polys))
	require.NoError(t, err)

	var x fr.Element
	x.SetRandom()

	proof, err := BatchOpen(fixture.polys, fixture.z, fixture.zi, rho, &x, params)
	require.NoError(t, err)
	require.True(t, proof.Proof.ClaimedValue.IsZero(),
		"the aggregated polynomial must vanish at the opening point")

	ok, err := BatchVerify(fixture.commitments, &proof, fixture.z, fixture.zi, rho, &x, params)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestBatchCommitQuotient(t *testing.T) {
	params, err := NewParams(64)
	require.NoError(t, err)

	fixture := newBatchFixture(t, params, 4, 8, 3)
	rho, err := DeriveRhos(fixture.commitments, len(fixture.polys))
	require.NoError(t, err)

	commitment, q, err := BatchCommit(fixture.polys, fixture.z, fixture.zi, rho, params)
	require.NoError(t, err)

	expected, err := Commit(q, params)
	require.NoError(t, err)
	require.True(t, commitment.Equal(&expected))

	// Q * Z == sum_i rho_i * f_i * Z_i
	var sum polynomial.Polynomial
	for i := range fixture.polys {
		sum = sum.Add(fixture.polys[i].Mul(fixture.zi[i]).ScalarMul(&rho[i]))
	}
	require.True(t, q.Mul(fixture.z).Equal(sum))
}

func TestBatchOpenInconsistentInputs(t *testing.T) {
	params, err := NewParams(64)
	require.NoError(t, err)

	fixture := newBatchFixture(t, params, 3, 6, 3)
	rho, err := DeriveRhos(fixture.commitments, len(fixture.polys))
	require.NoError(t, err)

	// a polynomial that does not vanish on its point set breaks the exact
	// division
	fixture.polys[1] = polynomial.Random(9)

	var x fr.Element
	x.SetRandom()
	if _, err := BatchOpen(fixture.polys, fixture.z, fixture.zi, rho, &x, params); err != ErrNotDivisible {
		t.Errorf("expected ErrNotDivisible, got %v", err)
	}
}

func TestBatchOpenMismatchedInputs(t *testing.T) {
	params, err := NewParams(64)
	require.NoError(t, err)

	fixture := newBatchFixture(t, params, 3, 6, 3)
	rho, err := DeriveRhos(fixture.commitments, len(fixture.polys))
	require.NoError(t, err)

	var x fr.Element
	x.SetRandom()
	if _, err := BatchOpen(fixture.polys[:2], fixture.z, fixture.zi, rho, &x, params); err != ErrInvalidNbPolynomials {
		t.Errorf("expected ErrInvalidNbPolynomials, got %v", err)
	}
	if _, err := BatchVerify(fixture.commitments, &BatchOpeningProof{}, fixture.z, fixture.zi, rho[:2], &x, params); err != ErrInvalidNbPolynomials {
		t.Errorf("expected ErrInvalidNbPolynomials, got %v", err)
	}
}

func TestBatchVerifyRejectsTamperedCommitment(t *testing.T) {
	params, err := NewParams(64)
	require.NoError(t, err)

	fixture := newBatchFixture(t, params, 5, 10, 4)
	rho, err := DeriveRhos(fixture.commitments, len(fixture.polys))
	require.NoError(t, err)

	var x fr.Element
	x.SetRandom()
	proof, err := BatchOpen(fixture.polys, fixture.z, fixture.zi, rho, &x, params)
	require.NoError(t, err)

	_, _, g1Gen, _ := bn254.Generators()
	fixture.commitments[2].Add(&fixture.commitments[2], &g1Gen)

	ok, err := BatchVerify(fixture.commitments, &proof, fixture.z, fixture.zi, rho, &x, params)
	require.NoError(t, err)
	require.False(t, ok)
}
