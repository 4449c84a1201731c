package ipa

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"

	"github.com/giuliop/pcs/polynomial"
)

func TestNewParams(t *testing.T) {
	const size = 8
	params, err := NewParams(size)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params.G) != size {
		t.Fatalf("expected %d generators, got %d", size, len(params.G))
	}
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if params.G[i].Equal(&params.G[j]) {
				t.Errorf("generators %d and %d should be distinct", i, j)
			}
		}
	}
}

func TestNewParamsEmpty(t *testing.T) {
	if _, err := NewParams(0); err != ErrEmptyParams {
		t.Errorf("expected ErrEmptyParams, got %v", err)
	}
}

func TestOpenVerifyRoundTrip(t *testing.T) {
	const degree = 127 // n = 128, 7 halving rounds
	params, err := NewParams(128)
	require.NoError(t, err)

	f := polynomial.Random(degree)
	commitment, err := Commit(f, params)
	require.NoError(t, err)

	var x fr.Element
	x.SetRandom()
	proof, err := Open(f, &x, params)
	require.NoError(t, err)

	require.Len(t, proof.L, 7)
	require.Len(t, proof.R, 7)
	require.Len(t, proof.Challenges, 7)
	expected := f.Eval(&x)
	require.True(t, proof.ClaimedValue.Equal(&expected))

	ok, err := Verify(&commitment, &proof, &x, params)
	require.NoError(t, err)
	require.True(t, ok)

	// the supplied folded generator verifies equally
	ok, err = PartialVerify(&commitment, &proof, &x, params)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOpenPadsToPowerOfTwo(t *testing.T) {
	params, err := NewParams(16)
	require.NoError(t, err)

	f := polynomial.Random(10) // 11 coefficients, padded to 16
	commitment, err := Commit(f, params)
	require.NoError(t, err)

	var x fr.Element
	x.SetRandom()
	proof, err := Open(f, &x, params)
	require.NoError(t, err)
	require.Len(t, proof.L, 4)

	ok, err := Verify(&commitment, &proof, &x, params)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	const degree = 31
	params, err := NewParams(32)
	require.NoError(t, err)

	f := polynomial.Random(degree)
	commitment, err := Commit(f, params)
	require.NoError(t, err)

	var x fr.Element
	x.SetRandom()
	proof, err := Open(f, &x, params)
	require.NoError(t, err)

	tamper := map[string]func(p *OpeningProof){
		"final coefficient": func(p *OpeningProof) {
			var one fr.Element
			one.SetOne()
			p.A.Add(&p.A, &one)
		},
		"claimed value": func(p *OpeningProof) {
			var one fr.Element
			one.SetOne()
			p.ClaimedValue.Add(&p.ClaimedValue, &one)
		},
		"round challenge": func(p *OpeningProof) {
			p.Challenges[2].Square(&p.Challenges[2])
		},
		"swapped L and R": func(p *OpeningProof) {
			p.L[3], p.R[3] = p.R[3], p.L[3]
		},
		"L coordinate": func(p *OpeningProof) {
			_, _, g1Gen, _ := bn254.Generators()
			p.L[0].Add(&p.L[0], &g1Gen)
		},
	}

	for name, corrupt := range tamper {
		forged := proof
		forged.L = append([]bn254.G1Affine{}, proof.L...)
		forged.R = append([]bn254.G1Affine{}, proof.R...)
		forged.Challenges = append([]fr.Element{}, proof.Challenges...)
		corrupt(&forged)

		ok, err := Verify(&commitment, &forged, &x, params)
		require.NoError(t, err, name)
		require.False(t, ok, "tampering with the %s must reject", name)
	}
}

// The product form of <s, b> must agree with the explicit inner product of
// the folded scalar vector with the powers of x.
func TestFoldedEvalMatchesInnerProduct(t *testing.T) {
	const m = 5
	challenges := make([]fr.Element, m)
	for i := range challenges {
		challenges[i].SetRandom()
	}
	var x fr.Element
	x.SetRandom()

	n := 1 << m
	s := FoldedScalars(challenges, n)
	b := powers(&x, n)
	expected := innerProduct(s, b)

	got := foldedEval(challenges, &x)
	if !got.Equal(&expected) {
		t.Errorf("product form and tensor form of b* disagree")
	}
}

func TestFoldedScalarsRecomputeFoldedGenerator(t *testing.T) {
	const degree = 15
	params, err := NewParams(16)
	require.NoError(t, err)

	f := polynomial.Random(degree)
	var x fr.Element
	x.SetRandom()
	proof, err := Open(f, &x, params)
	require.NoError(t, err)

	s := FoldedScalars(proof.Challenges, 16)
	var gStar bn254.G1Affine
	_, err = gStar.MultiExp(params.G, s, ecc.MultiExpConfig{})
	require.NoError(t, err)
	require.True(t, gStar.Equal(&proof.G),
		"prover folded generator must equal <s, G>")
}

func TestCommitPolynomialTooLarge(t *testing.T) {
	params, err := NewParams(8)
	require.NoError(t, err)

	f := polynomial.Random(8)
	if _, err := Commit(f, params); err != ErrInvalidPolynomialSize {
		t.Errorf("expected ErrInvalidPolynomialSize, got %v", err)
	}
	var x fr.Element
	x.SetRandom()
	if _, err := Open(f, &x, params); err != ErrInvalidPolynomialSize {
		t.Errorf("expected ErrInvalidPolynomialSize, got %v", err)
	}
}

func TestVerifyMismatchedProofVectors(t *testing.T) {
	params, err := NewParams(16)
	require.NoError(t, err)

	f := polynomial.Random(15)
	commitment, err := Commit(f, params)
	require.NoError(t, err)

	var x fr.Element
	x.SetRandom()
	proof, err := Open(f, &x, params)
	require.NoError(t, err)

	proof.R = proof.R[:len(proof.R)-1]
	if _, err := Verify(&commitment, &proof, &x, params); err != ErrInvalidProofSize {
		t.Errorf("expected ErrInvalidProofSize, got %v", err)
	}
}

func TestTranscriptOpenVerify(t *testing.T) {
	const degree = 63
	params, err := NewParams(64)
	require.NoError(t, err)

	f := polynomial.Random(degree)
	commitment, err := Commit(f, params)
	require.NoError(t, err)

	var x fr.Element
	x.SetRandom()
	value := f.Eval(&x)

	transcript, err := NewTranscript(6, &commitment, &x, &value)
	require.NoError(t, err)
	_, _, g1Gen, _ := bn254.Generators()
	proof, err := OpenWithSource(f, &x, params, transcript, &g1Gen)
	require.NoError(t, err)

	ok, err := Verify(&commitment, &proof, &x, params)
	require.NoError(t, err)
	require.True(t, ok)

	// a verifier re-deriving the challenges from the transcript agrees
	ok, err = ReplayChallenges(&commitment, &x, &proof)
	require.NoError(t, err)
	require.True(t, ok)

	// replacing a challenge breaks the transcript binding
	forged := proof
	forged.Challenges = append([]fr.Element{}, proof.Challenges...)
	forged.Challenges[1].Square(&forged.Challenges[1])
	ok, err = ReplayChallenges(&commitment, &x, &forged)
	require.NoError(t, err)
	require.False(t, ok)
}
