package ipa

import (
	"crypto/sha256"
	"strconv"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
)

// ChallengeSource produces the verifier challenge of each halving round,
// after the round's (L, R) pair is fixed.
type ChallengeSource interface {
	RoundChallenge(l, r *bn254.G1Affine) (fr.Element, error)
}

// RandomChallenges returns a ChallengeSource drawing each challenge
// uniformly at random, the interactive-protocol behaviour.
func RandomChallenges() ChallengeSource {
	return randomSource{}
}

type randomSource struct{}

func (randomSource) RoundChallenge(_, _ *bn254.G1Affine) (fr.Element, error) {
	var u fr.Element
	_, err := u.SetRandom()
	return u, err
}

// Transcript derives the round challenges by Fiat-Shamir: each challenge
// hashes the commitment, the evaluation point and claimed value, and every
// (L, R) pair seen so far, making the proof non-interactive. The verifier
// replays the transcript from the proof with ReplayChallenges.
type Transcript struct {
	fs    *fiatshamir.Transcript
	ids   []string
	round int
}

// NewTranscript returns a transcript for an opening with the given number
// of halving rounds, seeded with the instance being proven.
func NewTranscript(rounds int, commitment *bn254.G1Affine, point, value *fr.Element) (*Transcript, error) {
	ids := make([]string, rounds)
	for i := range ids {
		ids[i] = "u" + strconv.Itoa(i)
	}
	fs := fiatshamir.NewTranscript(sha256.New(), ids...)
	if rounds > 0 {
		if err := fs.Bind(ids[0], commitment.Marshal()); err != nil {
			return nil, err
		}
		if err := fs.Bind(ids[0], point.Marshal()); err != nil {
			return nil, err
		}
		if err := fs.Bind(ids[0], value.Marshal()); err != nil {
			return nil, err
		}
	}
	return &Transcript{fs: fs, ids: ids}, nil
}

// RoundChallenge binds the round's (L, R) pair and computes the round
// challenge. Challenges chain: each one also commits to all previous
// rounds.
func (t *Transcript) RoundChallenge(l, r *bn254.G1Affine) (fr.Element, error) {
	id := t.ids[t.round]
	t.round++
	if err := t.fs.Bind(id, l.Marshal()); err != nil {
		return fr.Element{}, err
	}
	if err := t.fs.Bind(id, r.Marshal()); err != nil {
		return fr.Element{}, err
	}
	digest, err := t.fs.ComputeChallenge(id)
	if err != nil {
		return fr.Element{}, err
	}
	var u fr.Element
	u.SetBytes(digest)
	if u.IsZero() {
		u.SetOne()
	}
	return u, nil
}

// ReplayChallenges re-derives the challenges of proof from scratch, as the
// verifier of a non-interactive deployment does, and reports whether they
// match the ones the proof carries.
func ReplayChallenges(commitment *bn254.G1Affine, point *fr.Element, proof *OpeningProof) (bool, error) {
	t, err := NewTranscript(len(proof.L), commitment, point, &proof.ClaimedValue)
	if err != nil {
		return false, err
	}
	for j := range proof.L {
		u, err := t.RoundChallenge(&proof.L[j], &proof.R[j])
		if err != nil {
			return false, err
		}
		if !u.Equal(&proof.Challenges[j]) {
			return false, nil
		}
	}
	return true, nil
}

// DeriveRhos derives the challenge vector of a batched opening from a
// transcript of the individual commitments: a single challenge rho bound to
// every commitment, expanded to its power vector (1, rho, rho^2, ...).
func DeriveRhos(commitments []bn254.G1Affine, k int) ([]fr.Element, error) {
	fs := fiatshamir.NewTranscript(sha256.New(), "rho")
	for i := range commitments {
		if err := fs.Bind("rho", commitments[i].Marshal()); err != nil {
			return nil, err
		}
	}
	digest, err := fs.ComputeChallenge("rho")
	if err != nil {
		return nil, err
	}
	var rho fr.Element
	rho.SetBytes(digest)
	if rho.IsZero() {
		rho.SetOne()
	}
	return powers(&rho, k), nil
}
