package thresholdsig

import (
	"crypto/subtle"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// BlindFactorSize is the byte length of commitment blind factors.
const BlindFactorSize = 32

// commitmentDomain separates the commit/reveal hash from every other hash
// in the protocol.
const commitmentDomain = "QSIG_HASH_COMMITMENT_v1"

// Commitments and blind factors travel as arbitrary-precision integers,
// encoded minimal big-endian on the wire. The scheme is the usual hash
// commitment: binding through collision resistance of BLAKE2b-512, hiding
// through the 256-bit random blind factor. It exists to stop a
// late-broadcasting party from choosing its contribution after seeing
// everyone else's; a round must abort on any failed opening.

// CreateCommitment commits to value under a fresh random blind factor.
func CreateCommitment(value []byte) (commitment, blindFactor *big.Int, err error) {
	blind, err := SecureRandom(BlindFactorSize)
	if err != nil {
		return nil, nil, err
	}

	blindFactor = new(big.Int).SetBytes(blind)
	return CreateCommitmentWithBlind(value, blindFactor), blindFactor, nil
}

// CreateCommitmentWithBlind commits to value under a caller-supplied blind
// factor. Exposed so verifiers can recompute commitments during reveal.
func CreateCommitmentWithBlind(value []byte, blindFactor *big.Int) *big.Int {
	hasher, _ := blake2b.New512(nil)
	hasher.Write([]byte(commitmentDomain))
	hasher.Write(value)
	hasher.Write(blindFactor.Bytes())
	return new(big.Int).SetBytes(hasher.Sum(nil))
}

// OpenCommitment reports whether commitment opens to value under
// blindFactor. Comparison is constant time. A false result must abort the
// round; proceeding with unverified data reintroduces the adaptive-choice
// attack the commitment round exists to prevent.
func OpenCommitment(commitment *big.Int, value []byte, blindFactor *big.Int) bool {
	if commitment == nil || blindFactor == nil {
		return false
	}

	expected := CreateCommitmentWithBlind(value, blindFactor)
	return subtle.ConstantTimeCompare(commitment.Bytes(), expected.Bytes()) == 1
}
