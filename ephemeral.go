package thresholdsig

import (
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

// ephemeralSecretSalt domain-separates nonce-share derivation from every
// other use of the long-term key material.
const ephemeralSecretSalt = "QSIG_EPHEMERAL_SECRET_v1"

// EphemeralKey is one party's state in the per-message nonce generation.
// The protocol has exactly the shape of static key generation — commit,
// reveal, VSS-distribute, VSS-verify — but its base secret is derived
// deterministically from (long-term key material, message, party index), so
// two different messages can never share a nonce share by construction and
// a run can be reproduced for testing.
type EphemeralKey struct {
	PartyIndex uint16
	RI         Point // public image of this party's nonce share secret

	curve Curve
	ri    Scalar

	broadcast   bool
	distributed bool
}

// EphemeralSharedKeys is a party's stake in the combined per-message nonce:
// the combined nonce point R and this party's private share r_i. It is
// strictly single-use — feeding the same instance into signatures over two
// different messages reveals the long-term share.
type EphemeralSharedKeys struct {
	R  Point
	RI Scalar
}

// NewEphemeralKey derives the party's nonce-generation state for one
// message. Derivation runs HKDF-SHA-512 over the long-term secret material
// keyed by message and index, so the same (keys, message, index) triple
// always reproduces the same state and any other triple is unlinkable.
func NewEphemeralKey(keys *Keys, message []byte, index uint16) (*EphemeralKey, error) {
	if index == 0 {
		return nil, ErrInvalidParameters.WithDetails("party indices are 1-based")
	}
	if keys.secret == nil || keys.prefix == nil {
		return nil, ErrInvalidState.WithDetails("long-term key material unavailable")
	}

	ri, err := deriveEphemeralSecret(keys.curve, keys.prefix, keys.secret, message, index)
	if err != nil {
		return nil, err
	}

	return &EphemeralKey{
		PartyIndex: index,
		RI:         keys.curve.BasePoint().Mul(ri),
		curve:      keys.curve,
		ri:         ri,
	}, nil
}

// deriveEphemeralSecret expands (prefix, secret, message, index) into a
// uniform scalar with HKDF-SHA-512.
func deriveEphemeralSecret(curve Curve, prefix, secret Scalar, message []byte, index uint16) (Scalar, error) {
	ikm := append(prefix.Bytes(), secret.Bytes()...)

	indexBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(indexBytes, index)
	info := append([]byte("msg:"), message...)
	info = append(info, []byte("idx:")...)
	info = append(info, indexBytes...)

	reader := hkdf.New(sha512.New, ikm, []byte(ephemeralSecretSalt), info)
	seed := make([]byte, 64)
	if _, err := io.ReadFull(reader, seed); err != nil {
		return nil, fmt.Errorf("nonce share derivation failed: %w", err)
	}

	scalar, err := curve.ScalarFromUniformBytes(seed)

	for i := range seed {
		seed[i] = 0
	}
	for i := range ikm {
		ikm[i] = 0
	}

	if err != nil {
		return nil, err
	}
	return scalar, nil
}

// Phase1Broadcast commits to the party's nonce point R_i.
func (e *EphemeralKey) Phase1Broadcast() (*KeyGenCommitment, *big.Int, error) {
	if e.broadcast {
		return nil, nil, ErrInvalidState.WithDetails("phase 1 broadcast already produced")
	}

	com, blind, err := CreateCommitment(e.RI.Bytes())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to commit to nonce point: %w", err)
	}

	e.broadcast = true
	return &KeyGenCommitment{Com: com}, blind, nil
}

// Phase1VerifyComPhase2Distribute opens every signer's commitment against
// its revealed nonce point and VSS-shares this party's nonce secret across
// the signing set. parties holds the signers' original key-generation
// indices; params.ShareCount is the size of the signing set, which may be a
// strict subset of the key-generation parties.
func (e *EphemeralKey) Phase1VerifyComPhase2Distribute(
	params Parameters,
	blindFactors []*big.Int,
	noncePoints []Point,
	commitments []*KeyGenCommitment,
	parties []uint16,
) (*VerifiableSS, []*Share, error) {
	if !e.broadcast {
		return nil, nil, ErrInvalidState.WithDetails("phase 1 broadcast must run first")
	}
	if e.distributed {
		return nil, nil, ErrInvalidState.WithDetails("shares already distributed")
	}
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	n := int(params.ShareCount)
	if len(blindFactors) != n || len(noncePoints) != n || len(commitments) != n || len(parties) != n {
		return nil, nil, ErrInvalidParameters.WithDetails(
			fmt.Sprintf("round inputs incomplete for %d signers", n))
	}

	for i := range commitments {
		if commitments[i] == nil || noncePoints[i] == nil {
			return nil, nil, ErrInvalidParameters.WithDetails(
				fmt.Sprintf("missing round input for party %d", parties[i]))
		}
		if !OpenCommitment(commitments[i].Com, noncePoints[i].Bytes(), blindFactors[i]) {
			return nil, nil, ErrCommitmentMismatch.WithParty(parties[i])
		}
	}

	vss, shares, err := ShareAtIndices(e.curve, params.Threshold, params.ShareCount, e.ri, parties)
	if err != nil {
		return nil, nil, err
	}

	e.distributed = true
	return vss, shares, nil
}

// Phase2VerifyVSSConstructKeypair validates the received nonce shares and
// assembles the party's stake in the combined nonce: r_i as the sum of
// received shares, R as the sum of all revealed nonce points.
func (e *EphemeralKey) Phase2VerifyVSSConstructKeypair(
	params Parameters,
	noncePoints []Point,
	receivedShares []Scalar,
	schemes []*VerifiableSS,
	index uint16,
) (*EphemeralSharedKeys, error) {
	if !e.distributed {
		return nil, ErrInvalidState.WithDetails("phase 2 distribution must run first")
	}

	n := int(params.ShareCount)
	if len(noncePoints) != n || len(receivedShares) != n || len(schemes) != n {
		return nil, ErrInvalidParameters.WithDetails(
			fmt.Sprintf("round inputs incomplete for %d signers", n))
	}

	for j := range schemes {
		if !schemes[j].Commitments[0].Equal(noncePoints[j]) {
			return nil, ErrShareVerificationFailed.WithParty(schemes[j].Indices[j]).WithDetails(
				"signer committed to a nonce other than the one it revealed")
		}
		if err := schemes[j].ValidateShare(receivedShares[j], index); err != nil {
			return nil, err
		}
	}

	ri := e.curve.ScalarZero()
	for _, share := range receivedShares {
		ri = ri.Add(share)
	}

	r := e.curve.PointIdentity()
	for _, noncePoint := range noncePoints {
		r = r.Add(noncePoint)
	}

	return &EphemeralSharedKeys{R: r, RI: ri}, nil
}
